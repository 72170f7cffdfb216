package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ideascope/ideascope-backend/internal/requestdata"
	"github.com/ideascope/ideascope-backend/internal/services"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
)

type IdeaHandler struct {
	ideaService services.IdeaService
}

func NewIdeaHandler(ideaService services.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService}
}

// Submit analyzes a new idea against its room. An exact duplicate comes back
// as 400 with the rejection explanation and nothing is stored.
func (ih *IdeaHandler) Submit(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid room id"))
		return
	}
	var sub services.IdeaSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no authenticated user"))
		return
	}

	idea, err := ih.ideaService.SubmitIdea(c.Request.Context(), roomID, rd.UserID, sub)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":       false,
				"error":         "Missing required fields",
				"missingFields": vErr.Missing,
			})
			return
		}
		var emErr *uniqueness.ExactMatchError
		if errors.As(err, &emErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":     false,
				"error":       "Idea rejected",
				"explanation": emErr.Explanation,
			})
			return
		}
		if errors.Is(err, services.ErrRoomNotFound) {
			RespondError(c, http.StatusNotFound, "room_not_found", err)
			return
		}
		if errors.Is(err, services.ErrEmbeddingUnavailable) {
			RespondError(c, http.StatusInternalServerError, "embedding_unavailable", errors.New("embedding service unavailable"))
			return
		}
		RespondError(c, http.StatusInternalServerError, "idea_submit_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "idea": idea})
}

func (ih *IdeaHandler) ListByRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid room id"))
		return
	}
	ideas, err := ih.ideaService.GetRoomIdeas(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			RespondError(c, http.StatusNotFound, "room_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "idea_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"ideas": ideas})
}

type compareIdeasRequest struct {
	IdeaA string `json:"ideaA"`
	IdeaB string `json:"ideaB"`
}

// Compare scores two stored ideas against each other through the configured
// similarity backend and returns the per-field breakdown.
func (ih *IdeaHandler) Compare(c *gin.Context) {
	var req compareIdeasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	aID, err := uuid.Parse(req.IdeaA)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid ideaA id"))
		return
	}
	bID, err := uuid.Parse(req.IdeaB)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid ideaB id"))
		return
	}
	cmp, err := ih.ideaService.CompareIdeas(c.Request.Context(), aID, bID)
	if err != nil {
		if errors.Is(err, services.ErrIdeaNotFound) {
			RespondError(c, http.StatusNotFound, "idea_not_found", err)
			return
		}
		if errors.Is(err, services.ErrEmbeddingUnavailable) {
			RespondError(c, http.StatusInternalServerError, "embedding_unavailable", errors.New("embedding service unavailable"))
			return
		}
		RespondError(c, http.StatusInternalServerError, "idea_compare_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "comparison": cmp})
}

func (ih *IdeaHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid idea id"))
		return
	}
	idea, err := ih.ideaService.GetIdea(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrIdeaNotFound) {
			RespondError(c, http.StatusNotFound, "idea_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "idea_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"idea": idea})
}

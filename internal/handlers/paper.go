package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ideascope/ideascope-backend/internal/requestdata"
	"github.com/ideascope/ideascope-backend/internal/services"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
)

// 25 MB cap on uploaded PDFs.
const maxPaperPDFBytes = 25 << 20

type PaperHandler struct {
	paperService services.PaperService
	aiDetection  services.AIDetectionService
}

func NewPaperHandler(paperService services.PaperService, aiDetection services.AIDetectionService) *PaperHandler {
	return &PaperHandler{paperService: paperService, aiDetection: aiDetection}
}

// Submit accepts either a JSON body with the text sections or a multipart
// form with a "file" PDF part plus optional text overrides.
func (ph *PaperHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no authenticated user"))
		return
	}

	var sub services.PaperSubmission
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", errors.New("missing file part"))
			return
		}
		if fileHeader.Size > maxPaperPDFBytes {
			RespondError(c, http.StatusBadRequest, "file_too_large", errors.New("PDF exceeds size limit"))
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", errors.New("unreadable file part"))
			return
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxPaperPDFBytes+1))
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", errors.New("unreadable file part"))
			return
		}
		sub = services.PaperSubmission{
			Title:      c.PostForm("title"),
			Abstract:   c.PostForm("abstract"),
			Conclusion: c.PostForm("conclusion"),
			PDF:        raw,
			Filename:   fileHeader.Filename,
		}
	} else {
		var req struct {
			Title      string `json:"title"`
			Abstract   string `json:"abstract"`
			Conclusion string `json:"conclusion"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
			return
		}
		sub = services.PaperSubmission{
			Title:      req.Title,
			Abstract:   req.Abstract,
			Conclusion: req.Conclusion,
		}
	}

	paper, err := ph.paperService.SubmitPaper(c.Request.Context(), rd.UserID, sub)
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
				"error":       "Paper rejected",
				"explanation": emErr.Explanation,
			})
			return
		}
		if errors.Is(err, services.ErrEmbeddingUnavailable) {
			RespondError(c, http.StatusInternalServerError, "embedding_unavailable", errors.New("embedding service unavailable"))
			return
		}
		RespondError(c, http.StatusInternalServerError, "paper_submit_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "paper": paper})
}

func (ph *PaperHandler) List(c *gin.Context) {
	papers, err := ph.paperService.ListPapers(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "paper_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"papers": papers})
}

func (ph *PaperHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid paper id"))
		return
	}
	paper, err := ph.paperService.GetPaper(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPaperNotFound) {
			RespondError(c, http.StatusNotFound, "paper_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "paper_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"paper": paper})
}

func (ph *PaperHandler) DetectAIText(c *gin.Context) {
	if ph.aiDetection == nil {
		RespondError(c, http.StatusServiceUnavailable, "ai_detection_disabled", errors.New("AI-text detection is not configured"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid paper id"))
		return
	}
	result, err := ph.aiDetection.DetectPaper(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPaperNotFound) {
			RespondError(c, http.StatusNotFound, "paper_not_found", err)
			return
		}
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			RespondError(c, http.StatusBadRequest, "no_text_sections", errors.New("paper has no abstract or conclusion"))
			return
		}
		RespondError(c, http.StatusInternalServerError, "ai_detection_failed", err)
		return
	}
	RespondOK(c, gin.H{"detection": result})
}

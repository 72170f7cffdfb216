package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Idea is analyzed exactly once, at creation, against the room corpus as it
// existed at that moment. Embeddings, hashes, and scores are never
// recomputed when later ideas arrive.
type Idea struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RoomID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"room_id"`
	Room             *Room          `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoomID;references:ID" json:"room,omitempty"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      string         `gorm:"column:description;not null" json:"description"`
	Domain           string         `gorm:"column:domain;not null" json:"domain"`
	ProblemStatement string         `gorm:"column:problem_statement;not null" json:"problem_statement"`
	ProposedSolution string         `gorm:"column:proposed_solution;not null" json:"proposed_solution"`
	Embeddings       datatypes.JSON `gorm:"type:jsonb;column:embeddings" json:"-"`
	Hashes           datatypes.JSON `gorm:"type:jsonb;column:hashes" json:"-"`
	UniquenessScore  int            `gorm:"column:uniqueness_score;not null;default:0" json:"uniqueness_score"`
	FieldUniqueness  datatypes.JSON `gorm:"type:jsonb;column:field_uniqueness" json:"field_uniqueness"`
	SimilarIdeas     datatypes.JSON `gorm:"type:jsonb;column:similar_ideas" json:"similar_ideas"`
	Explanation      string         `gorm:"column:explanation" json:"explanation"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Idea) TableName() string { return "idea" }

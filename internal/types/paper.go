package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Paper holds the abstract/conclusion sections used for comparison plus the
// combined weighted query vector stored at analysis time. The original PDF,
// when one was uploaded, lives in the bucket under FileBucketKey.
type Paper struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Abstract        string         `gorm:"column:abstract" json:"abstract"`
	Conclusion      string         `gorm:"column:conclusion" json:"conclusion"`
	FileBucketKey   string         `gorm:"column:file_bucket_key" json:"file_bucket_key,omitempty"`
	FileURL         string         `gorm:"column:file_url" json:"file_url,omitempty"`
	Embeddings      datatypes.JSON `gorm:"type:jsonb;column:embeddings" json:"-"`
	Hashes          datatypes.JSON `gorm:"type:jsonb;column:hashes" json:"-"`
	UniquenessScore int            `gorm:"column:uniqueness_score;not null;default:0" json:"uniqueness_score"`
	FieldUniqueness datatypes.JSON `gorm:"type:jsonb;column:field_uniqueness" json:"field_uniqueness"`
	SimilarPapers   datatypes.JSON `gorm:"type:jsonb;column:similar_papers" json:"similar_papers"`
	Explanation     string         `gorm:"column:explanation" json:"explanation"`
	AIDetection     datatypes.JSON `gorm:"type:jsonb;column:ai_detection" json:"ai_detection,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Paper) TableName() string { return "paper" }

package models

import (
	"time"

	"gorm.io/datatypes"
)

type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:100" json:"category"`
	Difficulty  string    `gorm:"size:50" json:"difficulty"`
	Duration    string    `gorm:"size:50" json:"duration"`
	IsPublished bool      `gorm:"default:false" json:"is_published"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	Creator     *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lessons []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

type Lesson struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CourseID      uint           `gorm:"not null;index" json:"course_id"`
	CreatorID     *uint          `gorm:"index" json:"creator_id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	VideoFilename string         `gorm:"size:255" json:"video_filename,omitempty"`
	Sections      datatypes.JSON `json:"sections"` // list of content blocks
	IsPublished   bool           `gorm:"default:false" json:"is_published"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	IsHeadAdmin  bool      `gorm:"default:false" json:"is_head_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Courses        []Course `gorm:"foreignKey:CreatorID" json:"-"`
	LessonsCreated []Lesson `gorm:"foreignKey:CreatorID" json:"-"`
}

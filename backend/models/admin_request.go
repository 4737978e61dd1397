package models

import "time"

type AdminRequestStatus string

const (
	AdminRequestPending  AdminRequestStatus = "pending"
	AdminRequestApproved AdminRequestStatus = "approved"
	AdminRequestRejected AdminRequestStatus = "rejected"
	AdminRequestRevoked  AdminRequestStatus = "revoked"
)

// Valid reports whether s is one of the four workflow states.
func (s AdminRequestStatus) Valid() bool {
	switch s {
	case AdminRequestPending, AdminRequestApproved, AdminRequestRejected, AdminRequestRevoked:
		return true
	}
	return false
}

// AdminRequest is a user's application for admin rights. A user has at most
// one row; resubmitting after a rejection or revocation reuses it.
type AdminRequest struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	UserID    uint               `gorm:"not null;uniqueIndex" json:"user_id"`
	User      *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Reason    string             `gorm:"type:text;not null" json:"reason"`
	Status    AdminRequestStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Comment   *string            `gorm:"type:text" json:"comment"`
	Timestamp time.Time          `gorm:"index" json:"timestamp"`
	Approved  bool               `gorm:"default:false" json:"approved"` // mirrors Status == approved
}

// IsActive reports whether the request blocks a new submission.
func (r *AdminRequest) IsActive() bool {
	return r.Status == AdminRequestPending || r.Status == AdminRequestApproved
}

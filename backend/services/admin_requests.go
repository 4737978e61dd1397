package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"arnhub/backend/models"

	"gorm.io/gorm"
)

// AdminRequestService runs the admin elevation workflow:
//
//	pending  -> approved  (Approve, head admin)
//	pending  -> rejected  (Reject, head admin, requester emailed)
//	approved -> revoked   (Revoke, admin)
//	rejected, revoked -> pending (Submit reuses the row)
type AdminRequestService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

func NewAdminRequestService(db *gorm.DB, notifier Notifier, logger *log.Logger) *AdminRequestService {
	return &AdminRequestService{
		db:       db,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Rejection is the outcome of Reject. Notified is false when the email to
// the requester failed; the rejection itself is committed either way.
type Rejection struct {
	Request  *models.AdminRequest
	Notified bool
}

// Get returns the user's request, or nil if they never submitted one.
func (s *AdminRequestService) Get(ctx context.Context, user *models.User) (*models.AdminRequest, error) {
	var req models.AdminRequest
	err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *AdminRequestService) Submit(ctx context.Context, user *models.User, reason string) (*models.AdminRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newError(ErrValidation, "Please explain why you want admin access.")
	}
	if user.IsAdmin {
		return nil, newError(ErrConflict, "You are already an admin.")
	}

	var req models.AdminRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", user.ID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			req = models.AdminRequest{
				UserID:    user.ID,
				Reason:    reason,
				Status:    models.AdminRequestPending,
				Timestamp: s.now(),
			}
			return tx.Create(&req).Error
		}
		if err != nil {
			return err
		}

		if req.IsActive() {
			return newError(ErrConflict, "You already submitted a request. Please wait for review.")
		}

		req.Status = models.AdminRequestPending
		req.Comment = nil
		req.Reason = reason
		req.Approved = false
		req.Timestamp = s.now()
		return tx.Model(&req).Select("status", "comment", "reason", "approved", "timestamp").Updates(&req).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, newError(ErrConflict, "You already submitted a request. Please wait for review.")
	}
	if err != nil {
		return nil, err
	}

	return &req, nil
}

// Approve grants admin rights to the requester. It also clears the
// requester's head admin flag.
func (s *AdminRequestService) Approve(ctx context.Context, requestID uint, actor *models.User) (*models.AdminRequest, error) {
	if err := RequireHeadAdmin(actor); err != nil {
		return nil, err
	}

	var req models.AdminRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&req, requestID).Error; err != nil {
			return notFound(err, "Admin request not found.")
		}
		if req.Status != models.AdminRequestPending {
			return newError(ErrPreconditionFailed, "Only pending requests can be approved.")
		}
		if req.User == nil {
			return newError(ErrNotFound, "Requesting user no longer exists.")
		}

		req.User.IsAdmin = true
		req.User.IsHeadAdmin = false
		if err := tx.Model(req.User).Select("is_admin", "is_head_admin").Updates(req.User).Error; err != nil {
			return err
		}

		req.Status = models.AdminRequestApproved
		req.Approved = true
		req.Timestamp = s.now()
		return tx.Model(&req).Select("status", "approved", "timestamp").Updates(&req).Error
	})
	if err != nil {
		return nil, err
	}

	return &req, nil
}

// Reject marks a pending request rejected and emails the reason to the
// requester. The timestamp keeps the submission time.
func (s *AdminRequestService) Reject(ctx context.Context, requestID uint, reason string, actor *models.User) (*Rejection, error) {
	if err := RequireHeadAdmin(actor); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newError(ErrValidation, "Please give a reason for the rejection.")
	}

	var req models.AdminRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&req, requestID).Error; err != nil {
			return notFound(err, "Admin request not found.")
		}
		if req.Status != models.AdminRequestPending {
			return newError(ErrPreconditionFailed, "Only pending requests can be rejected.")
		}

		req.Status = models.AdminRequestRejected
		req.Comment = &reason
		return tx.Model(&req).Select("status", "comment").Updates(&req).Error
	})
	if err != nil {
		return nil, err
	}

	result := &Rejection{Request: &req, Notified: false}
	if req.User == nil {
		return result, nil
	}

	if err := s.notifier.Send(ctx, req.User.Email, "Admin Request Rejected", reason); err != nil {
		s.logger.Printf("admin request %d rejected but notification to user %d failed: %v", req.ID, req.UserID, err)
		return result, nil
	}
	result.Notified = true

	return result, nil
}

// Revoke takes admin rights away from a plain admin and marks their
// approved request revoked. Head admins and non-admins are refused.
func (s *AdminRequestService) Revoke(ctx context.Context, userID uint, comment string, actor *models.User) (*models.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	comment = strings.TrimSpace(comment)

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "User not found.")
		}
		if !user.IsAdmin || user.IsHeadAdmin {
			return newError(ErrPreconditionFailed, "Cannot revoke head admin or non-admin user.")
		}

		user.IsAdmin = false
		if err := tx.Model(&user).Update("is_admin", false).Error; err != nil {
			return err
		}

		var req models.AdminRequest
		err := tx.Where("user_id = ? AND status = ?", user.ID, models.AdminRequestApproved).
			Order("timestamp DESC").
			First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		req.Status = models.AdminRequestRevoked
		req.Approved = false
		req.Comment = &comment
		req.Timestamp = s.now()
		return tx.Model(&req).Select("status", "approved", "comment", "timestamp").Updates(&req).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns the requests in the given state, newest first.
func (s *AdminRequestService) List(ctx context.Context, status models.AdminRequestStatus) ([]models.AdminRequest, error) {
	if !status.Valid() {
		return nil, newError(ErrValidation, "Unknown request status.")
	}

	var requests []models.AdminRequest
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", status).
		Order("timestamp DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

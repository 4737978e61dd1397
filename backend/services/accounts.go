package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"arnhub/backend/models"
	"arnhub/backend/utils"

	"gorm.io/gorm"
)

const resetPasswordBytes = 8

type AccountService struct {
	db       *gorm.DB
	hasher   *utils.PasswordHasher
	notifier Notifier
	logger   *log.Logger
}

func NewAccountService(db *gorm.DB, hasher *utils.PasswordHasher, notifier Notifier, logger *log.Logger) *AccountService {
	return &AccountService{db: db, hasher: hasher, notifier: notifier, logger: logger}
}

// PasswordReset is the outcome of ResetPassword. Delivered is false when
// the password changed but the email could not be sent.
type PasswordReset struct {
	User      *models.User
	Delivered bool
}

func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, newError(ErrValidation, "Username, email and password are required.")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, PasswordHash: hash}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return newError(ErrConflict, "Username or email already exists.")
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, newError(ErrConflict, "Username or email already exists.")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate looks the user up by username or email.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	invalid := newError(ErrUnauthorized, "Invalid username/email or password.")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalid
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		Order("id").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, utils.ErrPasswordMismatch) {
			s.logger.Printf("auth: user %d has an unreadable password hash: %v", user.ID, err)
		}
		return nil, invalid
	}

	return &user, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "User not found.")
	}
	return &user, nil
}

func (s *AccountService) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := RequireHeadAdmin(actor); err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Rename changes a user's username.
func (s *AccountService) Rename(ctx context.Context, userID uint, username string, actor *models.User) (*models.User, error) {
	if err := RequireHeadAdmin(actor); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, newError(ErrValidation, "Username is required.")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "User not found.")
		}
		if user.Username == username {
			return nil
		}

		var count int64
		if err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", username, user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return newError(ErrConflict, "Username already taken.")
		}

		user.Username = username
		return tx.Model(&user).Update("username", username).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, newError(ErrConflict, "Username already taken.")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ResetPassword replaces the user's password with a random token and
// emails it. The plaintext is never stored.
func (s *AccountService) ResetPassword(ctx context.Context, userID uint, actor *models.User) (*PasswordReset, error) {
	if err := RequireHeadAdmin(actor); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err, "User not found.")
	}

	password, err := utils.RandomToken(resetPasswordBytes)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Hello %s,\n\nYour password has been reset.\n\nNew Password: %s\n\nPlease login and change it.\n\nARNhub Team",
		user.Username, password)

	result := &PasswordReset{User: &user, Delivered: true}
	if err := s.notifier.Send(ctx, user.Email, "ARNhub Password Reset", body); err != nil {
		s.logger.Printf("reset password: user %d password changed but email failed: %v", user.ID, err)
		result.Delivered = false
	}

	return result, nil
}

// DeleteUser removes the user together with their admin requests. Lessons
// they created lose their creator reference; courses they own must be
// removed first.
func (s *AccountService) DeleteUser(ctx context.Context, userID uint, actor *models.User) error {
	if err := RequireHeadAdmin(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return newError(ErrPreconditionFailed, "You cannot delete your own account.")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "User not found.")
		}

		var owned int64
		if err := tx.Model(&models.Course{}).Where("creator_id = ?", user.ID).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return newError(ErrPreconditionFailed,
				fmt.Sprintf("%s still owns %d course(s). Delete them first.", user.Username, owned))
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.AdminRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Lesson{}).Where("creator_id = ?", user.ID).Update("creator_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// EnsureHeadAdmin creates the bootstrap head admin unless a user with that
// username already exists.
func (s *AccountService) EnsureHeadAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user, err := s.Register(ctx, username, email, password)
	if err != nil {
		return nil, false, err
	}

	user.IsAdmin = true
	user.IsHeadAdmin = true
	if err := s.db.WithContext(ctx).Model(user).
		Updates(map[string]interface{}{"is_admin": true, "is_head_admin": true}).Error; err != nil {
		return nil, false, err
	}

	return user, true, nil
}

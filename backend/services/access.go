package services

import "arnhub/backend/models"

// RequireAdmin fails with ErrForbidden unless u is an authenticated admin.
func RequireAdmin(u *models.User) error {
	if u == nil || u.ID == 0 || !u.IsAdmin {
		return newError(ErrForbidden, "Admin access only.")
	}
	return nil
}

// RequireHeadAdmin fails with ErrForbidden unless u is an authenticated
// head admin. The IsAdmin flag is not consulted.
func RequireHeadAdmin(u *models.User) error {
	if u == nil || u.ID == 0 || !u.IsHeadAdmin {
		return newError(ErrForbidden, "Access denied. Head Admins only.")
	}
	return nil
}

// canManageCourse reports whether u may edit the course and its lessons.
func canManageCourse(u *models.User, course *models.Course) bool {
	return u.IsHeadAdmin || course.CreatorID == u.ID
}

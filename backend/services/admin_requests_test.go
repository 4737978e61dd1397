package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"arnhub/backend/models"
	"arnhub/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type workflowFixture struct {
	db       *gorm.DB
	svc      *AdminRequestService
	notifier *fakeNotifier
	head     *models.User
	admin    *models.User
	alice    *models.User
	clock    time.Time
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	f := &workflowFixture{
		db:       db,
		svc:      NewAdminRequestService(db, notifier, utils.DiscardLogger()),
		notifier: notifier,
		head:     createUser(t, db, "head", true, true),
		admin:    createUser(t, db, "admin", true, false),
		alice:    createUser(t, db, "alice", false, false),
		clock:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *workflowFixture) tick() {
	f.clock = f.clock.Add(time.Minute)
}

func (f *workflowFixture) rows(t *testing.T, userID uint) []models.AdminRequest {
	t.Helper()
	var rows []models.AdminRequest
	require.NoError(t, f.db.Where("user_id = ?", userID).Find(&rows).Error)
	return rows
}

func TestSubmitRequiresReason(t *testing.T) {
	f := newWorkflowFixture(t)

	for _, reason := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.Submit(context.Background(), f.alice, reason)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, f.rows(t, f.alice.ID))
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	f := newWorkflowFixture(t)

	req, err := f.svc.Submit(context.Background(), f.alice, "  need to teach  ")
	require.NoError(t, err)

	assert.Equal(t, models.AdminRequestPending, req.Status)
	assert.Equal(t, "need to teach", req.Reason)
	assert.Nil(t, req.Comment)
	assert.False(t, req.Approved)
	assert.True(t, f.clock.Equal(req.Timestamp))
	assert.Len(t, f.rows(t, f.alice.ID), 1)
}

func TestSubmitTwiceConflicts(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.alice, "again")
	assert.ErrorIs(t, err, ErrConflict)

	rows := f.rows(t, f.alice.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "need to teach", rows[0].Reason)
}

func TestSubmitWhileApprovedConflicts(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(req).Update("status", models.AdminRequestApproved).Error)

	_, err = f.svc.Submit(ctx, f.alice, "again")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, f.rows(t, f.alice.ID), 1)
}

func TestSubmitByAdminConflicts(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.Submit(context.Background(), f.admin, "more power")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.rows(t, f.admin.ID))
}

func TestUniqueIndexBlocksSecondRow(t *testing.T) {
	f := newWorkflowFixture(t)

	require.NoError(t, f.db.Create(&models.AdminRequest{UserID: f.alice.ID, Reason: "a", Status: models.AdminRequestPending}).Error)
	err := f.db.Create(&models.AdminRequest{UserID: f.alice.ID, Reason: "b", Status: models.AdminRequestPending}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRejectThenResubmitReusesRow(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	submitted, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)
	submittedAt := submitted.Timestamp

	f.tick()
	rejection, err := f.svc.Reject(ctx, submitted.ID, "insufficient info", f.head)
	require.NoError(t, err)
	assert.True(t, rejection.Notified)

	stored := reload[models.AdminRequest](t, f.db, submitted.ID)
	assert.Equal(t, models.AdminRequestRejected, stored.Status)
	require.NotNil(t, stored.Comment)
	assert.Equal(t, "insufficient info", *stored.Comment)
	assert.True(t, submittedAt.Equal(stored.Timestamp), "reject keeps the submission timestamp")

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "alice@example.com", f.notifier.sent[0].To)
	assert.Equal(t, "Admin Request Rejected", f.notifier.sent[0].Subject)
	assert.Equal(t, "insufficient info", f.notifier.sent[0].Body)

	f.tick()
	resubmitted, err := f.svc.Submit(ctx, f.alice, "ready now")
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, resubmitted.ID)

	rows := f.rows(t, f.alice.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AdminRequestPending, rows[0].Status)
	assert.Nil(t, rows[0].Comment)
	assert.Equal(t, "ready now", rows[0].Reason)
	assert.True(t, f.clock.Equal(rows[0].Timestamp))
}

func TestRejectSurvivesNotificationFailure(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	f.notifier.err = errors.New("smtp down")

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)

	rejection, err := f.svc.Reject(ctx, req.ID, "no", f.head)
	require.NoError(t, err)
	assert.False(t, rejection.Notified)
	assert.Equal(t, models.AdminRequestRejected, reload[models.AdminRequest](t, f.db, req.ID).Status)
}

func TestRejectWithMailDisabled(t *testing.T) {
	f := newWorkflowFixture(t)
	f.svc = NewAdminRequestService(f.db, &LogNotifier{Logger: utils.DiscardLogger()}, utils.DiscardLogger())
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)

	rejection, err := f.svc.Reject(ctx, req.ID, "not yet", f.head)
	require.NoError(t, err)
	assert.False(t, rejection.Notified)
	assert.Equal(t, models.AdminRequestRejected, rejection.Request.Status)
}

func TestRejectChecks(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, req.ID, "no", f.admin)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Reject(ctx, 9999, "no", f.head)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Reject(ctx, req.ID, "  ", f.head)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, models.AdminRequestPending, reload[models.AdminRequest](t, f.db, req.ID).Status)
	assert.Empty(t, f.notifier.sent)
}

func TestApproveRequiresHeadAdmin(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, req.ID, f.admin)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Approve(ctx, req.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.False(t, reload[models.User](t, f.db, f.alice.ID).IsAdmin)
}

func TestApproveNotFound(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.Approve(context.Background(), 4242, f.head)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveGrantsAdminAndClearsHeadAdmin(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)
	// head admin flag set out of band, without admin
	require.NoError(t, f.db.Model(f.alice).Update("is_head_admin", true).Error)

	f.tick()
	approved, err := f.svc.Approve(ctx, req.ID, f.head)
	require.NoError(t, err)
	assert.Equal(t, models.AdminRequestApproved, approved.Status)

	alice := reload[models.User](t, f.db, f.alice.ID)
	assert.True(t, alice.IsAdmin)
	assert.False(t, alice.IsHeadAdmin)

	stored := reload[models.AdminRequest](t, f.db, req.ID)
	assert.Equal(t, models.AdminRequestApproved, stored.Status)
	assert.True(t, stored.Approved)
	assert.True(t, f.clock.Equal(stored.Timestamp))
}

func TestApproveOnlyFromPending(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, req.ID, "no", f.head)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, req.ID, f.head)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.False(t, reload[models.User](t, f.db, f.alice.ID).IsAdmin)
}

func TestApproveThenRevoke(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.alice, "need to teach")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, req.ID, f.head)
	require.NoError(t, err)
	require.True(t, reload[models.User](t, f.db, f.alice.ID).IsAdmin)

	f.tick()
	user, err := f.svc.Revoke(ctx, f.alice.ID, "left the team", f.admin)
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)

	assert.False(t, reload[models.User](t, f.db, f.alice.ID).IsAdmin)

	stored := reload[models.AdminRequest](t, f.db, req.ID)
	assert.Equal(t, models.AdminRequestRevoked, stored.Status)
	assert.False(t, stored.Approved)
	require.NotNil(t, stored.Comment)
	assert.Equal(t, "left the team", *stored.Comment)
	assert.True(t, f.clock.Equal(stored.Timestamp))

	// revoked requests may be resubmitted
	again, err := f.svc.Submit(ctx, reload[models.User](t, f.db, f.alice.ID), "back again")
	require.NoError(t, err)
	assert.Equal(t, req.ID, again.ID)
	assert.Equal(t, models.AdminRequestPending, again.Status)
}

func TestRevokePreconditions(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	_, err := f.svc.Revoke(ctx, f.alice.ID, "", f.admin)
	assert.ErrorIs(t, err, ErrPreconditionFailed, "non-admin")

	_, err = f.svc.Revoke(ctx, f.head.ID, "", f.admin)
	assert.ErrorIs(t, err, ErrPreconditionFailed, "head admin")
	assert.True(t, reload[models.User](t, f.db, f.head.ID).IsAdmin)

	_, err = f.svc.Revoke(ctx, 777, "", f.admin)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Revoke(ctx, f.admin.ID, "", f.alice)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRevokeWithoutRequestRow(t *testing.T) {
	f := newWorkflowFixture(t)

	user, err := f.svc.Revoke(context.Background(), f.admin.ID, "bye", f.head)
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.False(t, reload[models.User](t, f.db, f.admin.ID).IsAdmin)
	assert.Empty(t, f.rows(t, f.admin.ID))
}

func TestListOrdersByTimestampDescending(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	bob := createUser(t, f.db, "bob", false, false)
	carol := createUser(t, f.db, "carol", false, false)

	for _, u := range []*models.User{f.alice, bob, carol} {
		_, err := f.svc.Submit(ctx, u, "please")
		require.NoError(t, err)
		f.tick()
	}
	carolReq, err := f.svc.Get(ctx, carol)
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, carolReq.ID, "no", f.head)
	require.NoError(t, err)

	pending, err := f.svc.List(ctx, models.AdminRequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, bob.ID, pending[0].UserID)
	assert.Equal(t, f.alice.ID, pending[1].UserID)
	require.NotNil(t, pending[0].User)
	assert.Equal(t, "bob", pending[0].User.Username)

	rejected, err := f.svc.List(ctx, models.AdminRequestRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, carol.ID, rejected[0].UserID)

	_, err = f.svc.List(ctx, "archived")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetWithoutRequest(t *testing.T) {
	f := newWorkflowFixture(t)

	req, err := f.svc.Get(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Nil(t, req)
}

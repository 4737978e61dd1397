package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"arnhub/backend/models"
	"arnhub/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := utils.OpenDB(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, utils.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func testHasher() *utils.PasswordHasher {
	return &utils.PasswordHasher{Scheme: "bcrypt", BcryptCost: bcrypt.MinCost}
}

type sentMail struct {
	To, Subject, Body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return n.err
}

type fakeVideoStore struct {
	files   map[string][]byte
	deleted []string
	saveErr error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{files: map[string][]byte{}}
}

func (s *fakeVideoStore) Save(_ context.Context, filename string, r io.Reader, _ int64) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	name := StoredName(filename)
	s.files[name] = buf.Bytes()
	return name, nil
}

func (s *fakeVideoStore) Delete(_ context.Context, name string) error {
	if _, ok := s.files[name]; !ok {
		return errors.New("no such video")
	}
	delete(s.files, name)
	s.deleted = append(s.deleted, name)
	return nil
}

func createUser(t *testing.T, db *gorm.DB, username string, admin, headAdmin bool) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsAdmin:      admin,
		IsHeadAdmin:  headAdmin,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func reload[T any](t *testing.T, db *gorm.DB, id uint) *T {
	t.Helper()
	var v T
	require.NoError(t, db.First(&v, id).Error)
	return &v
}

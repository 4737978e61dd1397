package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arnhub/backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	n := NewNotifier(&config.Config{}, logger)
	require.IsType(t, &LogNotifier{}, n)

	err := n.Send(context.Background(), "a@example.com", "Hello", "New Password: hunter2")
	assert.ErrorIs(t, err, ErrMailDisabled)
	assert.Contains(t, buf.String(), "a@example.com")
	assert.NotContains(t, buf.String(), "hunter2")

	smtp := NewNotifier(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 2525, MailSender: "noreply@example.com"}, logger)
	require.IsType(t, &SMTPNotifier{}, smtp)
	assert.Equal(t, 2525, smtp.(*SMTPNotifier).Port)
}

func TestLocalVideoStore(t *testing.T) {
	store, err := NewLocalVideoStore(filepath.Join(t.TempDir(), "videos"))
	require.NoError(t, err)
	ctx := context.Background()

	name, err := store.Save(ctx, "C:\\clips\\my lesson.mp4", strings.NewReader("frames"), 6)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_my_lesson.mp4"), name)

	data, err := os.ReadFile(filepath.Join(store.Dir, name))
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))

	require.NoError(t, store.Delete(ctx, name))
	require.NoError(t, store.Delete(ctx, name), "deleting a missing file is not an error")
	_, err = os.Stat(filepath.Join(store.Dir, name))
	assert.True(t, os.IsNotExist(err))
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalVideoStoreRemovesPartialUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalVideoStore(dir)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "lesson.mp4", io.MultiReader(strings.NewReader("half"), brokenReader{}), 100)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

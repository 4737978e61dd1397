package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"arnhub/backend/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// VideoStore keeps lesson video files. Save returns the stored name that
// goes into Lesson.VideoFilename.
type VideoStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, name string) error
}

func NewVideoStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (VideoStore, error) {
	if cfg.StorageBackend == "s3" {
		return NewS3VideoStore(ctx, cfg.S3VideoBucket, cfg.AWSRegion, logger)
	}
	return NewLocalVideoStore(cfg.UploadDir)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// StoredName turns an uploaded filename into a unique, path-free name.
func StoredName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "video"
	}
	return uuid.NewString() + "_" + base
}

type LocalVideoStore struct {
	Dir string
}

func NewLocalVideoStore(dir string) (*LocalVideoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalVideoStore{Dir: dir}, nil
}

func (s *LocalVideoStore) Save(_ context.Context, filename string, r io.Reader, _ int64) (string, error) {
	name := StoredName(filename)

	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create video file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write video file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close video file: %w", err)
	}
	return name, nil
}

func (s *LocalVideoStore) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type S3VideoStore struct {
	client *s3.Client
	bucket string
}

func NewS3VideoStore(ctx context.Context, bucket, region string, logger *log.Logger) (*S3VideoStore, error) {
	logger.Printf("Initializing S3 client with region: %s for bucket: %s", region, bucket)

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &S3VideoStore{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

func (s *S3VideoStore) key(name string) string {
	return "lesson_videos/" + name
}

func (s *S3VideoStore) Save(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	name := StoredName(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", name, err)
	}
	return name, nil
}

func (s *S3VideoStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("delete %s from s3: %w", name, err)
	}
	return nil
}

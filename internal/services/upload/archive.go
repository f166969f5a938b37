package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediflash/config"
	"mediflash/pkg/logger"
	s3client "mediflash/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Archiver keeps a copy of an uploaded document and returns where it went.
type Archiver interface {
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

// New picks the archiver named by cfg.Upload.Archive.
func New(ctx context.Context, cfg config.Config) (Archiver, error) {
	switch cfg.Upload.Archive {
	case "local":
		return NewLocalArchiver(cfg.Upload.LocalDir), nil
	case "s3":
		client, err := s3client.GetClient(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("%v: s3 client: %w", config.ModuleUpload, err)
		}
		return NewS3Archiver(client, cfg.S3.Bucket), nil
	}
	return NopArchiver{}, nil
}

// NopArchiver discards uploads.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, string, []byte) (string, error) { return "", nil }

// contentName is the sha256 of data plus the original extension, .pdf by default.
func contentName(filename string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	return hex.EncodeToString(sum[:]) + ext
}

// LocalArchiver writes uploads under a directory, named by content hash.
type LocalArchiver struct {
	dir string
}

func NewLocalArchiver(dir string) *LocalArchiver {
	return &LocalArchiver{dir: dir}
}

func (a *LocalArchiver) Archive(_ context.Context, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	finalPath := filepath.Join(a.dir, contentName(filename, data))
	if _, err := os.Stat(finalPath); err == nil {
		return finalPath, nil
	}

	// stage in a temp file, then rename into place
	tmp, err := os.CreateTemp(a.dir, "upload-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}
	return finalPath, nil
}

// bucketAPI is the part of the S3 client the archiver uses.
type bucketAPI interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads documents to a bucket under documents/<sha256>.<ext>.
type S3Archiver struct {
	client bucketAPI
	bucket string
}

func NewS3Archiver(client bucketAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

func (a *S3Archiver) ensureBucket(ctx context.Context) error {
	if _, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)}); err == nil {
		return nil
	}
	_, err := a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return fmt.Errorf("%v: create bucket: %w", config.ModuleS3, err)
		}
	}
	return nil
}

func (a *S3Archiver) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := "documents/" + contentName(filename, data)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("%v: put object: %w", config.ModuleS3, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

// Keep archives data and logs the outcome. Failures never reach the caller.
func Keep(ctx context.Context, a Archiver, filename string, data []byte) {
	if a == nil {
		return
	}
	location, err := a.Archive(ctx, filename, data)
	if err != nil {
		logger.Error(err, "%v: archive %s failed", config.ModuleUpload, filename)
		return
	}
	if location != "" {
		logger.WithFields(map[string]interface{}{
			"filename": filename,
			"location": location,
			"bytes":    len(data),
		}).Infof("%v: upload archived", config.ModuleUpload)
	}
}

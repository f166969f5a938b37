package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediflash/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchiver_WritesByContentHash(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	a := NewLocalArchiver(dir)

	path, err := a.Archive(context.Background(), "Cardiology Notes.PDF", []byte("%PDF-1.4 body"))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".pdf"))
	assert.Len(t, filepath.Base(path), 64+len(".pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	again, err := a.Archive(context.Background(), "copy.pdf", []byte("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, path, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestContentNameDefaultsToPDF(t *testing.T) {
	assert.True(t, strings.HasSuffix(contentName("upload", []byte("x")), ".pdf"))
}

type fakeBucket struct {
	headErr   error
	createErr error
	created   bool
	putKey    string
	putBody   string
	putErr    error
}

func (f *fakeBucket) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeBucket) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	return &s3.CreateBucketOutput{}, f.createErr
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putKey = aws.ToString(in.Key)
	body, _ := io.ReadAll(in.Body)
	f.putBody = string(body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archiver_PutsUnderDocuments(t *testing.T) {
	fake := &fakeBucket{}
	a := NewS3Archiver(fake, "uploads")

	loc, err := a.Archive(context.Background(), "notes.pdf", []byte("pdf bytes"))
	require.NoError(t, err)

	assert.False(t, fake.created)
	assert.True(t, strings.HasPrefix(fake.putKey, "documents/"))
	assert.Equal(t, "s3://uploads/"+fake.putKey, loc)
	assert.Equal(t, "pdf bytes", fake.putBody)
}

func TestS3Archiver_CreatesMissingBucket(t *testing.T) {
	fake := &fakeBucket{headErr: errors.New("not found"), createErr: &s3types.BucketAlreadyOwnedByYou{}}
	_, err := NewS3Archiver(fake, "uploads").Archive(context.Background(), "a.pdf", []byte("x"))
	require.NoError(t, err)
	assert.True(t, fake.created)

	fake = &fakeBucket{headErr: errors.New("not found"), createErr: errors.New("denied")}
	_, err = NewS3Archiver(fake, "uploads").Archive(context.Background(), "a.pdf", []byte("x"))
	assert.ErrorContains(t, err, "s3: create bucket")
}

func TestNewPicksArchiver(t *testing.T) {
	cfg := config.Config{Upload: config.UploadConfig{Archive: "none"}}
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, NopArchiver{}, a)

	cfg.Upload = config.UploadConfig{Archive: "local", LocalDir: t.TempDir()}
	a, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalArchiver{}, a)
}

func TestKeepSwallowsFailures(t *testing.T) {
	fake := &fakeBucket{putErr: errors.New("offline")}
	assert.NotPanics(t, func() {
		Keep(context.Background(), NewS3Archiver(fake, "b"), "a.pdf", []byte("x"))
		Keep(context.Background(), nil, "a.pdf", []byte("x"))
	})
}

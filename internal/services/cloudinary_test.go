package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/videotube-backend/internal/config"
)

type fakeHost struct {
	result *uploader.UploadResult
	err    error

	gotFile   interface{}
	gotParams uploader.UploadParams
}

func (f *fakeHost) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.gotFile = file
	f.gotParams = params
	return f.result, f.err
}

func stagedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))
	return path
}

func TestMediaResolver_Success(t *testing.T) {
	host := &fakeHost{result: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/a.png"}}
	m := &MediaResolver{host: host, folder: "videotube"}
	path := stagedFile(t)

	url, ok := m.Upload(context.Background(), path)
	require.True(t, ok)
	assert.Equal(t, "https://res.cloudinary.com/demo/a.png", url)
	assert.Equal(t, path, host.gotFile)
	assert.Equal(t, "videotube", host.gotParams.Folder)
	assert.Equal(t, "auto", host.gotParams.ResourceType)

	_, err := os.Stat(path)
	assert.NoError(t, err, "staged file is left for the caller on success")
}

func TestMediaResolver_FallsBackToPlainURL(t *testing.T) {
	m := &MediaResolver{host: &fakeHost{result: &uploader.UploadResult{URL: "http://res.cloudinary.com/demo/a.png"}}}

	url, ok := m.Upload(context.Background(), stagedFile(t))
	require.True(t, ok)
	assert.Equal(t, "http://res.cloudinary.com/demo/a.png", url)
}

func TestMediaResolver_FailureRemovesStagedFile(t *testing.T) {
	tests := []struct {
		name string
		host *fakeHost
	}{
		{"transport error", &fakeHost{err: errors.New("connection reset")}},
		{"nil result", &fakeHost{}},
		{"no url", &fakeHost{result: &uploader.UploadResult{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := &MediaResolver{host: tc.host}
			path := stagedFile(t)

			url, ok := m.Upload(context.Background(), path)
			assert.False(t, ok)
			assert.Empty(t, url)

			_, err := os.Stat(path)
			assert.True(t, errors.Is(err, os.ErrNotExist))
		})
	}
}

func TestMediaResolver_EmptyPath(t *testing.T) {
	host := &fakeHost{}
	m := &MediaResolver{host: host}

	url, ok := m.Upload(context.Background(), "")
	assert.False(t, ok)
	assert.Empty(t, url)
	assert.Nil(t, host.gotFile, "host must not be called")
}

func TestMediaResolver_WithoutCredentials(t *testing.T) {
	m, err := NewMediaResolver(&config.Config{CloudinaryFolder: "videotube"})
	require.NoError(t, err)
	assert.False(t, m.Available())

	path := stagedFile(t)
	_, ok := m.Upload(context.Background(), path)
	assert.False(t, ok)

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPresigner struct {
	calls atomic.Int32
	err   error
}

func (p *countingPresigner) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

func (p *countingPresigner) GetPresignedR2FileReadURL(ctx context.Context, fileKey string) (string, error) {
	p.calls.Add(1)
	if p.err != nil {
		return "", p.err
	}
	return "https://bucket.example/" + fileKey + "?sig=1", nil
}

func TestURLCacheService(t *testing.T) {
	presigner := &countingPresigner{}
	svc, err := NewURLCacheService(presigner)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := svc.GetReadURL(ctx, "campaign/u1/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/campaign/u1/clip.mp4?sig=1", url)

	again, err := svc.GetReadURL(ctx, "campaign/u1/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, url, again)

	empty, err := svc.GetReadURL(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.LessOrEqual(t, presigner.calls.Load(), int32(2))
}

func TestURLCacheServicePresignError(t *testing.T) {
	presigner := &countingPresigner{err: errors.New("no credentials")}
	svc, err := NewURLCacheService(presigner)
	require.NoError(t, err)

	_, err = svc.GetReadURL(context.Background(), "campaign/u1/clip.mp4")
	assert.Error(t, err)
}

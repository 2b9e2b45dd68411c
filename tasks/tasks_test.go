package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"custemoapi/metrics"
	"custemoapi/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(test.FakePNG)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCampaignKey(t *testing.T) {
	key := CampaignKey("user 1", "image/png")
	assert.True(t, strings.HasPrefix(key, "campaign/user%201/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, CampaignKey("user 1", "image/png"))
	assert.True(t, strings.HasSuffix(CampaignKey("u", "video/mp4"), ".mp4"))
}

func TestEnqueueVideoGeneration(t *testing.T) {
	queue := &test.QueueMock{}
	payload := VideoGenerationPayload{UserID: "u1", FrameKey: "campaign/u1/a.png", FrameMIME: "image/png", Prompt: "Spin", OutputKey: "campaign/u1/b.mp4"}

	info, err := EnqueueVideoGeneration(context.Background(), queue, payload)
	require.NoError(t, err)
	assert.Equal(t, TypeGenerateVideo, info.Type)

	decoded, err := DecodeVideoPayload(info.Payload)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeVideoPayloadRejectsIncomplete(t *testing.T) {
	_, err := DecodeVideoPayload([]byte(`{"user_id": "u1"}`))
	assert.Error(t, err)
	_, err = DecodeVideoPayload([]byte(`not json`))
	assert.Error(t, err)
}

func TestHandleVideoGenerationTask(t *testing.T) {
	srv := frameServer(t)
	storage := &test.AWSProviderMock{MockUrl: srv.URL}
	renderer := &test.VideoRendererMock{}
	reg := metrics.NewRegistry()

	payload := VideoGenerationPayload{UserID: "u1", FrameKey: "campaign/u1/a.png", FrameMIME: "image/png", Prompt: "Spin", OutputKey: "campaign/u1/b.mp4"}
	task, err := NewVideoGenerationTask(payload)
	require.NoError(t, err)

	err = HandleVideoGenerationTask(context.Background(), task, renderer, storage, reg)
	require.NoError(t, err)

	require.Len(t, renderer.Frames, 1)
	assert.Equal(t, test.FakePNG, renderer.Frames[0].Data)
	assert.Equal(t, "image/png", renderer.Frames[0].MIMEType)
	assert.Equal(t, []string{"Spin"}, renderer.Prompts)

	clip, ok := storage.Uploaded("campaign/u1/b.mp4")
	require.True(t, ok)
	assert.Equal(t, test.FakeMP4, clip.Data)
	assert.Equal(t, "video/mp4", clip.MIMEType)
	assert.Equal(t, int64(1), reg.Value("video_jobs_total", map[string]string{"outcome": "done"}))
}

func TestHandleVideoGenerationTaskRenderFailure(t *testing.T) {
	srv := frameServer(t)
	storage := &test.AWSProviderMock{MockUrl: srv.URL}
	renderer := &test.VideoRendererMock{Err: test.ErrBackendDown}
	reg := metrics.NewRegistry()

	task, err := NewVideoGenerationTask(VideoGenerationPayload{UserID: "u1", FrameKey: "a.png", FrameMIME: "image/png", OutputKey: "b.mp4"})
	require.NoError(t, err)

	err = HandleVideoGenerationTask(context.Background(), task, renderer, storage, reg)
	assert.ErrorIs(t, err, test.ErrBackendDown)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, 0, storage.UploadCount())
	assert.Equal(t, int64(1), reg.Value("video_jobs_total", map[string]string{"outcome": "failed"}))
}

func TestHandleVideoGenerationTaskUploadFailure(t *testing.T) {
	srv := frameServer(t)
	storage := &test.AWSProviderMock{MockUrl: srv.URL, UploadErr: test.ErrBackendDown}

	task, err := NewVideoGenerationTask(VideoGenerationPayload{UserID: "u1", FrameKey: "a.png", FrameMIME: "image/png", OutputKey: "b.mp4"})
	require.NoError(t, err)

	err = HandleVideoGenerationTask(context.Background(), task, &test.VideoRendererMock{}, storage, nil)
	assert.ErrorIs(t, err, test.ErrBackendDown)
}

func TestHandleVideoGenerationTaskBadPayload(t *testing.T) {
	renderer := &test.VideoRendererMock{}
	raw, _ := json.Marshal(map[string]string{"user_id": "u1"})

	err := HandleVideoGenerationTask(context.Background(), asynq.NewTask(TypeGenerateVideo, raw), renderer, &test.AWSProviderMock{}, nil)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, renderer.Prompts)
}

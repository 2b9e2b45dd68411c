package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"custemoapi/services"
	"custemoapi/stylist"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	TypeGenerateVideo = "generate:video"
	QueueGenerate     = "generate"

	videoResultRetention = 24 * time.Hour
	videoTaskTimeout     = 20 * time.Minute
)

type VideoGenerationPayload struct {
	UserID    string `json:"user_id"`
	FrameKey  string `json:"frame_key"`
	FrameMIME string `json:"frame_mime"`
	Prompt    string `json:"prompt"`
	OutputKey string `json:"output_key"`
}

// Enqueuer is the part of *asynq.Client the API needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector is the part of *asynq.Inspector used to report job state.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"video/mp4":  ".mp4",
}

// CampaignKey builds the bucket key for a user's campaign asset.
func CampaignKey(userID, mimeType string) string {
	return fmt.Sprintf("campaign/%s/%s%s", url.PathEscape(userID), uuid.NewString(), extensions[mimeType])
}

func NewVideoGenerationTask(payload VideoGenerationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateVideo, data), nil
}

func EnqueueVideoGeneration(ctx context.Context, client Enqueuer, payload VideoGenerationPayload) (*asynq.TaskInfo, error) {
	task, err := NewVideoGenerationTask(payload)
	if err != nil {
		return nil, err
	}
	return client.EnqueueContext(ctx, task,
		asynq.MaxRetry(3),
		asynq.Queue(QueueGenerate),
		asynq.Retention(videoResultRetention),
		asynq.Timeout(videoTaskTimeout),
	)
}

func DecodeVideoPayload(data []byte) (VideoGenerationPayload, error) {
	var payload VideoGenerationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, err
	}
	if payload.UserID == "" || payload.FrameKey == "" || payload.OutputKey == "" {
		return payload, errors.New("incomplete video payload")
	}
	return payload, nil
}

// HandleVideoGenerationTask renders the stored frame into a clip, uploads it
// and records the clip's key as the task result.
func HandleVideoGenerationTask(ctx context.Context, t *asynq.Task, renderer services.VideoRenderer, storage services.AWSServiceProvider, counter stylist.Counter) error {
	payload, err := DecodeVideoPayload(t.Payload())
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] bad video payload: %v", err))
		return fmt.Errorf("decode video payload: %v: %w", err, asynq.SkipRetry)
	}
	logger := log.With().Str("user", payload.UserID).Str("output", payload.OutputKey).Logger()

	frameURL, err := storage.GetPresignedR2FileReadURL(ctx, payload.FrameKey)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Video: %s] presign frame: %w", payload.FrameKey, err))
		return err
	}
	frame, err := services.ReadFileFromUrl(ctx, frameURL)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Video: %s] download frame: %w", payload.FrameKey, err))
		return err
	}

	logger.Info().Msg("[Video] rendering")
	video, err := renderer.RenderVideo(ctx, payload.Prompt, stylist.Attachment{Data: frame, MIMEType: payload.FrameMIME})
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Video: %s] render: %w", payload.OutputKey, err))
		inc(ctx, counter, "failed")
		return err
	}

	if err := storage.UploadObject(ctx, payload.OutputKey, video.Data, video.MIMEType); err != nil {
		sentry.CaptureException(fmt.Errorf("[Video: %s] upload: %w", payload.OutputKey, err))
		inc(ctx, counter, "failed")
		return err
	}

	if w := t.ResultWriter(); w != nil {
		if _, err := w.Write([]byte(payload.OutputKey)); err != nil {
			logger.Warn().Err(err).Msg("[Video] could not record task result")
		}
	}
	inc(ctx, counter, "done")
	logger.Info().Int("bytes", len(video.Data)).Msg("[Video] done")
	return nil
}

func inc(ctx context.Context, counter stylist.Counter, outcome string) {
	if counter != nil {
		counter.Inc(ctx, "video_jobs_total", map[string]string{"outcome": outcome}, 1)
	}
}

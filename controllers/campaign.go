package controllers

import (
	"errors"
	"net/http"
	"strings"

	"custemoapi/designprompt"
	"custemoapi/models"
	"custemoapi/services"
	"custemoapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	campaignFailedText = "Could not generate the campaign image. Please try again."
	badImageText       = "Image must be a base64 data URL of a PNG, JPEG, WEBP or HEIC picture"
)

type CampaignController struct {
	Images     services.ImageGenerator
	Storage    services.AWSServiceProvider
	URLs       services.URLCacheServiceProvider
	Queue      tasks.Enqueuer
	Inspector  tasks.TaskInspector
	Workspaces *Workspaces
}

func (m *CampaignController) CampaignRoutes(g *echo.Group) {
	g.POST("/image", func(c echo.Context) error {
		if m.Images == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "Campaign images are not configured")
		}
		in := new(models.CampaignImageIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}

		user := currentUser(c)
		prompt := strings.TrimSpace(in.Prompt)
		if prompt == "" {
			prompt = designprompt.CampaignPrompt(m.Workspaces.Get(user.ID).snapshot())
		}

		res, err := m.Images.GenerateCampaignImage(c.Request().Context(), prompt, in.Size)
		if err != nil || len(res.Images) == 0 {
			return m.imageFailed(c, user.ID, err)
		}
		return c.JSON(http.StatusOK, models.CampaignImageOut{Image: res.Images[0].DataURL(), Prompt: prompt})
	})

	g.POST("/image/edit", func(c echo.Context) error {
		if m.Images == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "Campaign images are not configured")
		}
		in := new(models.CampaignEditIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}
		image, err := services.ParseDataURL(in.Image)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, badImageText)
		}

		user := currentUser(c)
		res, err := m.Images.EditImage(c.Request().Context(), *image, in.Instruction)
		if err != nil || len(res.Images) == 0 {
			return m.imageFailed(c, user.ID, err)
		}
		return c.JSON(http.StatusOK, models.CampaignImageOut{Image: res.Images[0].DataURL()})
	})

	g.POST("/video", func(c echo.Context) error {
		if m.Queue == nil || m.Storage == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "Video generation is not configured")
		}
		in := new(models.CampaignVideoIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}
		frame, err := services.ParseDataURL(in.Image)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, badImageText)
		}

		ctx := c.Request().Context()
		user := currentUser(c)
		prompt := strings.TrimSpace(in.Prompt)
		if prompt == "" {
			prompt = models.DefaultVideoPrompt
		}

		frameKey := tasks.CampaignKey(user.ID, frame.MIMEType)
		if err := m.Storage.UploadObject(ctx, frameKey, frame.Data, frame.MIMEType); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msgf("[User: %s] frame upload failed", user.ID)
			sentry.CaptureException(err)
			return errorJSON(c, http.StatusBadGateway, "Could not store the source frame, please try again")
		}

		info, err := tasks.EnqueueVideoGeneration(ctx, m.Queue, tasks.VideoGenerationPayload{
			UserID:    user.ID,
			FrameKey:  frameKey,
			FrameMIME: frame.MIMEType,
			Prompt:    prompt,
			OutputKey: tasks.CampaignKey(user.ID, "video/mp4"),
		})
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msgf("[User: %s] video enqueue failed", user.ID)
			sentry.CaptureException(err)
			return errorJSON(c, http.StatusBadGateway, "Could not start video generation, please try again")
		}
		zerolog.Ctx(ctx).Info().Msgf("[User: %s] video job %s queued", user.ID, info.ID)
		return c.JSON(http.StatusAccepted, models.VideoJobOut{ID: info.ID, State: models.VideoJobQueued})
	})

	g.GET("/video/:id", func(c echo.Context) error {
		if m.Inspector == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "Video generation is not configured")
		}
		ctx := c.Request().Context()
		user := currentUser(c)
		id := c.Param("id")

		info, err := m.Inspector.GetTaskInfo(tasks.QueueGenerate, id)
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return errorJSON(c, http.StatusNotFound, "Video job not found")
		}
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msgf("[Video: %s] inspect failed", id)
			return errorJSON(c, http.StatusBadGateway, "Could not read video job state")
		}
		payload, err := tasks.DecodeVideoPayload(info.Payload)
		if err != nil || payload.UserID != user.ID {
			return errorJSON(c, http.StatusNotFound, "Video job not found")
		}

		out := models.VideoJobOut{ID: info.ID}
		switch info.State {
		case asynq.TaskStateCompleted:
			out.State = models.VideoJobDone
			key := string(info.Result)
			if key == "" {
				key = payload.OutputKey
			}
			if m.URLs != nil {
				url, err := m.URLs.GetReadURL(ctx, key)
				if err != nil {
					zerolog.Ctx(ctx).Error().Err(err).Msgf("[Video: %s] presign failed", id)
					return errorJSON(c, http.StatusBadGateway, "Could not sign the video link, please try again")
				}
				out.URL = url
			}
		case asynq.TaskStateActive:
			out.State = models.VideoJobRendering
		case asynq.TaskStateArchived:
			out.State = models.VideoJobFailed
			out.Error = info.LastErr
		default:
			out.State = models.VideoJobQueued
		}
		return c.JSON(http.StatusOK, out)
	})
}

func (m *CampaignController) imageFailed(c echo.Context, userID string, err error) error {
	if err == nil {
		err = services.ErrNoImage
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Msgf("[User: %s] campaign image failed", userID)
	sentry.CaptureException(err)
	return errorJSON(c, http.StatusBadGateway, campaignFailedText)
}

package controllers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"custemoapi/models"
	"custemoapi/services"
	"custemoapi/tasks"
	"custemoapi/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frameDataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(test.FakePNG)

func campaignDeps(t *testing.T) (Dependencies, *test.ImageGeneratorMock, *test.AWSProviderMock, *test.QueueMock) {
	images := &test.ImageGeneratorMock{}
	storage := &test.AWSProviderMock{}
	queue := &test.QueueMock{}
	urls, err := services.NewURLCacheService(storage)
	require.NoError(t, err)
	return Dependencies{
		Images:    images,
		Storage:   storage,
		URLs:      urls,
		Queue:     queue,
		Inspector: queue,
	}, images, storage, queue
}

func TestCampaignImageDefaultsToWorkspacePrompt(t *testing.T) {
	deps, images, _, _ := campaignDeps(t)
	e, s := setupServer(t, deps)
	user := test.FakeUser(t, s, "")

	cfg := models.DefaultGarmentConfiguration()
	cfg.Color = "#000000"
	cfg.GarmentType = models.GarmentJacket
	rec := serve(e, test.NewJSONAuthRequest("PUT", "/studio/configuration", user.ID, cfg))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest("POST", "/campaign/image", user.ID, models.CampaignImageIn{Size: models.ImageSize2K}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[models.CampaignImageOut](t, rec)
	assert.True(t, strings.HasPrefix(out.Image, "data:image/png;base64,"))
	assert.Equal(t,
		"A high-fashion editorial shot of a #000000 Organic Cotton Jacket, Regular Fit, Crew Neck, photorealistic, 8k resolution.",
		out.Prompt,
	)
	assert.Equal(t, []string{out.Prompt}, images.Prompts)
	assert.Equal(t, []models.ImageSize{models.ImageSize2K}, images.Sizes)

	rec = serve(e, test.NewJSONAuthRequest("POST", "/campaign/image", user.ID, models.CampaignImageIn{Prompt: "Runway in Milan"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Runway in Milan", images.Prompts[1])

	rec = serve(e, test.NewJSONAuthRequest("POST", "/campaign/image", user.ID, models.CampaignImageIn{Size: "8K"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignImageFailure(t *testing.T) {
	deps, images, _, _ := campaignDeps(t)
	images.Err = test.ErrBackendDown
	e, s := setupServer(t, deps)
	user := test.FakeUser(t, s, "")

	rec := serve(e, test.NewJSONAuthRequest("POST", "/campaign/image", user.ID, models.CampaignImageIn{}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error": "Could not generate the campaign image. Please try again."}`, rec.Body.String())
}

func TestCampaignEditImage(t *testing.T) {
	deps, images, _, _ := campaignDeps(t)
	e, s := setupServer(t, deps)
	user := test.FakeUser(t, s, "")

	rec := serve(e, test.NewJSONAuthRequest("POST", "/campaign/image/edit", user.ID, models.CampaignEditIn{Image: frameDataURL, Instruction: "Add a retro filter"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Add a retro filter"}, images.Instructions)

	rec = serve(e, test.NewJSONAuthRequest("POST", "/campaign/image/edit", user.ID, models.CampaignEditIn{Image: "not a data url", Instruction: "Add a retro filter"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest("POST", "/campaign/image/edit", user.ID, models.CampaignEditIn{Image: frameDataURL}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignVideoLifecycle(t *testing.T) {
	deps, _, storage, queue := campaignDeps(t)
	e, s := setupServer(t, deps)
	user := test.FakeUser(t, s, "")

	rec := serve(e, test.NewJSONAuthRequest("POST", "/campaign/video", user.ID, models.CampaignVideoIn{Image: frameDataURL}))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	job := decode[models.VideoJobOut](t, rec)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.VideoJobQueued, job.State)

	enqueued := queue.Enqueued()
	require.Len(t, enqueued, 1)
	assert.Equal(t, tasks.TypeGenerateVideo, enqueued[0].Type)
	payload, err := tasks.DecodeVideoPayload(enqueued[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, user.ID, payload.UserID)
	assert.Equal(t, models.DefaultVideoPrompt, payload.Prompt)
	assert.Equal(t, "image/png", payload.FrameMIME)
	assert.True(t, strings.HasPrefix(payload.FrameKey, "campaign/"+user.ID+"/"))
	assert.True(t, strings.HasSuffix(payload.OutputKey, ".mp4"))

	frame, ok := storage.Uploaded(payload.FrameKey)
	require.True(t, ok)
	assert.Equal(t, test.FakePNG, frame.Data)

	rec = serve(e, test.NewJSONAuthRequest("GET", "/campaign/video/"+job.ID, user.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.VideoJobQueued, decode[models.VideoJobOut](t, rec).State)

	queue.SetState(job.ID, asynq.TaskStateActive, "", "")
	rec = serve(e, test.NewJSONAuthRequest("GET", "/campaign/video/"+job.ID, user.ID, nil))
	assert.Equal(t, models.VideoJobRendering, decode[models.VideoJobOut](t, rec).State)

	queue.SetState(job.ID, asynq.TaskStateCompleted, payload.OutputKey, "")
	rec = serve(e, test.NewJSONAuthRequest("GET", "/campaign/video/"+job.ID, user.ID, nil))
	done := decode[models.VideoJobOut](t, rec)
	assert.Equal(t, models.VideoJobDone, done.State)
	assert.Equal(t, "https://fakebucketurl.com/"+payload.OutputKey, done.URL)

	other := test.FakeUser(t, s, "other@example.com")
	rec = serve(e, test.NewJSONAuthRequest("GET", "/campaign/video/"+job.ID, other.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest("GET", "/campaign/video/unknown", user.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCampaignVideoFailedJob(t *testing.T) {
	deps, _, _, queue := campaignDeps(t)
	e, s := setupServer(t, deps)
	user := test.FakeUser(t, s, "")

	rec := serve(e, test.NewJSONAuthRequest("POST", "/campaign/video", user.ID, models.CampaignVideoIn{Image: frameDataURL, Prompt: "Slow spin"}))
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := decode[models.VideoJobOut](t, rec)

	payload, err := tasks.DecodeVideoPayload(queue.Enqueued()[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "Slow spin", payload.Prompt)

	queue.SetState(job.ID, asynq.TaskStateArchived, "", "quota exhausted")
	rec = serve(e, test.NewJSONAuthRequest("GET", "/campaign/video/"+job.ID, user.ID, nil))
	out := decode[models.VideoJobOut](t, rec)
	assert.Equal(t, models.VideoJobFailed, out.State)
	assert.Equal(t, "quota exhausted", out.Error)
}

func TestCampaignVideoUploadAndQueueFailures(t *testing.T) {
	deps, _, storage, queue := campaignDeps(t)
	storage.UploadErr = test.ErrBackendDown
	e, s := setupServer(t, deps)
	user := test.FakeUser(t, s, "")

	rec := serve(e, test.NewJSONAuthRequest("POST", "/campaign/video", user.ID, models.CampaignVideoIn{Image: frameDataURL}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, queue.Enqueued())

	storage.UploadErr = nil
	queue.EnqueueErr = test.ErrBackendDown
	rec = serve(e, test.NewJSONAuthRequest("POST", "/campaign/video", user.ID, models.CampaignVideoIn{Image: frameDataURL}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCampaignUnavailableWithoutServices(t *testing.T) {
	e, s := setupServer(t, Dependencies{})
	user := test.FakeUser(t, s, "")

	rec := serve(e, test.NewJSONAuthRequest("POST", "/campaign/image", user.ID, models.CampaignImageIn{}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = serve(e, test.NewJSONAuthRequest("POST", "/campaign/video", user.ID, models.CampaignVideoIn{Image: frameDataURL}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = serve(e, test.NewJSONAuthRequest("GET", "/campaign/video/abc", user.ID, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

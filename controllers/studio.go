package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"custemoapi/designprompt"
	"custemoapi/metrics"
	"custemoapi/models"
	"custemoapi/previewfence"
	"custemoapi/stylist"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const previewFailedText = "Could not generate realistic preview. Please try again."

// Workspace is one user's studio: the current configuration and the last
// preview that was allowed to commit.
type Workspace struct {
	mu         sync.Mutex
	config     models.GarmentConfiguration
	preview    *string
	generating bool
	errText    string
	fence      *previewfence.Controller

	// renders counts previews in flight, stale ones included.
	renders  int
	lastUsed time.Time
}

func (w *Workspace) rendering() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renders > 0
}

func (w *Workspace) out() models.WorkspaceOut {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outLocked()
}

func (w *Workspace) outLocked() models.WorkspaceOut {
	return models.WorkspaceOut{
		Configuration: w.config,
		Prompt:        designprompt.Compile(w.config, ""),
		Preview:       w.preview,
		Generating:    w.generating,
		Error:         w.errText,
		Sequence:      w.fence.Current(),
	}
}

func (w *Workspace) snapshot() models.GarmentConfiguration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.config
}

// Workspaces keeps one studio workspace per user and forgets idle ones.
type Workspaces struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*Workspace
	now     func() time.Time
}

func NewWorkspaces(ttl time.Duration) *Workspaces {
	return &Workspaces{
		ttl:     ttl,
		entries: make(map[string]*Workspace),
		now:     time.Now,
	}
}

// Get returns the workspace for userID, starting from the default configuration.
func (ws *Workspaces) Get(userID string) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	now := ws.now()
	if ws.ttl > 0 {
		for key, w := range ws.entries {
			if now.Sub(w.lastUsed) > ws.ttl && !w.rendering() {
				delete(ws.entries, key)
			}
		}
	}

	w, ok := ws.entries[userID]
	if !ok {
		w = &Workspace{config: models.DefaultGarmentConfiguration(), fence: previewfence.NewController()}
		ws.entries[userID] = w
	}
	w.lastUsed = now
	return w
}

// touch restarts the idle clock for a workspace that is still registered.
func (ws *Workspaces) touch(userID string, w *Workspace) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.entries[userID] == w {
		w.lastUsed = ws.now()
	}
}

func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.entries)
}

type StudioController struct {
	Previews   stylist.PreviewGenerator
	Workspaces *Workspaces
	Metrics    *metrics.Registry
}

func (m *StudioController) StudioRoutes(g *echo.Group) {
	g.GET("/configuration", func(c echo.Context) error {
		return c.JSON(http.StatusOK, m.Workspaces.Get(currentUser(c).ID).out())
	})

	g.PUT("/configuration", func(c echo.Context) error {
		in := new(models.GarmentConfiguration)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}

		w := m.Workspaces.Get(currentUser(c).ID)
		w.mu.Lock()
		defer w.mu.Unlock()
		w.config = in.Normalized()
		w.fence.InvalidateAll()
		w.preview = nil
		w.generating = false
		w.errText = ""
		return c.JSON(http.StatusOK, w.outLocked())
	})

	g.GET("/prompt", func(c echo.Context) error {
		cfg := m.Workspaces.Get(currentUser(c).ID).snapshot()
		return c.JSON(http.StatusOK, map[string]string{"prompt": designprompt.Compile(cfg, c.QueryParam("override"))})
	})

	g.POST("/preview", func(c echo.Context) error {
		if m.Previews == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "Preview generation is not configured")
		}
		user := currentUser(c)
		w := m.Workspaces.Get(user.ID)

		w.mu.Lock()
		token := w.fence.BeginRequest()
		cfg := w.config
		w.generating = true
		w.errText = ""
		w.renders++
		w.mu.Unlock()
		defer m.Workspaces.touch(user.ID, w)

		ctx := c.Request().Context()
		image, err := m.Previews.GeneratePreview(ctx, cfg)
		if err == nil && image == nil {
			err = errNoPreview
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		w.renders--
		if !w.fence.IsStillCurrent(token) {
			zerolog.Ctx(ctx).Info().Uint64("sequence", token.Sequence()).Msgf("[User: %s] stale preview discarded", user.ID)
			m.previewResult(ctx, "discarded")
			return c.JSON(http.StatusOK, models.PreviewOut{Applied: false, Sequence: token.Sequence()})
		}

		w.generating = false
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msgf("[User: %s] preview generation failed", user.ID)
			sentry.CaptureException(err)
			w.errText = previewFailedText
			m.previewResult(ctx, "error")
			return c.JSON(http.StatusBadGateway, models.PreviewOut{Applied: true, Sequence: token.Sequence(), Error: previewFailedText})
		}

		dataURL := image.DataURL()
		w.preview = &dataURL
		m.previewResult(ctx, "committed")
		return c.JSON(http.StatusOK, models.PreviewOut{Applied: true, Sequence: token.Sequence(), Image: dataURL})
	})
}

func (m *StudioController) previewResult(ctx context.Context, result string) {
	m.Metrics.Inc(ctx, "preview_requests_total", map[string]string{"result": result}, 1)
}

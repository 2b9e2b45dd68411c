package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"custemoapi/models"
	"custemoapi/services"
	"custemoapi/stylist"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const defaultWidget = "studio"

type ChatController struct {
	Chats      *stylist.Registry
	Workspaces *Workspaces
	Enabled    bool
}

func chatKey(userID string, widget string) string {
	if widget == "" {
		widget = defaultWidget
	}
	return userID + ":" + widget
}

func (m *ChatController) ChatRoutes(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		manager := m.Chats.Get(chatKey(currentUser(c).ID, c.QueryParam("widget")))
		return c.JSON(http.StatusOK, map[string]interface{}{
			"variant": manager.Variant(),
			"turns":   manager.Transcript(),
		})
	})

	g.DELETE("", func(c echo.Context) error {
		m.Chats.Reset(chatKey(currentUser(c).ID, c.QueryParam("widget")))
		return c.NoContent(http.StatusNoContent)
	})

	// Streams turn events as server-sent events until the reply and any
	// preview it asked for are done.
	g.POST("", func(c echo.Context) error {
		if !m.Enabled {
			return errorJSON(c, http.StatusServiceUnavailable, "Stylist chat is not configured")
		}
		in := new(models.ChatIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}

		opts := stylist.SendOptions{UseThinking: in.UseThinking}
		if in.Image != "" {
			image, err := services.ParseDataURL(in.Image)
			if err != nil {
				return errorJSON(c, http.StatusBadRequest, "Image must be a base64 data URL of a PNG, JPEG, WEBP or HEIC picture")
			}
			opts.Image = image
		}

		user := currentUser(c)
		cfg := m.Workspaces.Get(user.ID).snapshot()
		manager := m.Chats.Get(chatKey(user.ID, in.Widget))
		ctx := c.Request().Context()

		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set(echo.HeaderCacheControl, "no-cache")
		res.Header().Set(echo.HeaderConnection, "keep-alive")
		res.WriteHeader(http.StatusOK)

		for event := range manager.Send(ctx, cfg, in.Message, opts) {
			if err := writeEvent(res, event); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msgf("[User: %s] chat client went away", user.ID)
				break
			}
		}
		return nil
	})
}

func writeEvent(res *echo.Response, event stylist.TurnEvent) error {
	data, err := json.Marshal(event.Turn)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event.Kind, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}

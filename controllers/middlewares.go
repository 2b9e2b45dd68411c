package controllers

import (
	"errors"
	"net/http"
	"time"

	"custemoapi/metrics"
	"custemoapi/models"
	"custemoapi/store"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger attaches a request-scoped zerolog logger and counts requests
// per route pattern and status class.
func RequestLogger(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			logger := log.With().
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			labels := map[string]string{"method": req.Method, "route": c.Path(), "status": statusClass(status)}
			reg.Inc(c.Request().Context(), "http_requests_total", labels, 1)

			if status >= 500 {
				logger.Error().Err(err).Int("status", status).Dur("duration", time.Since(start)).Msg("http request failed")
			} else {
				logger.Info().Int("status", status).Dur("duration", time.Since(start)).Msg("http request served")
			}
			return nil
		}
	}
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "0"
	}
}

func recordStore(c echo.Context) store.RecordStore {
	return c.Get("__store").(store.RecordStore)
}

// UserMiddleware resolves the JWT subject into the current user account.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userRaw := c.Get("user")
		if userRaw == nil {
			return echo.ErrUnauthorized
		}
		token := userRaw.(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		userId, _ := claims["sub"].(string)
		if userId == "" {
			zerolog.Ctx(c.Request().Context()).Warn().Msg("token without subject")
			return echo.ErrUnauthorized
		}

		user, err := recordStore(c).FindUser(c.Request().Context(), userId)
		if errors.Is(err, store.ErrNotFound) {
			return echo.ErrUnauthorized
		}
		if err != nil {
			zerolog.Ctx(c.Request().Context()).Error().Err(err).Msgf("[User: %s] lookup failed", userId)
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Could not reach the record store"})
		}
		c.Set("currentUser", *user)
		return next(c)
	}
}

func currentUser(c echo.Context) models.UserAccount {
	return c.Get("currentUser").(models.UserAccount)
}

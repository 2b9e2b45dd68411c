package controllers

import (
	"errors"
	"net/http"
	"time"

	"custemoapi/store"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const accessTokenTTL = 72 * time.Hour

var errNoPreview = errors.New("preview generator returned no image")

func GenerateUserToken(secret string, userPk string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString([]byte(secret))
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// storeError maps record store failures onto HTTP responses.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		return errorJSON(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, store.ErrInvalidTransition):
		return errorJSON(c, http.StatusUnprocessableEntity, err.Error())
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("record store failure")
	sentry.CaptureException(err)
	return errorJSON(c, http.StatusBadGateway, "Record store unavailable, please try again")
}

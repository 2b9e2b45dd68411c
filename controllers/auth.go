package controllers

import (
	"errors"
	"net/http"

	"custemoapi/languageutil"
	"custemoapi/models"
	"custemoapi/store"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type AuthController struct {
	JWTSecret string
}

func (m *AuthController) AuthRoutes(g *echo.Group) {
	// Email lookup only; there is no credential check.
	g.POST("/login", func(c echo.Context) error {
		in := new(models.LoginIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}

		user, err := recordStore(c).FindUserByEmail(c.Request().Context(), in.Email)
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "User not found")
		}
		if err != nil {
			return storeError(c, err)
		}
		return m.signIn(c, http.StatusOK, user)
	})

	g.POST("/register", func(c echo.Context) error {
		in := new(models.RegisterIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		in.Name = languageutil.NormalizeName(in.Name)
		if err := c.Validate(in); err != nil {
			return err
		}

		user, err := recordStore(c).RegisterUser(c.Request().Context(), *in)
		if err != nil {
			return storeError(c, err)
		}
		zerolog.Ctx(c.Request().Context()).Info().Msgf("[User: %s] registered", user.ID)
		return m.signIn(c, http.StatusOK, user)
	})
}

func (m *AuthController) UserRoutes(g *echo.Group) {
	g.GET("/:id", func(c echo.Context) error {
		user, err := recordStore(c).FindUser(c.Request().Context(), c.Param("id"))
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, user.Out())
	})
}

func (m *AuthController) signIn(c echo.Context, status int, user *models.UserAccount) error {
	token, err := GenerateUserToken(m.JWTSecret, user.ID)
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msgf("[User: %s] signing token", user.ID)
		return echo.ErrInternalServerError
	}
	return c.JSON(status, models.SignInOut{UserOut: user.Out(), AccessToken: token})
}

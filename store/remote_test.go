package store

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"custemoapi/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// recordService serves the remote record REST surface from a LocalStore.
func recordService(t *testing.T) *httptest.Server {
	backing := newLocalStore(t)
	e := echo.New()

	fail := func(c echo.Context, err error) error {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrDuplicateEmail):
			status = http.StatusConflict
		case errors.Is(err, ErrInvalidTransition):
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}
	reply := func(c echo.Context, v any, err error) error {
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, v)
	}

	e.POST("/designs", func(c echo.Context) error {
		var in models.SaveDesignIn
		if err := c.Bind(&in); err != nil {
			return err
		}
		d, err := backing.SaveDesign(c.Request().Context(), in)
		return reply(c, d, err)
	})
	e.GET("/designs/:userId", func(c echo.Context) error {
		ds, err := backing.ListDesignsByUser(c.Request().Context(), c.Param("userId"))
		return reply(c, ds, err)
	})
	e.GET("/admin/designs", func(c echo.Context) error {
		ds, err := backing.ListAllDesigns(c.Request().Context())
		return reply(c, ds, err)
	})
	e.POST("/orders", func(c echo.Context) error {
		var in models.CreateOrderIn
		if err := c.Bind(&in); err != nil {
			return err
		}
		o, err := backing.CreateOrder(c.Request().Context(), in)
		return reply(c, o, err)
	})
	e.GET("/orders/:userId", func(c echo.Context) error {
		os, err := backing.ListOrders(c.Request().Context(), models.OrdersOf(c.Param("userId")))
		return reply(c, os, err)
	})
	e.GET("/admin/orders", func(c echo.Context) error {
		os, err := backing.ListOrders(c.Request().Context(), models.AllOrders())
		return reply(c, os, err)
	})
	e.PATCH("/admin/orders/:id/status", func(c echo.Context) error {
		var in models.UpdateOrderStatusIn
		if err := c.Bind(&in); err != nil {
			return err
		}
		o, err := backing.UpdateOrderStatus(c.Request().Context(), c.Param("id"), in.Status)
		return reply(c, o, err)
	})
	e.POST("/auth/login", func(c echo.Context) error {
		var in models.LoginIn
		if err := c.Bind(&in); err != nil {
			return err
		}
		u, err := backing.FindUserByEmail(c.Request().Context(), in.Email)
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
		}
		return c.JSON(http.StatusOK, u.Out())
	})
	e.POST("/auth/register", func(c echo.Context) error {
		var in models.RegisterIn
		if err := c.Bind(&in); err != nil {
			return err
		}
		u, err := backing.RegisterUser(c.Request().Context(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, u.Out())
	})
	e.GET("/users/:id", func(c echo.Context) error {
		u, err := backing.FindUser(c.Request().Context(), c.Param("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, u.Out())
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteStore(t *testing.T) {
	srv := recordService(t)
	exerciseRecordStore(t, NewRemoteStore(srv.URL+"/", srv.Client()))
}

func TestRemoteErrorMessages(t *testing.T) {
	err := &RemoteError{Status: http.StatusNotFound, Message: errorMessage([]byte(`{"message":"User not found"}`))}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "User not found")

	err = &RemoteError{Status: http.StatusBadGateway, Message: errorMessage([]byte("upstream down\n"))}
	assert.Equal(t, "record service returned 502: upstream down", err.Error())
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestSeedSkipsRemoteStore(t *testing.T) {
	srv := recordService(t)
	s := NewRemoteStore(srv.URL, srv.Client())
	assert.NoError(t, Seed(t.Context(), s))
}

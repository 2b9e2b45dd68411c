package controllers

import (
	"net/http"
	"strings"

	"custemoapi/languageutil"
	"custemoapi/metrics"
	"custemoapi/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RecordsController serves the record REST surface that the remote store
// backend also consumes.
type RecordsController struct {
	Metrics *metrics.Registry
}

func (m *RecordsController) DesignRoutes(g *echo.Group) {
	g.POST("", func(c echo.Context) error {
		in := new(models.SaveDesignIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			in.Name = languageutil.DesignName(in.State)
		}
		if err := c.Validate(in); err != nil {
			return err
		}

		design, err := recordStore(c).SaveDesign(c.Request().Context(), *in)
		if err != nil {
			return storeError(c, err)
		}
		m.written(c, "design")
		zerolog.Ctx(c.Request().Context()).Info().Msgf("[Design: %s] saved for %s", design.ID, design.UserID)
		return c.JSON(http.StatusCreated, design)
	})

	g.GET("/:userId", func(c echo.Context) error {
		designs, err := recordStore(c).ListDesignsByUser(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, nonNil(designs))
	})
}

func (m *RecordsController) OrderRoutes(g *echo.Group) {
	g.POST("", func(c echo.Context) error {
		in := new(models.CreateOrderIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}

		order, err := recordStore(c).CreateOrder(c.Request().Context(), *in)
		if err != nil {
			return storeError(c, err)
		}
		m.written(c, "order")
		zerolog.Ctx(c.Request().Context()).Info().Msgf("[Order: %s] placed by %s, total %.2f", order.ID, order.UserID, order.TotalAmount)
		return c.JSON(http.StatusCreated, order)
	})

	g.POST("/quote", func(c echo.Context) error {
		in := new(models.QuoteIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, models.QuoteOrder(in.Items))
	})

	g.GET("/:userId", func(c echo.Context) error {
		orders, err := recordStore(c).ListOrders(c.Request().Context(), models.OrdersOf(c.Param("userId")))
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, nonNil(orders))
	})
}

func (m *RecordsController) AdminRoutes(g *echo.Group) {
	g.GET("/designs", func(c echo.Context) error {
		designs, err := recordStore(c).ListAllDesigns(c.Request().Context())
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, nonNil(designs))
	})

	g.GET("/orders", func(c echo.Context) error {
		orders, err := recordStore(c).ListOrders(c.Request().Context(), models.AllOrders())
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, nonNil(orders))
	})

	g.PATCH("/orders/:id/status", func(c echo.Context) error {
		in := new(models.UpdateOrderStatusIn)
		if err := c.Bind(in); err != nil {
			return err
		}
		if err := c.Validate(in); err != nil {
			return err
		}

		order, err := recordStore(c).UpdateOrderStatus(c.Request().Context(), c.Param("id"), in.Status)
		if err != nil {
			return storeError(c, err)
		}
		zerolog.Ctx(c.Request().Context()).Info().Msgf("[Order: %s] moved to %s", order.ID, order.Status)
		return c.JSON(http.StatusOK, order)
	})
}

func (m *RecordsController) written(c echo.Context, kind string) {
	m.Metrics.Inc(c.Request().Context(), "records_written_total", map[string]string{"kind": kind}, 1)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

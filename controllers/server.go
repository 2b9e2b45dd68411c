package controllers

import (
	"net/http"

	"custemoapi/config"
	"custemoapi/metrics"
	"custemoapi/models"
	"custemoapi/services"
	"custemoapi/store"
	"custemoapi/stylist"
	"custemoapi/tasks"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("collection", models.ValidateCollection)
	v.RegisterValidation("garmenttype", models.ValidateGarmentType)
	v.RegisterValidation("fabric", models.ValidateFabric)
	v.RegisterValidation("fit", models.ValidateFit)
	v.RegisterValidation("neckline", models.ValidateNeckline)
	v.RegisterValidation("pattern", models.ValidatePattern)
	v.RegisterValidation("graphic", models.ValidateGraphic)
	v.RegisterValidation("printmethod", models.ValidatePrintMethod)
	v.RegisterValidation("hardware", models.ValidateHardware)
	v.RegisterValidation("sleevelength", models.ValidateSleeveLength)
	v.RegisterValidation("orderstatus", models.ValidateOrderStatus)
	v.RegisterValidation("imagesize", models.ValidateImageSize)
	return &CustomValidator{validator: v}
}

// Dependencies are the collaborators the HTTP layer talks to. Nil optional
// members disable the routes that need them.
type Dependencies struct {
	Store    store.RecordStore
	Chat     stylist.ChatBackend
	Previews stylist.PreviewGenerator
	Images   services.ImageGenerator

	Storage   services.AWSServiceProvider
	URLs      services.URLCacheServiceProvider
	Queue     tasks.Enqueuer
	Inspector tasks.TaskInspector

	Metrics *metrics.Registry
}

func SetupServer(cfg config.Config, deps Dependencies) *echo.Echo {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(RequestLogger(deps.Metrics))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__store", deps.Store)
			return next(c)
		}
	})
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", deps.Metrics.EchoHandlerText)
	e.GET("/metrics.json", deps.Metrics.EchoHandlerJSON)

	authController := AuthController{JWTSecret: cfg.JWTSecret}
	authController.AuthRoutes(e.Group("/auth"))
	authController.UserRoutes(e.Group("/users"))

	recordsController := RecordsController{Metrics: deps.Metrics}
	recordsController.DesignRoutes(e.Group("/designs"))
	recordsController.OrderRoutes(e.Group("/orders"))
	recordsController.AdminRoutes(e.Group("/admin"))

	jwtMiddleware := echojwt.JWT([]byte(cfg.JWTSecret))

	studioGroup := e.Group("/studio", jwtMiddleware, UserMiddleware)
	workspaces := NewWorkspaces(cfg.SessionTTL)
	studioController := StudioController{Previews: deps.Previews, Workspaces: workspaces, Metrics: deps.Metrics}
	studioController.StudioRoutes(studioGroup)

	chats := stylist.NewRegistry(cfg.SessionTTL, func() *stylist.Manager {
		return stylist.NewManager(deps.Chat, deps.Previews, stylist.WithCounter(deps.Metrics))
	})
	chatController := ChatController{Chats: chats, Workspaces: workspaces, Enabled: deps.Chat != nil}
	chatController.ChatRoutes(studioGroup.Group("/chat"))

	campaignController := CampaignController{
		Images:     deps.Images,
		Storage:    deps.Storage,
		URLs:       deps.URLs,
		Queue:      deps.Queue,
		Inspector:  deps.Inspector,
		Workspaces: workspaces,
	}
	campaignController.CampaignRoutes(e.Group("/campaign", jwtMiddleware, UserMiddleware))

	return e
}

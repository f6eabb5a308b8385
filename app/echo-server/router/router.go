package router

import (
	"replacementGame/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupGameRoutes(web *echo.Group, handler *rest.GameHandler) {
	web.GET("/", handler.Page)

	game := web.Group("/game")
	game.POST("/select", handler.Select)
	game.POST("/submit", handler.Submit)
	game.POST("/new", handler.NewRound)
}

func SetupGameAPIRoutes(api *echo.Group, handler *rest.GameHandler) {
	games := api.Group("/games")

	games.POST("", handler.CreateGame)
	games.GET("/:id", handler.GetGame)
	games.PUT("/:id/selections", handler.PutSelection)
	games.POST("/:id/submit", handler.SubmitGame)
}

func SetupDashboardRoutes(web *echo.Group, api *echo.Group, handler *rest.DashboardHandler) {
	dashboard := web.Group("/retrain-dashboard")
	dashboard.GET("", handler.Page)
	dashboard.GET("/export.xlsx", handler.Export)

	api.GET("/retrain-logs", handler.Logs)
}

func SetupOperationalRoutes(e *echo.Echo) {
	e.GET("/healthz", rest.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

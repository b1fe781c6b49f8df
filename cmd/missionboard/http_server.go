package main

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/brawlers/missionboard/pkg/log"
)

type API struct {
	f    *fiber.App
	addr string
}

func NewAPI(app *App, addr string) *API {
	api := &API{addr: addr}

	api.f = fiber.New(fiber.Config{
		EnablePrintRoutes:     false,
		DisableStartupMessage: true,
		BodyLimit:             app.config.BodyLimit(),
		ReadTimeout:           app.config.HTTPTimeout(),
		WriteTimeout:          app.config.HTTPTimeout(),
		ErrorHandler:          errorHandler,
	})

	api.f.Use(recover.New())
	api.f.Use(log.NewFiberLogger(&log.LoggerConfig{
		Name:          "api",
		UserGetter:    brawlerName,
		DoMetrics:     app.config.Metrics(),
		LogErrorsOnly: !app.config.Debug(),
	}))

	api.f.Get("/health", getHealthHandler())

	if app.config.Metrics() {
		api.f.Get("/metrics", getMetricsHandler())
	}

	api.f.Get("/ws", getWsHandler(app))

	addAuthRoutes(app, api.f.Group("/api/auth"))

	auth := getAuthHandler(app)

	missions := api.f.Group("/api/missions")
	missions.Get("/", getMissionsHandler(app))
	missions.Get("/:id", getMissionHandler(app))
	missions.Get("/:id/crew", getCrewHandler(app))
	missions.Post("/", auth, postMissionHandler(app))
	missions.Patch("/:id", auth, patchMissionHandler(app))
	missions.Delete("/:id", auth, deleteMissionHandler(app))
	missions.Patch("/:id/start", auth, getStartHandler(app))
	missions.Patch("/:id/complete", auth, getCompleteHandler(app))
	missions.Patch("/:id/fail", auth, getFailHandler(app))

	crew := api.f.Group("/api/crew", auth)
	crew.Post("/join/:id", getJoinHandler(app))
	crew.Delete("/leave/:id", getLeaveHandler(app))
	crew.Delete("/kick/:id/:brawler", getKickHandler(app))

	dash := api.f.Group("/api/dashboard")
	dash.Get("/stats", getStatsHandler(app))
	dash.Get("/recent-missions", getRecentHandler(app))
	dash.Get("/me", auth, getUserDashboardHandler(app))
	dash.Get("/active", auth, getActiveHandler(app))
	dash.Get("/open", auth, getOpenHandler(app))

	brawlers := api.f.Group("/api/brawlers", auth)
	brawlers.Get("/me", getMeHandler(app))
	brawlers.Patch("/me", patchMeHandler(app))
	brawlers.Get("/me/missions", getMyMissionsHandler(app))

	return api
}

func (api *API) Address() string {
	return api.addr
}

func (api *API) Listen() error {
	return api.f.Listen(api.addr)
}

func (api *API) Shutdown(timeout time.Duration) error {
	return api.f.ShutdownWithTimeout(timeout)
}

func getHealthHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok", "version": gitRevision})
	}
}

func paramID(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(name), 10, 0)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "bad "+name)
	}

	return uint(id), nil
}

func queryInt(ctx *fiber.Ctx, name string, def int) (int, error) {
	s := ctx.Query(name)
	if s == "" {
		return def, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "bad "+name)
	}

	return n, nil
}

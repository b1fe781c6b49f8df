package main

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/brawlers/missionboard/internal/wshandler"
)

// getWsHandler streams mission events. ?mission=<id> limits the stream to one mission.
func getWsHandler(app *App) fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		var missionID uint

		if s := ws.Query("mission"); s != "" {
			if n, err := strconv.ParseUint(s, 10, 0); err == nil {
				missionID = uint(n)
			}
		}

		name := uuid.NewString()

		h := wshandler.NewHandler(app.logger, name, ws, missionID)

		app.logger.Debug("ws listener connected", "name", name)
		app.events.SubscribeNamed(name, h.SendEvent)
		h.Listen()
		app.events.Unsubscribe(name)
		app.logger.Debug("ws listener disconnected", "name", name)
	})
}

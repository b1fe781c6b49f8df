package main

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brawlers/missionboard/internal/model"
)

const (
	BrawlerKey  = "brawler"
	TokenCookie = "token"
)

// getAuthHandler accepts a bearer token or the token cookie and stores the
// brawler in locals.
func getAuthHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := bearer(ctx.Get(fiber.HeaderAuthorization))

		if token == "" {
			token = ctx.Cookies(TokenCookie)
		}

		if token == "" {
			return errUnauthorized
		}

		b, err := app.auth.Authenticate(ctx.UserContext(), token)
		if err != nil {
			return err
		}

		ctx.Locals(BrawlerKey, b)

		return ctx.Next()
	}
}

func bearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}

	return ""
}

func Brawler(c *fiber.Ctx) *model.Brawler {
	b, _ := c.Locals(BrawlerKey).(*model.Brawler)

	return b
}

func BrawlerID(c *fiber.Ctx) uint {
	if b := Brawler(c); b != nil {
		return b.ID
	}

	return 0
}

func brawlerName(c *fiber.Ctx) string {
	if b := Brawler(c); b != nil {
		return b.Username
	}

	return ""
}

package main

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brawlers/missionboard/internal/auth"
)

type credentials struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func addAuthRoutes(app *App, r fiber.Router) {
	r.Post("/register", getRegisterHandler(app))
	r.Post("/login", getLoginHandler(app))
	r.Post("/logout", getLogoutHandler())
}

func getRegisterHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		c := new(credentials)

		if err := ctx.BodyParser(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		p, err := app.auth.Register(ctx.UserContext(), c.Username, c.Password, c.DisplayName)
		if err != nil {
			return err
		}

		setTokenCookie(ctx, p)

		return ctx.Status(fiber.StatusCreated).JSON(p)
	}
}

func getLoginHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		c := new(credentials)

		if err := ctx.BodyParser(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		p, err := app.auth.Login(ctx.UserContext(), c.Username, c.Password)
		if err != nil {
			return err
		}

		setTokenCookie(ctx, p)

		return ctx.JSON(p)
	}
}

func getLogoutHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.ClearCookie(TokenCookie)

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}

func setTokenCookie(ctx *fiber.Ctx, p *auth.Passport) {
	ctx.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    p.Token,
		Expires:  p.ExpiresAt,
		MaxAge:   int(time.Until(p.ExpiresAt).Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func getMeHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		b, err := app.auth.Me(ctx.UserContext(), BrawlerID(ctx))
		if err != nil {
			return err
		}

		return ctx.JSON(b.ToDTO(true))
	}
}

func patchMeHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var req struct {
			DisplayName string `json:"display_name"`
		}

		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		b, err := app.auth.UpdateDisplayName(ctx.UserContext(), BrawlerID(ctx), req.DisplayName)
		if err != nil {
			return err
		}

		return ctx.JSON(b.ToDTO(true))
	}
}

func getMyMissionsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		res, err := app.query.MyMissions(ctx.UserContext(), BrawlerID(ctx))
		if err != nil {
			return err
		}

		return ctx.JSON(res)
	}
}

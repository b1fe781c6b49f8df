package main

import (
	"github.com/gofiber/fiber/v2"
)

func getJoinHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		if err := app.crew.Join(ctx.UserContext(), id, BrawlerID(ctx)); err != nil {
			return err
		}

		return detail(ctx, app, id)
	}
}

func getLeaveHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		if err := app.crew.Leave(ctx.UserContext(), id, BrawlerID(ctx)); err != nil {
			return err
		}

		return detail(ctx, app, id)
	}
}

func getKickHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		target, err := paramID(ctx, "brawler")
		if err != nil {
			return err
		}

		if err := app.crew.KickMember(ctx.UserContext(), id, target, BrawlerID(ctx)); err != nil {
			return err
		}

		return detail(ctx, app, id)
	}
}

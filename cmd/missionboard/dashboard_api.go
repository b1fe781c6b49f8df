package main

import (
	"github.com/gofiber/fiber/v2"
)

func getStatsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		s, err := app.query.Stats(ctx.UserContext())
		if err != nil {
			return err
		}

		return ctx.JSON(s)
	}
}

func getRecentHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		limit, err := queryInt(ctx, "limit", 0)
		if err != nil {
			return err
		}

		res, err := app.query.RecentMissions(ctx.UserContext(), limit)
		if err != nil {
			return err
		}

		return ctx.JSON(res)
	}
}

func getUserDashboardHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		d, err := app.query.UserDashboard(ctx.UserContext(), BrawlerID(ctx))
		if err != nil {
			return err
		}

		return ctx.JSON(d)
	}
}

func getActiveHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		limit, err := queryInt(ctx, "limit", 0)
		if err != nil {
			return err
		}

		res, err := app.query.ActiveMissions(ctx.UserContext(), BrawlerID(ctx), limit)
		if err != nil {
			return err
		}

		return ctx.JSON(res)
	}
}

func getOpenHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		limit, err := queryInt(ctx, "limit", 0)
		if err != nil {
			return err
		}

		res, err := app.query.OpenMissionsFor(ctx.UserContext(), BrawlerID(ctx), limit)
		if err != nil {
			return err
		}

		return ctx.JSON(res)
	}
}

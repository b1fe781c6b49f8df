package main

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brawlers/missionboard/internal/model"
)

func getMissionsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		f, err := missionFilter(ctx)
		if err != nil {
			return err
		}

		res, err := app.query.List(ctx.UserContext(), f)
		if err != nil {
			return err
		}

		return ctx.JSON(res)
	}
}

func missionFilter(ctx *fiber.Ctx) (*model.MissionFilter, error) {
	f := &model.MissionFilter{
		Name:   strings.TrimSpace(ctx.Query("name")),
		Status: model.Status(ctx.Query("status")),
	}

	if ctx.QueryBool("with_room") {
		f.WithRoom = true
	}

	for name, dst := range map[string]*uint{
		"owned_by":          &f.OwnedBy,
		"joined_by":         &f.JoinedBy,
		"exclude_owned_by":  &f.ExcludeOwnedBy,
		"exclude_joined_by": &f.ExcludeJoinedBy,
	} {
		n, err := queryInt(ctx, name, 0)
		if err != nil {
			return nil, err
		}

		*dst = uint(n)
	}

	var err error

	if f.Limit, err = queryInt(ctx, "limit", 0); err != nil {
		return nil, err
	}

	if f.Offset, err = queryInt(ctx, "offset", 0); err != nil {
		return nil, err
	}

	return f, nil
}

func getMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		m, err := app.query.Detail(ctx.UserContext(), id)
		if err != nil {
			return err
		}

		return ctx.JSON(m)
	}
}

func getCrewHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		crew, err := app.query.Crew(ctx.UserContext(), id)
		if err != nil {
			return err
		}

		return ctx.JSON(crew)
	}
}

func postMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		dto := new(model.NewMissionDTO)

		if err := ctx.BodyParser(dto); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		m, err := app.manager.Create(ctx.UserContext(), BrawlerID(ctx), dto)
		if err != nil {
			return err
		}

		return detail(ctx.Status(fiber.StatusCreated), app, m.ID)
	}
}

func patchMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		dto := new(model.EditMissionDTO)

		if err := ctx.BodyParser(dto); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if _, err := app.manager.Edit(ctx.UserContext(), id, BrawlerID(ctx), dto); err != nil {
			return err
		}

		return detail(ctx, app, id)
	}
}

func deleteMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		if err := app.manager.Remove(ctx.UserContext(), id, BrawlerID(ctx)); err != nil {
			return err
		}

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}

type transitionFunc func(ctx context.Context, missionID, requesterID uint) (*model.Mission, error)

func transitionHandler(app *App, fn transitionFunc) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		if _, err := fn(ctx.UserContext(), id, BrawlerID(ctx)); err != nil {
			return err
		}

		return detail(ctx, app, id)
	}
}

func getStartHandler(app *App) fiber.Handler {
	return transitionHandler(app, app.lifecycle.Start)
}

func getCompleteHandler(app *App) fiber.Handler {
	return transitionHandler(app, app.lifecycle.Complete)
}

func getFailHandler(app *App) fiber.Handler {
	return transitionHandler(app, app.lifecycle.Fail)
}

func detail(ctx *fiber.Ctx, app *App, id uint) error {
	m, err := app.query.Detail(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(m)
}

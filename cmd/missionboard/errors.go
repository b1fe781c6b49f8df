package main

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/brawlers/missionboard/internal/auth"
	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
	"github.com/brawlers/missionboard/internal/repository"
)

var errUnauthorized = errors.New("authentication required")

var statuses = map[string]int{
	"NotFound":               fiber.StatusNotFound,
	"Forbidden":              fiber.StatusForbidden,
	"SelfJoinRejected":       fiber.StatusBadRequest,
	"SelfKickRejected":       fiber.StatusBadRequest,
	"InvalidArgument":        fiber.StatusBadRequest,
	"NotJoinable":            fiber.StatusConflict,
	"NotLeavable":            fiber.StatusConflict,
	"NotKickable":            fiber.StatusConflict,
	"MissionFull":            fiber.StatusConflict,
	"AlreadyJoined":          fiber.StatusConflict,
	"InvalidStateTransition": fiber.StatusConflict,
	"StoreUnavailable":       fiber.StatusServiceUnavailable,
}

// errorStatus maps an error to the http status and the code put into the body.
func errorStatus(err error) (int, string) {
	if code := mission.Code(err); code != "" {
		return statuses[code], code
	}

	var fe *fiber.Error

	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, errUnauthorized):
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, repository.ErrUsernameTaken):
		return fiber.StatusConflict, "UsernameTaken"
	case errors.As(err, &fe):
		return fe.Code, "HttpError"
	default:
		return fiber.StatusInternalServerError, "Internal"
	}
}

func errorHandler(ctx *fiber.Ctx, err error) error {
	status, code := errorStatus(err)

	msg := err.Error()

	if status >= fiber.StatusInternalServerError {
		slog.Default().With("logger", "api").Error("request failed", slog.String("path", ctx.Path()), slog.Any("error", err))

		if status == fiber.StatusInternalServerError {
			msg = "internal error"
		}
	}

	return ctx.Status(status).JSON(&model.ErrorDTO{Error: code, Message: msg})
}

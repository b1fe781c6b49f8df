package mission

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brawlers/missionboard/internal/model"
)

const maxNameLength = 200

// Manager creates, edits and removes missions on behalf of their chief.
type Manager struct {
	store     Store
	lifecycle *Lifecycle
	logger    *slog.Logger
}

func NewManager(store Store, lifecycle *Lifecycle) *Manager {
	return &Manager{
		store:     store,
		lifecycle: lifecycle,
		logger:    slog.Default().With("logger", "manager"),
	}
}

func (mg *Manager) Create(ctx context.Context, chiefID uint, dto *model.NewMissionDTO) (*model.Mission, error) {
	if chiefID == 0 {
		return nil, ErrForbidden
	}

	if dto == nil {
		return nil, invalid("empty mission")
	}

	name, err := checkName(dto.Name)
	if err != nil {
		return nil, err
	}

	if dto.MaxCrew < 1 {
		return nil, invalid("max_crew must be at least 1")
	}

	if err := checkDuration(dto.Duration); err != nil {
		return nil, err
	}

	m := &model.Mission{
		ChiefID:     chiefID,
		Name:        name,
		Description: trimmed(dto.Description),
		Status:      model.StatusOpen,
		MaxCrew:     dto.MaxCrew,
		Duration:    dto.Duration,
	}

	if err := mg.store.CreateMission(ctx, m); err != nil {
		mg.logger.Error("create failed", slog.Uint64("chief", uint64(chiefID)), slog.Any("error", err))

		return nil, storeError(err)
	}

	mg.logger.Info("mission created", slog.String("mission", m.String()), slog.Uint64("chief", uint64(chiefID)))

	j := mg.lifecycle.notify.journal()
	j.event(model.EventCreated, m, 0, chiefID, 0)
	mg.lifecycle.notify.flush(j)

	return m, nil
}

// Edit changes the descriptive fields and the crew cap of an Open mission.
// Lowering the cap to the current crew size fills the mission.
func (mg *Manager) Edit(ctx context.Context, missionID, requesterID uint, dto *model.EditMissionDTO) (*model.Mission, error) {
	if dto == nil {
		return nil, invalid("empty edit")
	}

	var res *model.Mission

	j := mg.lifecycle.notify.journal()

	err := mg.store.Atomic(ctx, missionID, func(tx Tx) error {
		m, err := tx.GetMission(ctx, missionID)
		if err != nil {
			return err
		}

		if !m.IsChief(requesterID) {
			return ErrForbidden
		}

		if m.Status != model.StatusOpen {
			return transition("only open missions can be edited, it is %s", m.Status)
		}

		crew, err := tx.CountCrew(ctx, missionID)
		if err != nil {
			return err
		}

		var upd model.MissionUpdate

		if dto.Name != nil {
			name, err := checkName(*dto.Name)
			if err != nil {
				return err
			}

			upd.Name = &name
		}

		if dto.Description != nil {
			upd.Description = trimmed(dto.Description)
			if upd.Description == nil {
				upd.Description = model.Ptr("")
			}
		}

		if dto.MaxCrew != nil {
			if *dto.MaxCrew < 1 {
				return invalid("max_crew must be at least 1")
			}

			if *dto.MaxCrew < crew {
				return invalid("max_crew %d is below current crew %d", *dto.MaxCrew, crew)
			}

			upd.MaxCrew = dto.MaxCrew
		}

		if dto.Duration != nil {
			if err := checkDuration(dto.Duration); err != nil {
				return err
			}

			upd.Duration = dto.Duration
		}

		if err := tx.UpdateMission(ctx, m.ID, upd); err != nil {
			return err
		}

		upd.Apply(m)
		j.event(model.EventEdited, m, 0, requesterID, crew)
		res = m

		if crew > 0 && m.MaxCrew <= crew {
			return mg.lifecycle.markFull(ctx, tx, m, crew, triggerEdit, j)
		}

		return nil
	})

	logResult(mg.logger, "edit", missionID, requesterID, err)

	if err != nil {
		return nil, storeError(err)
	}

	mg.lifecycle.notify.flush(j)

	return res, nil
}

// Remove soft deletes an Open mission. Memberships stay in place but the
// mission is invisible to every further operation.
func (mg *Manager) Remove(ctx context.Context, missionID, requesterID uint) error {
	j := mg.lifecycle.notify.journal()

	err := mg.store.Atomic(ctx, missionID, func(tx Tx) error {
		m, err := tx.GetMission(ctx, missionID)
		if err != nil {
			return err
		}

		if !m.IsChief(requesterID) {
			return ErrForbidden
		}

		if m.Status != model.StatusOpen {
			return transition("only open missions can be removed, it is %s", m.Status)
		}

		crew, err := tx.CountCrew(ctx, missionID)
		if err != nil {
			return err
		}

		if err := tx.SoftDeleteMission(ctx, missionID); err != nil {
			return err
		}

		j.event(model.EventRemoved, m, 0, requesterID, crew)

		return nil
	})

	logResult(mg.logger, "remove", missionID, requesterID, err)

	if err != nil {
		return storeError(err)
	}

	mg.lifecycle.notify.flush(j)

	return nil
}

func checkName(s string) (string, error) {
	name := strings.TrimSpace(s)

	if name == "" {
		return "", invalid("name is required")
	}

	if len(name) > maxNameLength {
		return "", invalid("name is longer than %d characters", maxNameLength)
	}

	return name, nil
}

func checkDuration(d *int) error {
	if d != nil && *d < 1 {
		return invalid("duration must be at least 1 minute")
	}

	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}

	return &v
}

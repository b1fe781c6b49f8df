package mission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/brawlers/missionboard/internal/capacity"
	"github.com/brawlers/missionboard/internal/model"
)

// Crew validates and applies membership changes. Every call runs as one
// Atomic unit on the mission, and status reconciliation happens in the same
// unit through the lifecycle's implicit transitions.
type Crew struct {
	store     Store
	lifecycle *Lifecycle
	logger    *slog.Logger
}

func NewCrew(store Store, lifecycle *Lifecycle) *Crew {
	return &Crew{
		store:     store,
		lifecycle: lifecycle,
		logger:    slog.Default().With("logger", "crew"),
	}
}

func (c *Crew) Join(ctx context.Context, missionID, brawlerID uint) error {
	// a full roster is still reconciled and committed before the rejection
	// reaches the caller
	var rejected error

	j := c.lifecycle.notify.journal()

	err := c.store.Atomic(ctx, missionID, func(tx Tx) error {
		m, err := tx.GetMission(ctx, missionID)
		if err != nil {
			return err
		}

		if m.IsChief(brawlerID) {
			return ErrSelfJoinRejected
		}

		crew, err := tx.CountCrew(ctx, missionID)
		if err != nil {
			return err
		}

		verdict := capacity.Evaluate(capacity.SnapshotOf(m), crew)

		if verdict != capacity.Joinable && verdict != capacity.Full {
			return ErrNotJoinable
		}

		joined, err := tx.HasMembership(ctx, missionID, brawlerID)
		if err != nil {
			return err
		}

		if joined {
			return ErrAlreadyJoined
		}

		if verdict == capacity.Full {
			rejected = ErrMissionFull

			return c.lifecycle.markFull(ctx, tx, m, crew, triggerJoin, j)
		}

		if err := tx.InsertMembership(ctx, missionID, brawlerID); err != nil {
			if errors.Is(err, ErrUniqueViolation) {
				return ErrAlreadyJoined
			}

			return err
		}

		crew++
		j.event(model.EventJoined, m, brawlerID, brawlerID, crew)

		if capacity.SnapshotOf(m).Fills(crew) {
			return c.lifecycle.markFull(ctx, tx, m, crew, triggerJoin, j)
		}

		return nil
	})

	if err == nil {
		err = rejected
		c.lifecycle.notify.flush(j)
	}

	crewResult("join", err)
	logResult(c.logger, "join", missionID, brawlerID, err)

	return storeError(err)
}

func (c *Crew) Leave(ctx context.Context, missionID, brawlerID uint) error {
	j := c.lifecycle.notify.journal()

	err := c.store.Atomic(ctx, missionID, func(tx Tx) error {
		m, err := tx.GetMission(ctx, missionID)
		if err != nil {
			return err
		}

		crew, err := tx.CountCrew(ctx, missionID)
		if err != nil {
			return err
		}

		if !capacity.Evaluate(capacity.SnapshotOf(m), crew).AllowsLeave() {
			return ErrNotLeavable
		}

		return c.depart(ctx, tx, m, crew, brawlerID, brawlerID, model.EventLeft, triggerLeave, j)
	})

	if err == nil {
		c.lifecycle.notify.flush(j)
	}

	crewResult("leave", err)
	logResult(c.logger, "leave", missionID, brawlerID, err)

	return storeError(err)
}

func (c *Crew) KickMember(ctx context.Context, missionID, targetID, requesterID uint) error {
	j := c.lifecycle.notify.journal()

	err := c.store.Atomic(ctx, missionID, func(tx Tx) error {
		m, err := tx.GetMission(ctx, missionID)
		if err != nil {
			return err
		}

		if !m.IsChief(requesterID) {
			return ErrForbidden
		}

		if targetID == requesterID {
			return ErrSelfKickRejected
		}

		crew, err := tx.CountCrew(ctx, missionID)
		if err != nil {
			return err
		}

		if !capacity.Evaluate(capacity.SnapshotOf(m), crew).AllowsKick() {
			return ErrNotKickable
		}

		return c.depart(ctx, tx, m, crew, targetID, requesterID, model.EventKicked, triggerKick, j)
	})

	if err == nil {
		c.lifecycle.notify.flush(j)
	}

	crewResult("kick", err)
	logResult(c.logger, "kick", missionID, targetID, err)

	return storeError(err)
}

func (c *Crew) depart(ctx context.Context, tx Tx, m *model.Mission, crewBefore int, brawlerID, actorID uint,
	evt model.EventType, trigger string, j *journal,
) error {
	removed, err := tx.DeleteMembership(ctx, m.ID, brawlerID)
	if err != nil {
		return err
	}

	if !removed {
		return ErrNotFound
	}

	j.event(evt, m, brawlerID, actorID, crewBefore-1)

	return c.lifecycle.reopen(ctx, tx, m, crewBefore, trigger, j)
}

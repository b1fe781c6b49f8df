package mission

import (
	"context"
	"log/slog"
	"time"

	"github.com/brawlers/missionboard/internal/callbacks"
	"github.com/brawlers/missionboard/internal/capacity"
	"github.com/brawlers/missionboard/internal/model"
)

// Lifecycle owns mission status transitions. Start, Complete and Fail are
// chief actions; markFull and reopen are the implicit transitions triggered by
// crew changes and run inside the caller's transaction.
type Lifecycle struct {
	store  Store
	notify *notifier
	logger *slog.Logger
	now    func() time.Time
}

func NewLifecycle(store Store, events *callbacks.Callback[*model.MissionEvent]) *Lifecycle {
	logger := slog.Default().With("logger", "lifecycle")

	return &Lifecycle{
		store:  store,
		notify: newNotifier(events, logger),
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for deadlines and events.
func (l *Lifecycle) SetClock(now func() time.Time) {
	l.now = now
	l.notify.now = now
}

func (l *Lifecycle) Start(ctx context.Context, missionID, requesterID uint) (*model.Mission, error) {
	var res *model.Mission

	j := l.notify.journal()

	err := l.store.Atomic(ctx, missionID, func(tx Tx) error {
		m, err := tx.GetMission(ctx, missionID)
		if err != nil {
			return err
		}

		if !m.IsChief(requesterID) {
			return ErrForbidden
		}

		switch {
		case m.Status == model.StatusCompleted:
			return transition("cannot restart a completed mission")
		case m.Status == model.StatusInProgress:
			return transition("mission is already in progress")
		case m.ConcludedFailure():
			return transition("cannot restart a failed mission that has ended")
		}

		crew, err := tx.CountCrew(ctx, missionID)
		if err != nil {
			return err
		}

		if crew < 1 {
			return transition("mission has no crew")
		}

		if capacity.SnapshotOf(m).Fills(crew) {
			return ErrMissionFull
		}

		upd := model.MissionUpdate{
			Status:         model.Ptr(model.StatusInProgress),
			FullByCapacity: model.Ptr(false),
		}

		if m.Duration != nil {
			deadline := l.now().UTC().Add(time.Duration(*m.Duration) * time.Minute)
			upd.Deadline = &deadline
		} else {
			upd.ClearDeadline = true
		}

		from := m.Status

		if err := tx.UpdateMission(ctx, m.ID, upd); err != nil {
			return err
		}

		upd.Apply(m)
		j.transition(from, m.Status, triggerChief)
		j.event(model.EventStarted, m, 0, requesterID, crew)
		res = m

		return nil
	})

	logResult(l.logger, "start", missionID, requesterID, err)

	if err != nil {
		return nil, storeError(err)
	}

	l.notify.flush(j)

	return res, nil
}

func (l *Lifecycle) Complete(ctx context.Context, missionID, requesterID uint) (*model.Mission, error) {
	return l.finish(ctx, missionID, requesterID, model.StatusCompleted, model.EventCompleted)
}

func (l *Lifecycle) Fail(ctx context.Context, missionID, requesterID uint) (*model.Mission, error) {
	return l.finish(ctx, missionID, requesterID, model.StatusFailed, model.EventFailed)
}

func (l *Lifecycle) finish(ctx context.Context, missionID, requesterID uint, to model.Status, evt model.EventType) (*model.Mission, error) {
	var res *model.Mission

	j := l.notify.journal()

	err := l.store.Atomic(ctx, missionID, func(tx Tx) error {
		m, err := tx.GetMission(ctx, missionID)
		if err != nil {
			return err
		}

		if !m.IsChief(requesterID) {
			return ErrForbidden
		}

		if m.Status != model.StatusInProgress {
			return transition("mission must be in progress, it is %s", m.Status)
		}

		crew, err := tx.CountCrew(ctx, missionID)
		if err != nil {
			return err
		}

		upd := model.MissionUpdate{Status: model.Ptr(to), FullByCapacity: model.Ptr(false)}

		if err := tx.UpdateMission(ctx, m.ID, upd); err != nil {
			return err
		}

		upd.Apply(m)
		j.transition(model.StatusInProgress, to, triggerChief)
		j.event(evt, m, 0, requesterID, crew)
		res = m

		return nil
	})

	logResult(l.logger, string(evt), missionID, requesterID, err)

	if err != nil {
		return nil, storeError(err)
	}

	l.notify.flush(j)

	return res, nil
}

// markFull moves an Open mission whose roster is at capacity to Failed, tagged
// as full by capacity. Any other status is left alone.
func (l *Lifecycle) markFull(ctx context.Context, tx Tx, m *model.Mission, crew int, trigger string, j *journal) error {
	if m.Status != model.StatusOpen {
		return nil
	}

	upd := model.MissionUpdate{
		Status:         model.Ptr(model.StatusFailed),
		FullByCapacity: model.Ptr(true),
	}

	if err := tx.UpdateMission(ctx, m.ID, upd); err != nil {
		return err
	}

	upd.Apply(m)
	j.transition(model.StatusOpen, model.StatusFailed, trigger)
	j.event(model.EventFilled, m, 0, 0, crew)

	return nil
}

// reopen moves a mission that failed by filling its roster back to Open once
// a member departs. crewBefore is the roster size before the departure.
func (l *Lifecycle) reopen(ctx context.Context, tx Tx, m *model.Mission, crewBefore int, trigger string, j *journal) error {
	if m.Status != model.StatusFailed || !m.FullByCapacity || crewBefore < m.MaxCrew {
		return nil
	}

	upd := model.MissionUpdate{
		Status:         model.Ptr(model.StatusOpen),
		FullByCapacity: model.Ptr(false),
	}

	if err := tx.UpdateMission(ctx, m.ID, upd); err != nil {
		return err
	}

	upd.Apply(m)
	j.transition(model.StatusFailed, model.StatusOpen, trigger)
	j.event(model.EventReopened, m, 0, 0, crewBefore-1)

	return nil
}

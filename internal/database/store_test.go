package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlers/missionboard/internal/callbacks"
	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
)

func prepare(t *testing.T) *DatabaseManager {
	t.Helper()

	db, err := GetDatabase(":memory:", false)
	require.NoError(t, err)

	dbm := New(db)
	require.NoError(t, dbm.Migrate())

	return dbm
}

func addBrawler(t *testing.T, dbm *DatabaseManager, name string) uint {
	t.Helper()

	b := &model.Brawler{Username: name, DisplayName: name, Password: "x"}
	require.NoError(t, dbm.Create(b))

	return b.ID
}

func addMission(t *testing.T, dbm *DatabaseManager, chief uint, maxCrew int) uint {
	t.Helper()

	m := &model.Mission{ChiefID: chief, Name: "raid", Status: model.StatusOpen, MaxCrew: maxCrew}
	require.NoError(t, dbm.CreateMission(context.Background(), m))

	return m.ID
}

func TestAtomicRollback(t *testing.T) {
	ctx := context.Background()
	dbm := prepare(t)

	chief := addBrawler(t, dbm, "chief")
	a := addBrawler(t, dbm, "a")
	id := addMission(t, dbm, chief, 2)

	boom := errors.New("boom")

	err := dbm.Atomic(ctx, id, func(tx mission.Tx) error {
		require.NoError(t, tx.InsertMembership(ctx, id, a))
		require.NoError(t, tx.UpdateMission(ctx, id, model.MissionUpdate{Status: model.Ptr(model.StatusFailed)}))

		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := dbm.CountCrew(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	m, err := dbm.GetMission(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, m.Status)
	assert.Equal(t, "chief", m.ChiefName())
}

func TestAtomicMissing(t *testing.T) {
	dbm := prepare(t)

	called := false
	err := dbm.Atomic(context.Background(), 42, func(mission.Tx) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, mission.ErrNotFound)
	assert.False(t, called)
}

func TestMembershipPrimitives(t *testing.T) {
	ctx := context.Background()
	dbm := prepare(t)

	chief := addBrawler(t, dbm, "chief")
	a := addBrawler(t, dbm, "a")
	id := addMission(t, dbm, chief, 2)

	err := dbm.Atomic(ctx, id, func(tx mission.Tx) error {
		require.NoError(t, tx.InsertMembership(ctx, id, a))
		require.ErrorIs(t, tx.InsertMembership(ctx, id, a), mission.ErrUniqueViolation)

		ok, err := tx.HasMembership(ctx, id, a)
		require.NoError(t, err)
		assert.True(t, ok)

		return nil
	})
	require.NoError(t, err)

	err = dbm.Atomic(ctx, id, func(tx mission.Tx) error {
		removed, err := tx.DeleteMembership(ctx, id, a)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = tx.DeleteMembership(ctx, id, a)
		require.NoError(t, err)
		assert.False(t, removed)

		return tx.SoftDeleteMission(ctx, id)
	})
	require.NoError(t, err)

	_, err = dbm.GetMission(ctx, id)
	require.ErrorIs(t, err, mission.ErrNotFound)

	require.ErrorIs(t, dbm.Atomic(ctx, id, func(mission.Tx) error { return nil }), mission.ErrNotFound)
}

func TestUpdateMissionDeadline(t *testing.T) {
	ctx := context.Background()
	dbm := prepare(t)

	chief := addBrawler(t, dbm, "chief")
	id := addMission(t, dbm, chief, 2)

	lc := mission.NewLifecycle(dbm, nil)
	cr := mission.NewCrew(dbm, lc)

	_, err := dbm.MissionQuery().Id(id).Update(map[string]any{"duration": 15})
	require.NoError(t, err)

	require.NoError(t, cr.Join(ctx, id, addBrawler(t, dbm, "a")))

	m, err := lc.Start(ctx, id, chief)
	require.NoError(t, err)
	require.NotNil(t, m.Deadline)

	stored, err := dbm.GetMission(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.Deadline)
	assert.True(t, stored.Deadline.Equal(*m.Deadline))
	assert.Equal(t, model.StatusInProgress, stored.Status)
}

func TestCoordinatorsOnSqlite(t *testing.T) {
	ctx := context.Background()
	dbm := prepare(t)

	lc := mission.NewLifecycle(dbm, callbacks.New[*model.MissionEvent]())
	cr := mission.NewCrew(dbm, lc)

	chief := addBrawler(t, dbm, "chief")
	a, b, c := addBrawler(t, dbm, "a"), addBrawler(t, dbm, "b"), addBrawler(t, dbm, "c")
	id := addMission(t, dbm, chief, 2)

	require.NoError(t, cr.Join(ctx, id, a))
	require.ErrorIs(t, cr.Join(ctx, id, a), mission.ErrAlreadyJoined)
	require.NoError(t, cr.Join(ctx, id, b))

	m, err := dbm.GetMission(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, m.Status)
	assert.True(t, m.FullByCapacity)

	require.ErrorIs(t, cr.Join(ctx, id, c), mission.ErrMissionFull)
	require.NoError(t, cr.KickMember(ctx, id, a, chief))

	m, err = dbm.GetMission(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, m.Status)
	assert.False(t, m.FullByCapacity)

	require.NoError(t, cr.Join(ctx, id, c))

	roster, err := dbm.CrewRoster(ctx, id)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, b, roster[0].BrawlerID)
	assert.Equal(t, "b", roster[0].DisplayName)
	assert.Equal(t, int64(1), roster[0].MissionJoinedCount)
}

func TestConcurrentJoinOnSqlite(t *testing.T) {
	ctx := context.Background()
	dbm := prepare(t)

	lc := mission.NewLifecycle(dbm, nil)
	cr := mission.NewCrew(dbm, lc)

	chief := addBrawler(t, dbm, "chief")
	id := addMission(t, dbm, chief, 4)

	ids := make([]uint, 16)
	for i := range ids {
		ids[i] = addBrawler(t, dbm, fmt.Sprintf("b%d", i))
	}

	var (
		wg       sync.WaitGroup
		mx       sync.Mutex
		ok, full int
	)

	for _, b := range ids {
		wg.Add(1)

		go func(b uint) {
			defer wg.Done()

			err := cr.Join(ctx, id, b)

			mx.Lock()
			defer mx.Unlock()

			if err == nil {
				ok++
			} else if errors.Is(err, mission.ErrMissionFull) {
				full++
			}
		}(b)
	}

	wg.Wait()

	assert.Equal(t, 4, ok)
	assert.Equal(t, 12, full)

	n, err := dbm.CountCrew(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

package mission_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlers/missionboard/internal/callbacks"
	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
	"github.com/brawlers/missionboard/internal/repository"
)

type testApp struct {
	repo      *repository.MemoryRepo
	events    *callbacks.Callback[*model.MissionEvent]
	lifecycle *mission.Lifecycle
	crew      *mission.Crew
	manager   *mission.Manager
	query     *mission.Query

	mx       sync.Mutex
	received []*model.MissionEvent
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	return newTestAppWithStore(t, nil)
}

func newTestAppWithStore(t *testing.T, store mission.Store) *testApp {
	t.Helper()

	app := &testApp{
		repo:   repository.NewMemoryRepo(),
		events: callbacks.New[*model.MissionEvent](),
	}

	if store == nil {
		store = app.repo
	}

	app.lifecycle = mission.NewLifecycle(store, app.events)
	app.crew = mission.NewCrew(store, app.lifecycle)
	app.manager = mission.NewManager(store, app.lifecycle)
	app.query = mission.NewQuery(app.repo)

	app.events.SubscribeNamed("test", func(e *model.MissionEvent) bool {
		app.mx.Lock()
		app.received = append(app.received, e)
		app.mx.Unlock()

		return true
	})

	return app
}

func (a *testApp) brawler(t *testing.T, name string) uint {
	t.Helper()

	b := &model.Brawler{Username: name, DisplayName: name, Password: "x"}
	require.NoError(t, a.repo.Create(context.Background(), b))

	return b.ID
}

func (a *testApp) mission(t *testing.T, chief uint, maxCrew int, duration *int) uint {
	t.Helper()

	m, err := a.manager.Create(context.Background(), chief, &model.NewMissionDTO{
		Name:     "raid",
		MaxCrew:  maxCrew,
		Duration: duration,
	})
	require.NoError(t, err)

	return m.ID
}

func (a *testApp) state(t *testing.T, id uint) (*model.Mission, int) {
	t.Helper()

	m, err := a.repo.GetMission(context.Background(), id)
	require.NoError(t, err)

	crew, err := a.repo.CountCrew(context.Background(), id)
	require.NoError(t, err)

	return m, crew
}

func (a *testApp) eventTypes() []model.EventType {
	a.mx.Lock()
	defer a.mx.Unlock()

	res := make([]model.EventType, 0, len(a.received))

	for _, e := range a.received {
		res = append(res, e.Type)
	}

	return res
}

func (a *testApp) resetEvents() {
	a.mx.Lock()
	a.received = nil
	a.mx.Unlock()
}

func TestJoinLeaveScenario(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a, b, c := app.brawler(t, "a"), app.brawler(t, "b"), app.brawler(t, "c")
	id := app.mission(t, chief, 2, nil)

	require.NoError(t, app.crew.Join(ctx, id, a))
	m, crew := app.state(t, id)
	assert.Equal(t, 1, crew)
	assert.Equal(t, model.StatusOpen, m.Status)

	require.NoError(t, app.crew.Join(ctx, id, b))
	m, crew = app.state(t, id)
	assert.Equal(t, 2, crew)
	assert.Equal(t, model.StatusFailed, m.Status)
	assert.True(t, m.FullByCapacity)

	require.ErrorIs(t, app.crew.Join(ctx, id, c), mission.ErrMissionFull)
	_, crew = app.state(t, id)
	assert.Equal(t, 2, crew)

	require.NoError(t, app.crew.Leave(ctx, id, a))
	m, crew = app.state(t, id)
	assert.Equal(t, 1, crew)
	assert.Equal(t, model.StatusOpen, m.Status)
	assert.False(t, m.FullByCapacity)

	require.NoError(t, app.crew.Join(ctx, id, c))
	m, crew = app.state(t, id)
	assert.Equal(t, 2, crew)
	assert.Equal(t, model.StatusFailed, m.Status)
}

func TestJoinEvents(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a, b := app.brawler(t, "a"), app.brawler(t, "b")
	id := app.mission(t, chief, 1, nil)
	app.resetEvents()

	require.NoError(t, app.crew.Join(ctx, id, a))
	assert.Equal(t, []model.EventType{model.EventJoined, model.EventFilled}, app.eventTypes())

	app.resetEvents()
	require.ErrorIs(t, app.crew.Join(ctx, id, b), mission.ErrMissionFull)
	assert.Empty(t, app.eventTypes())

	require.NoError(t, app.crew.Leave(ctx, id, a))
	assert.Equal(t, []model.EventType{model.EventLeft, model.EventReopened}, app.eventTypes())
}

func TestSelfJoinAndSelfKick(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	id := app.mission(t, chief, 3, nil)

	require.ErrorIs(t, app.crew.Join(ctx, id, chief), mission.ErrSelfJoinRejected)
	require.ErrorIs(t, app.crew.KickMember(ctx, id, chief, chief), mission.ErrSelfKickRejected)

	_, crew := app.state(t, id)
	assert.Equal(t, 0, crew)
}

func TestJoinTwice(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a := app.brawler(t, "a")
	id := app.mission(t, chief, 3, nil)

	require.NoError(t, app.crew.Join(ctx, id, a))
	require.ErrorIs(t, app.crew.Join(ctx, id, a), mission.ErrAlreadyJoined)

	_, crew := app.state(t, id)
	assert.Equal(t, 1, crew)
}

func TestJoinTwiceWhenFull(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a := app.brawler(t, "a")
	id := app.mission(t, chief, 1, nil)

	require.NoError(t, app.crew.Join(ctx, id, a))
	require.ErrorIs(t, app.crew.Join(ctx, id, a), mission.ErrAlreadyJoined)
}

func TestJoinNotJoinable(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a, b := app.brawler(t, "a"), app.brawler(t, "b")
	id := app.mission(t, chief, 3, nil)

	require.NoError(t, app.crew.Join(ctx, id, a))
	_, err := app.lifecycle.Start(ctx, id, chief)
	require.NoError(t, err)

	require.ErrorIs(t, app.crew.Join(ctx, id, b), mission.ErrNotJoinable)
	require.ErrorIs(t, app.crew.Leave(ctx, id, a), mission.ErrNotLeavable)
	require.ErrorIs(t, app.crew.KickMember(ctx, id, a, chief), mission.ErrNotKickable)

	_, err = app.lifecycle.Fail(ctx, id, chief)
	require.NoError(t, err)

	require.ErrorIs(t, app.crew.Join(ctx, id, b), mission.ErrNotJoinable)
	require.ErrorIs(t, app.crew.KickMember(ctx, id, a, chief), mission.ErrNotKickable)
	require.NoError(t, app.crew.Leave(ctx, id, a))

	m, _ := app.state(t, id)
	assert.Equal(t, model.StatusFailed, m.Status)
	assert.False(t, m.FullByCapacity)
}

func TestLeaveNotMember(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a := app.brawler(t, "a")
	id := app.mission(t, chief, 3, nil)

	require.ErrorIs(t, app.crew.Leave(ctx, id, a), mission.ErrNotFound)
	require.ErrorIs(t, app.crew.KickMember(ctx, id, a, chief), mission.ErrNotFound)
	require.ErrorIs(t, app.crew.Join(ctx, 999, a), mission.ErrNotFound)
}

func TestKick(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a, b := app.brawler(t, "a"), app.brawler(t, "b")
	id := app.mission(t, chief, 2, nil)

	require.NoError(t, app.crew.Join(ctx, id, a))
	require.NoError(t, app.crew.Join(ctx, id, b))

	require.ErrorIs(t, app.crew.KickMember(ctx, id, b, a), mission.ErrForbidden)

	require.NoError(t, app.crew.KickMember(ctx, id, b, chief))

	m, crew := app.state(t, id)
	assert.Equal(t, 1, crew)
	assert.Equal(t, model.StatusOpen, m.Status)
}

func TestRemovedMissionIsInvisible(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a := app.brawler(t, "a")
	id := app.mission(t, chief, 2, nil)

	require.NoError(t, app.crew.Join(ctx, id, a))
	require.NoError(t, app.manager.Remove(ctx, id, chief))

	require.ErrorIs(t, app.crew.Leave(ctx, id, a), mission.ErrNotFound)
	require.ErrorIs(t, app.crew.Join(ctx, id, app.brawler(t, "b")), mission.ErrNotFound)

	_, err := app.lifecycle.Start(ctx, id, chief)
	require.ErrorIs(t, err, mission.ErrNotFound)
}

func TestCrewNeverExceedsCap(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	rnd := rand.New(rand.NewSource(42))
	chief := app.brawler(t, "chief")

	brawlers := make([]uint, 8)
	for i := range brawlers {
		brawlers[i] = app.brawler(t, fmt.Sprintf("b%d", i))
	}

	for round := 0; round < 20; round++ {
		maxCrew := 1 + rnd.Intn(4)
		id := app.mission(t, chief, maxCrew, nil)

		for step := 0; step < 60; step++ {
			b := brawlers[rnd.Intn(len(brawlers))]

			if rnd.Intn(3) == 0 {
				_ = app.crew.Leave(ctx, id, b)
			} else {
				_ = app.crew.Join(ctx, id, b)
			}

			m, crew := app.state(t, id)
			require.LessOrEqual(t, crew, maxCrew)
			assert.Equal(t, crew == maxCrew, m.Status == model.StatusFailed, "round %d step %d", round, step)
		}
	}
}

func TestConcurrentJoin(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	id := app.mission(t, chief, 3, nil)

	var (
		wg              sync.WaitGroup
		mx              sync.Mutex
		ok, full, other int
	)

	for i := 0; i < 20; i++ {
		b := app.brawler(t, fmt.Sprintf("b%d", i))

		wg.Add(1)

		go func() {
			defer wg.Done()

			err := app.crew.Join(ctx, id, b)

			mx.Lock()
			defer mx.Unlock()

			switch {
			case err == nil:
				ok++
			case errors.Is(err, mission.ErrMissionFull):
				full++
			default:
				other++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 17, full)
	assert.Equal(t, 0, other)

	m, crew := app.state(t, id)
	assert.Equal(t, 3, crew)
	assert.Equal(t, model.StatusFailed, m.Status)
	assert.True(t, m.FullByCapacity)
}

type failingTx struct {
	mission.Tx
}

func (f failingTx) UpdateMission(context.Context, uint, model.MissionUpdate) error {
	return errors.New("disk I/O error")
}

type failingStore struct {
	*repository.MemoryRepo
}

func (f failingStore) Atomic(ctx context.Context, id uint, fn func(tx mission.Tx) error) error {
	return f.MemoryRepo.Atomic(ctx, id, func(tx mission.Tx) error {
		return fn(failingTx{tx})
	})
}

func TestStoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	store := failingStore{app.repo}
	broken := mission.NewCrew(store, mission.NewLifecycle(store, app.events))

	chief := app.brawler(t, "chief")
	a := app.brawler(t, "a")
	id := app.mission(t, chief, 1, nil)
	app.resetEvents()

	err := broken.Join(ctx, id, a)
	require.ErrorIs(t, err, mission.ErrStoreUnavailable)
	assert.Equal(t, "StoreUnavailable", mission.Code(err))
	assert.False(t, mission.IsBusiness(err))

	m, crew := app.state(t, id)
	assert.Equal(t, 0, crew)
	assert.Equal(t, model.StatusOpen, m.Status)
	assert.Empty(t, app.eventTypes())
}

func TestCanceledContext(t *testing.T) {
	app := newTestApp(t)

	chief := app.brawler(t, "chief")
	a := app.brawler(t, "a")
	id := app.mission(t, chief, 1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	time.Sleep(time.Millisecond)

	require.ErrorIs(t, app.crew.Join(ctx, id, a), mission.ErrStoreUnavailable)
}

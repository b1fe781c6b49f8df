package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlers/missionboard/internal/database"
	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
)

const seed = `
- username: Alice
  password: secret
  display_name: Alice the Bold
- username: bob
  password: $2a$04$5bGxHtW3Y0Z0uLrRJMxM0.uKW7sCnoY7B8/dO7mfnJ6iYTz3fX0o2
- username: ""
  password: nobody
`

func prepareDb(t *testing.T, seedFile string) *BrawlerDbRepository {
	t.Helper()

	db, err := database.GetDatabase(":memory:", false)
	require.NoError(t, err)

	dbm := database.New(db)
	require.NoError(t, dbm.Migrate())

	r := NewBrawlerDbRepository(seedFile, dbm)
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)

	return r
}

func TestSeedFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "brawlers.yml")
	require.NoError(t, os.WriteFile(name, []byte(seed), 0o600))

	ctx := context.Background()
	r := prepareDb(t, name)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	alice, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, "Alice the Bold", alice.DisplayName)
	assert.True(t, alice.CheckPassword("secret"))

	bob, err := r.GetByUsername(ctx, "BOB")
	require.NoError(t, err)
	require.NotNil(t, bob)
	assert.Equal(t, "bob", bob.DisplayName)
	assert.Equal(t, "$2a$04$5bGxHtW3Y0Z0uLrRJMxM0.uKW7sCnoY7B8/dO7mfnJ6iYTz3fX0o2", bob.Password)
}

func TestBrawlerDbRepository(t *testing.T) {
	ctx := context.Background()
	r := prepareDb(t, "")

	b := &model.Brawler{Username: " Carol ", DisplayName: "Carol"}
	require.NoError(t, b.SetPassword("pw"))
	require.NoError(t, r.Create(ctx, b))
	assert.Equal(t, "carol", b.Username)
	assert.NotZero(t, b.ID)

	require.ErrorIs(t, r.Create(ctx, &model.Brawler{Username: "carol", DisplayName: "x", Password: "x"}), ErrUsernameTaken)

	got, err := r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Carol", got.DisplayName)

	require.NoError(t, r.UpdateDisplayName(ctx, b.ID, "Captain Carol"))

	got, err = r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Captain Carol", got.DisplayName)

	require.ErrorIs(t, r.UpdateDisplayName(ctx, 999, "ghost"), mission.ErrNotFound)

	got, err = r.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryRepoBrawlers(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	b := &model.Brawler{Username: "Dave", DisplayName: "Dave"}
	require.NoError(t, r.Create(ctx, b))
	require.ErrorIs(t, r.Create(ctx, &model.Brawler{Username: "dave"}), ErrUsernameTaken)

	got, err := r.GetByUsername(ctx, " DAVE")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)

	require.NoError(t, r.UpdateDisplayName(ctx, b.ID, "D"))

	got, err = r.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "D", got.DisplayName)

	got, err = r.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryRepoAtomicRollback(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()

	m := &model.Mission{ChiefID: 1, Name: "raid", MaxCrew: 2}
	require.NoError(t, r.CreateMission(ctx, m))

	err := r.Atomic(ctx, m.ID, func(tx mission.Tx) error {
		require.NoError(t, tx.InsertMembership(ctx, m.ID, 7))
		require.ErrorIs(t, tx.InsertMembership(ctx, m.ID, 7), mission.ErrUniqueViolation)

		return mission.ErrForbidden
	})
	require.ErrorIs(t, err, mission.ErrForbidden)

	n, err := r.CountCrew(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.ErrorIs(t, r.Atomic(ctx, m.ID+1, func(mission.Tx) error { return nil }), mission.ErrNotFound)
}

func TestSeedMemoryRepo(t *testing.T) {
	name := filepath.Join(t.TempDir(), "brawlers.yml")
	require.NoError(t, os.WriteFile(name, []byte(seed), 0o600))

	ctx := context.Background()
	r := NewMemoryRepo()

	n, err := Seed(ctx, r, name)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Seed(ctx, r, name)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = Seed(ctx, r, filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSeedFileReload(t *testing.T) {
	name := filepath.Join(t.TempDir(), "brawlers.yml")
	require.NoError(t, os.WriteFile(name, []byte("- username: alice\n  password: secret\n"), 0o600))

	ctx := context.Background()
	r := prepareDb(t, name)

	require.NoError(t, r.UpdateDisplayName(ctx, mustBrawler(t, r, "alice").ID, "Renamed"))

	require.NoError(t, os.WriteFile(name, []byte("- username: alice\n  password: other\n- username: carol\n  password: secret\n"), 0o600))

	require.Eventually(t, func() bool {
		b, err := r.GetByUsername(ctx, "carol")

		return err == nil && b != nil
	}, time.Second*5, time.Millisecond*20)

	alice := mustBrawler(t, r, "alice")
	assert.Equal(t, "Renamed", alice.DisplayName)
	assert.True(t, alice.CheckPassword("secret"))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCanceledContext(t *testing.T) {
	r := prepareDb(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GetByID(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)

	_, err = r.GetByUsername(ctx, "alice")
	require.Error(t, err)
}

func mustBrawler(t *testing.T, r BrawlerRepository, username string) *model.Brawler {
	t.Helper()

	b, err := r.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	require.NotNil(t, b)

	return b
}

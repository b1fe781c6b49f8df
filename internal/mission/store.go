package mission

import (
	"context"

	"github.com/brawlers/missionboard/internal/model"
)

// Store is the persistence capability set the coordinators need.
//
// Atomic runs fn in a single unit of work that holds an exclusive lock on the
// mission row for its whole duration, so the read/decide/write sequence of one
// coordinator call cannot interleave with another call on the same mission.
// If fn returns an error nothing it wrote is kept. Atomic returns ErrNotFound
// when the mission does not exist or is soft deleted.
type Store interface {
	Atomic(ctx context.Context, missionID uint, fn func(tx Tx) error) error
	CreateMission(ctx context.Context, m *model.Mission) error
}

// Tx exposes the store primitives valid inside one Atomic call.
type Tx interface {
	GetMission(ctx context.Context, id uint) (*model.Mission, error)
	CountCrew(ctx context.Context, missionID uint) (int, error)
	HasMembership(ctx context.Context, missionID, brawlerID uint) (bool, error)
	// InsertMembership returns ErrUniqueViolation for an existing pair.
	InsertMembership(ctx context.Context, missionID, brawlerID uint) error
	// DeleteMembership reports whether a membership was removed.
	DeleteMembership(ctx context.Context, missionID, brawlerID uint) (bool, error)
	UpdateMission(ctx context.Context, id uint, upd model.MissionUpdate) error
	SoftDeleteMission(ctx context.Context, id uint) error
}

// Reader serves the read-only projections.
type Reader interface {
	GetMission(ctx context.Context, id uint) (*model.Mission, error)
	CountCrew(ctx context.Context, missionID uint) (int, error)
	CountCrews(ctx context.Context, missionIDs []uint) (map[uint]int, error)
	FindMissions(ctx context.Context, f *model.MissionFilter) ([]*model.Mission, error)
	CrewRoster(ctx context.Context, missionID uint) ([]*model.CrewMember, error)
	Stats(ctx context.Context) (*model.DashboardStats, error)
	UserStats(ctx context.Context, brawlerID uint) (*model.UserDashboard, error)
}

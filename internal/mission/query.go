package mission

import (
	"context"
	"time"

	"github.com/brawlers/missionboard/internal/capacity"
	"github.com/brawlers/missionboard/internal/model"
)

const recentLimit = 10

// Query serves read-only mission projections. Crew counts and capacity
// verdicts are computed with the same evaluator the coordinators use.
type Query struct {
	reader Reader
	now    func() time.Time
}

func NewQuery(reader Reader) *Query {
	return &Query{reader: reader, now: time.Now}
}

func (q *Query) SetClock(now func() time.Time) {
	q.now = now
}

func (q *Query) Detail(ctx context.Context, missionID uint) (*model.MissionDTO, error) {
	m, err := q.reader.GetMission(ctx, missionID)
	if err != nil {
		return nil, storeError(err)
	}

	crew, err := q.reader.CountCrew(ctx, missionID)
	if err != nil {
		return nil, storeError(err)
	}

	return q.toDTO(m, crew), nil
}

func (q *Query) List(ctx context.Context, f *model.MissionFilter) ([]*model.MissionDTO, error) {
	if f == nil {
		f = new(model.MissionFilter)
	}

	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("unknown status %q", f.Status)
	}

	missions, err := q.reader.FindMissions(ctx, f)
	if err != nil {
		return nil, storeError(err)
	}

	return q.project(ctx, missions)
}

func (q *Query) Crew(ctx context.Context, missionID uint) ([]*model.CrewMemberDTO, error) {
	if _, err := q.reader.GetMission(ctx, missionID); err != nil {
		return nil, storeError(err)
	}

	roster, err := q.reader.CrewRoster(ctx, missionID)
	if err != nil {
		return nil, storeError(err)
	}

	res := make([]*model.CrewMemberDTO, 0, len(roster))

	for _, c := range roster {
		res = append(res, c.ToDTO())
	}

	return res, nil
}

// MyMissions lists missions the brawler leads or has joined.
func (q *Query) MyMissions(ctx context.Context, brawlerID uint) ([]*model.MissionDTO, error) {
	return q.List(ctx, &model.MissionFilter{OwnedOrJoinedBy: brawlerID, OrderBy: model.OrderUpdatedDesc})
}

func (q *Query) Stats(ctx context.Context) (*model.DashboardStats, error) {
	s, err := q.reader.Stats(ctx)

	return s, storeError(err)
}

func (q *Query) RecentMissions(ctx context.Context, limit int) ([]*model.MissionDTO, error) {
	if limit <= 0 {
		limit = recentLimit
	}

	return q.List(ctx, &model.MissionFilter{OrderBy: model.OrderCreatedDesc, Limit: limit})
}

func (q *Query) UserDashboard(ctx context.Context, brawlerID uint) (*model.UserDashboard, error) {
	s, err := q.reader.UserStats(ctx, brawlerID)

	return s, storeError(err)
}

// ActiveMissions lists open or running missions the brawler leads or crews,
// most recently updated first.
func (q *Query) ActiveMissions(ctx context.Context, brawlerID uint, limit int) ([]*model.MissionDTO, error) {
	if limit <= 0 {
		limit = recentLimit
	}

	return q.List(ctx, &model.MissionFilter{
		OwnedOrJoinedBy: brawlerID,
		Statuses:        []model.Status{model.StatusOpen, model.StatusInProgress},
		OrderBy:         model.OrderUpdatedDesc,
		Limit:           limit,
	})
}

// OpenMissionsFor lists open missions with free slots the brawler could join.
func (q *Query) OpenMissionsFor(ctx context.Context, brawlerID uint, limit int) ([]*model.MissionDTO, error) {
	if limit <= 0 {
		limit = recentLimit
	}

	return q.List(ctx, &model.MissionFilter{
		Status:          model.StatusOpen,
		ExcludeOwnedBy:  brawlerID,
		ExcludeJoinedBy: brawlerID,
		WithRoom:        true,
		OrderBy:         model.OrderCreatedDesc,
		Limit:           limit,
	})
}

func (q *Query) project(ctx context.Context, missions []*model.Mission) ([]*model.MissionDTO, error) {
	ids := make([]uint, 0, len(missions))

	for _, m := range missions {
		ids = append(ids, m.ID)
	}

	counts, err := q.reader.CountCrews(ctx, ids)
	if err != nil {
		return nil, storeError(err)
	}

	res := make([]*model.MissionDTO, 0, len(missions))

	for _, m := range missions {
		res = append(res, q.toDTO(m, counts[m.ID]))
	}

	return res, nil
}

func (q *Query) toDTO(m *model.Mission, crew int) *model.MissionDTO {
	s := capacity.SnapshotOf(m)

	return &model.MissionDTO{
		ID:               m.ID,
		Name:             m.Name,
		Description:      m.GetDescription(),
		Status:           m.Status,
		FullByCapacity:   m.FullByCapacity,
		ChiefID:          m.ChiefID,
		ChiefDisplayName: m.ChiefName(),
		CrewCount:        crew,
		MaxCrew:          m.MaxCrew,
		Capacity:         capacity.Evaluate(s, crew).String(),
		Duration:         m.Duration,
		Deadline:         m.Deadline,
		Overdue:          s.Overdue(q.now()),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

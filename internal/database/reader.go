package database

import (
	"context"

	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
)

const rosterSQL = `SELECT c.brawler_id, b.display_name, b.avatar_url, c.joined_at,
	(SELECT COUNT(*) FROM crew_memberships c2 JOIN missions m2 ON m2.id = c2.mission_id
		WHERE c2.brawler_id = c.brawler_id AND m2.deleted_at IS NULL) AS mission_joined_count,
	(SELECT COUNT(*) FROM crew_memberships c3 JOIN missions m3 ON m3.id = c3.mission_id
		WHERE c3.brawler_id = c.brawler_id AND m3.deleted_at IS NULL AND m3.status = ?) AS mission_success_count
FROM crew_memberships c
JOIN brawlers b ON b.id = c.brawler_id
WHERE c.mission_id = ?
ORDER BY c.joined_at, c.brawler_id`

func (mm *DatabaseManager) GetMission(ctx context.Context, id uint) (*model.Mission, error) {
	m, err := NewMissionQuery(mm.db.WithContext(ctx)).Id(id).Full().One()
	if err != nil {
		return nil, err
	}

	if m == nil {
		return nil, mission.ErrNotFound
	}

	return m, nil
}

func (mm *DatabaseManager) CountCrew(ctx context.Context, missionID uint) (int, error) {
	n, err := NewCrewQuery(mm.db.WithContext(ctx)).Mission(missionID).Count()

	return int(n), err
}

func (mm *DatabaseManager) CountCrews(ctx context.Context, missionIDs []uint) (map[uint]int, error) {
	if len(missionIDs) == 0 {
		return map[uint]int{}, nil
	}

	return NewCrewQuery(mm.db.WithContext(ctx)).Mission(missionIDs...).CountByMission()
}

func (mm *DatabaseManager) FindMissions(ctx context.Context, f *model.MissionFilter) ([]*model.Mission, error) {
	return NewMissionQuery(mm.db.WithContext(ctx)).Filter(f).Full().Get()
}

func (mm *DatabaseManager) CrewRoster(ctx context.Context, missionID uint) ([]*model.CrewMember, error) {
	var res []*model.CrewMember

	err := mm.db.WithContext(ctx).Raw(rosterSQL, model.StatusCompleted, missionID).Scan(&res).Error

	return res, err
}

func (mm *DatabaseManager) Stats(ctx context.Context) (*model.DashboardStats, error) {
	db := mm.db.WithContext(ctx)
	res := new(model.DashboardStats)

	var err error

	if res.TotalMissions, err = NewMissionQuery(db).Count(); err != nil {
		return nil, err
	}

	if res.TotalBrawlers, err = NewBrawlerQuery(db).Count(); err != nil {
		return nil, err
	}

	if res.OpenMissions, err = NewMissionQuery(db).Status(model.StatusOpen).Count(); err != nil {
		return nil, err
	}

	if res.ActiveMissions, err = NewMissionQuery(db).Status(model.StatusInProgress).Count(); err != nil {
		return nil, err
	}

	return res, nil
}

func (mm *DatabaseManager) UserStats(ctx context.Context, brawlerID uint) (*model.UserDashboard, error) {
	db := mm.db.WithContext(ctx)
	res := new(model.UserDashboard)

	var err error

	if res.MyMissionsCount, err = NewMissionQuery(db).Chief(brawlerID).Count(); err != nil {
		return nil, err
	}

	if res.JoinedMissionsCount, err = NewCrewQuery(db).Brawler(brawlerID).Live().Count(); err != nil {
		return nil, err
	}

	if res.SuccessCount, err = NewCrewQuery(db).Brawler(brawlerID).MissionStatus(model.StatusCompleted).Count(); err != nil {
		return nil, err
	}

	res.TotalParticipated = res.MyMissionsCount + res.JoinedMissionsCount

	return res, nil
}

package database

import (
	"gorm.io/gorm"

	"github.com/brawlers/missionboard/internal/model"
)

type CrewQuery struct {
	Query[model.CrewMembership]
	missionIDs []uint
	brawlerID  uint
	live       bool
	status     model.Status
}

func NewCrewQuery(db *gorm.DB) *CrewQuery {
	q := new(CrewQuery)
	q.setDefaults(db, "crew_memberships.joined_at, crew_memberships.brawler_id")

	return q
}

func (q *CrewQuery) Limit(n int) *CrewQuery {
	q.limit = n
	return q
}

func (q *CrewQuery) Mission(id ...uint) *CrewQuery {
	q.missionIDs = append(q.missionIDs, id...)
	return q
}

func (q *CrewQuery) Brawler(id uint) *CrewQuery {
	q.brawlerID = id
	return q
}

// Live skips memberships of soft deleted missions.
func (q *CrewQuery) Live() *CrewQuery {
	q.live = true
	return q
}

// MissionStatus keeps memberships of missions in the given status.
func (q *CrewQuery) MissionStatus(s model.Status) *CrewQuery {
	q.live = true
	q.status = s

	return q
}

func (q *CrewQuery) where() *gorm.DB {
	tx := q.db

	if len(q.missionIDs) == 1 {
		tx = tx.Where("crew_memberships.mission_id = ?", q.missionIDs[0])
	} else if len(q.missionIDs) > 1 {
		tx = tx.Where("crew_memberships.mission_id IN ?", q.missionIDs)
	}

	if q.brawlerID != 0 {
		tx = tx.Where("crew_memberships.brawler_id = ?", q.brawlerID)
	}

	if q.live {
		tx = tx.Joins("JOIN missions ON missions.id = crew_memberships.mission_id AND missions.deleted_at IS NULL")
	}

	if q.status != "" {
		tx = tx.Where("missions.status = ?", q.status)
	}

	return tx
}

func (q *CrewQuery) Get() ([]*model.CrewMembership, error) {
	return q.get(q.where().Model(&model.CrewMembership{}))
}

func (q *CrewQuery) Exists() (bool, error) {
	n, err := q.Count()

	return n > 0, err
}

func (q *CrewQuery) Count() (int64, error) {
	return q.count(q.where().Model(&model.CrewMembership{}))
}

// CountByMission groups membership counts by mission id.
func (q *CrewQuery) CountByMission() (map[uint]int, error) {
	var rows []struct {
		MissionID uint
		N         int
	}

	err := q.where().Model(&model.CrewMembership{}).
		Select("crew_memberships.mission_id, COUNT(*) AS n").
		Group("crew_memberships.mission_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	res := make(map[uint]int, len(rows))

	for _, r := range rows {
		res[r.MissionID] = r.N
	}

	return res, nil
}

// Delete reports whether any membership was removed.
func (q *CrewQuery) Delete() (bool, error) {
	tx := q.where().Delete(&model.CrewMembership{})

	return tx.RowsAffected > 0, tx.Error
}

package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
)

var (
	_ mission.Store  = &DatabaseManager{}
	_ mission.Reader = &DatabaseManager{}
)

// Atomic runs fn in one transaction. The mission row is read with
// SELECT ... FOR UPDATE first, so concurrent calls on the same mission
// queue behind each other.
func (mm *DatabaseManager) Atomic(ctx context.Context, missionID uint, fn func(tx mission.Tx) error) error {
	return mm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := NewMissionQuery(tx).Id(missionID).ForUpdate().One()
		if err != nil {
			return err
		}

		if m == nil {
			return mission.ErrNotFound
		}

		return fn(&dbTx{db: tx})
	})
}

func (mm *DatabaseManager) CreateMission(ctx context.Context, m *model.Mission) error {
	return mm.db.WithContext(ctx).Create(m).Error
}

type dbTx struct {
	db *gorm.DB
}

func (t *dbTx) GetMission(ctx context.Context, id uint) (*model.Mission, error) {
	m, err := NewMissionQuery(t.db.WithContext(ctx)).Id(id).Full().One()
	if err != nil {
		return nil, err
	}

	if m == nil {
		return nil, mission.ErrNotFound
	}

	return m, nil
}

func (t *dbTx) CountCrew(ctx context.Context, missionID uint) (int, error) {
	n, err := NewCrewQuery(t.db.WithContext(ctx)).Mission(missionID).Count()

	return int(n), err
}

func (t *dbTx) HasMembership(ctx context.Context, missionID, brawlerID uint) (bool, error) {
	return NewCrewQuery(t.db.WithContext(ctx)).Mission(missionID).Brawler(brawlerID).Exists()
}

func (t *dbTx) InsertMembership(ctx context.Context, missionID, brawlerID uint) error {
	err := t.db.WithContext(ctx).Create(&model.CrewMembership{
		MissionID: missionID,
		BrawlerID: brawlerID,
		JoinedAt:  time.Now(),
	}).Error

	if isDuplicate(err) {
		return mission.ErrUniqueViolation
	}

	return err
}

func (t *dbTx) DeleteMembership(ctx context.Context, missionID, brawlerID uint) (bool, error) {
	return NewCrewQuery(t.db.WithContext(ctx)).Mission(missionID).Brawler(brawlerID).Delete()
}

// UpdateMission does not treat zero affected rows as missing: the row is
// already locked and known to exist, and MySQL reports unchanged rows as
// unaffected.
func (t *dbTx) UpdateMission(ctx context.Context, id uint, upd model.MissionUpdate) error {
	updates := upd.Map()
	updates["updated_at"] = time.Now()

	_, err := NewMissionQuery(t.db.WithContext(ctx)).Id(id).Update(updates)

	return err
}

func (t *dbTx) SoftDeleteMission(ctx context.Context, id uint) error {
	return NewMissionQuery(t.db.WithContext(ctx)).Id(id).Delete()
}

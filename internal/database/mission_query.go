package database

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brawlers/missionboard/internal/model"
)

const (
	memberOf    = "missions.id IN (SELECT mission_id FROM crew_memberships WHERE brawler_id = ?)"
	notMemberOf = "missions.id NOT IN (SELECT mission_id FROM crew_memberships WHERE brawler_id = ?)"
	withRoom    = "(SELECT COUNT(*) FROM crew_memberships WHERE crew_memberships.mission_id = missions.id) < missions.max_crew"
)

type MissionQuery struct {
	Query[model.Mission]
	id            uint
	name          string
	statuses      []model.Status
	chief         uint
	notChief      uint
	member        uint
	notMember     uint
	ownedOrJoined uint
	room          bool
	lock          bool
	full          bool
}

func NewMissionQuery(db *gorm.DB) *MissionQuery {
	q := new(MissionQuery)
	q.setDefaults(db, "missions.created_at DESC, missions.id DESC")

	return q
}

func (q *MissionQuery) Order(s string) *MissionQuery {
	q.order = s
	return q
}

func (q *MissionQuery) Limit(n int) *MissionQuery {
	q.limit = n
	return q
}

func (q *MissionQuery) Offset(n int) *MissionQuery {
	q.offset = n
	return q
}

func (q *MissionQuery) Id(id uint) *MissionQuery {
	q.id = id
	return q
}

// Name matches a case-insensitive substring of the mission name.
func (q *MissionQuery) Name(name string) *MissionQuery {
	q.name = strings.ToLower(strings.TrimSpace(name))
	return q
}

func (q *MissionQuery) Status(s ...model.Status) *MissionQuery {
	for _, st := range s {
		if st != "" {
			q.statuses = append(q.statuses, st)
		}
	}

	return q
}

func (q *MissionQuery) Chief(id uint) *MissionQuery {
	q.chief = id
	return q
}

func (q *MissionQuery) NotChief(id uint) *MissionQuery {
	q.notChief = id
	return q
}

func (q *MissionQuery) Member(id uint) *MissionQuery {
	q.member = id
	return q
}

func (q *MissionQuery) NotMember(id uint) *MissionQuery {
	q.notMember = id
	return q
}

func (q *MissionQuery) ChiefOrMember(id uint) *MissionQuery {
	q.ownedOrJoined = id
	return q
}

func (q *MissionQuery) WithRoom() *MissionQuery {
	q.room = true
	return q
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (q *MissionQuery) ForUpdate() *MissionQuery {
	q.lock = true
	return q
}

func (q *MissionQuery) Full() *MissionQuery {
	q.full = true
	return q
}

// Filter applies a listing filter in one go.
func (q *MissionQuery) Filter(f *model.MissionFilter) *MissionQuery {
	if f == nil {
		return q
	}

	q.Name(f.Name).
		Status(f.Status).
		Status(f.Statuses...).
		Chief(f.OwnedBy).
		NotChief(f.ExcludeOwnedBy).
		Member(f.JoinedBy).
		NotMember(f.ExcludeJoinedBy).
		ChiefOrMember(f.OwnedOrJoinedBy).
		Limit(f.GetLimit()).
		Offset(f.Offset)

	if f.WithRoom {
		q.WithRoom()
	}

	if f.OrderBy == model.OrderUpdatedDesc {
		q.Order("missions.updated_at DESC, missions.id DESC")
	}

	return q
}

func (q *MissionQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("missions.id = ?", q.id)
	}

	if q.name != "" {
		tx = tx.Where("LOWER(missions.name) LIKE ?", "%"+q.name+"%")
	}

	if len(q.statuses) > 0 {
		tx = tx.Where("missions.status IN ?", q.statuses)
	}

	if q.chief != 0 {
		tx = tx.Where("missions.chief_id = ?", q.chief)
	}

	if q.notChief != 0 {
		tx = tx.Where("missions.chief_id <> ?", q.notChief)
	}

	if q.member != 0 {
		tx = tx.Where(memberOf, q.member)
	}

	if q.notMember != 0 {
		tx = tx.Where(notMemberOf, q.notMember)
	}

	if q.ownedOrJoined != 0 {
		group := q.db.Session(&gorm.Session{NewDB: true})
		tx = tx.Where(group.Where("missions.chief_id = ?", q.ownedOrJoined).Or(memberOf, q.ownedOrJoined))
	}

	if q.room {
		tx = tx.Where(withRoom)
	}

	if q.lock && tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if q.full {
		tx = tx.Preload("Chief")
	}

	return tx
}

func (q *MissionQuery) Get() ([]*model.Mission, error) {
	return q.get(q.where().Model(&model.Mission{}))
}

func (q *MissionQuery) One() (*model.Mission, error) {
	return q.one(q.where().Model(&model.Mission{}))
}

func (q *MissionQuery) Count() (int64, error) {
	return q.count(q.where().Model(&model.Mission{}))
}

func (q *MissionQuery) Update(updates map[string]any) (int64, error) {
	return q.update(q.where().Model(&model.Mission{}), updates)
}

func (q *MissionQuery) Delete() error {
	return q.where().Delete(&model.Mission{}).Error
}

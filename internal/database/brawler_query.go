package database

import (
	"gorm.io/gorm"

	"github.com/brawlers/missionboard/internal/model"
)

type BrawlerQuery struct {
	Query[model.Brawler]
	id       uint
	username string
}

func NewBrawlerQuery(db *gorm.DB) *BrawlerQuery {
	q := new(BrawlerQuery)
	q.setDefaults(db, "brawlers.id")

	return q
}

func (q *BrawlerQuery) Order(s string) *BrawlerQuery {
	q.order = s
	return q
}

func (q *BrawlerQuery) Limit(n int) *BrawlerQuery {
	q.limit = n
	return q
}

func (q *BrawlerQuery) Offset(n int) *BrawlerQuery {
	q.offset = n
	return q
}

func (q *BrawlerQuery) Id(id uint) *BrawlerQuery {
	q.id = id
	return q
}

func (q *BrawlerQuery) Username(username string) *BrawlerQuery {
	q.username = model.NormalizeUsername(username)
	return q
}

func (q *BrawlerQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("brawlers.id = ?", q.id)
	}

	if q.username != "" {
		tx = tx.Where("brawlers.username = ?", q.username)
	}

	return tx
}

func (q *BrawlerQuery) Get() ([]*model.Brawler, error) {
	return q.get(q.where().Model(&model.Brawler{}))
}

func (q *BrawlerQuery) One() (*model.Brawler, error) {
	return q.one(q.where().Model(&model.Brawler{}))
}

func (q *BrawlerQuery) Count() (int64, error) {
	return q.count(q.where().Model(&model.Brawler{}))
}

func (q *BrawlerQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Brawler{}), updates)
}

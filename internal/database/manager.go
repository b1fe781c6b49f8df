package database

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/brawlers/missionboard/internal/model"
)

// DatabaseManager is the relational backend: it owns the schema and serves
// both the coordinators' Store and the read projections.
type DatabaseManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *DatabaseManager {
	m := &DatabaseManager{
		db:     db,
		logger: slog.With("logger", "dbm"),
	}

	return m
}

func (mm *DatabaseManager) Create(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Create(s).Error

	if err != nil {
		mm.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

// WithContext returns a manager whose queries carry ctx.
func (mm *DatabaseManager) WithContext(ctx context.Context) *DatabaseManager {
	return &DatabaseManager{db: mm.db.WithContext(ctx), logger: mm.logger}
}

func (mm *DatabaseManager) MissionQuery() *MissionQuery {
	return NewMissionQuery(mm.db)
}

func (mm *DatabaseManager) BrawlerQuery() *BrawlerQuery {
	return NewBrawlerQuery(mm.db)
}

func (mm *DatabaseManager) Migrate() error {
	if mm == nil || mm.db == nil {
		return fmt.Errorf("no database")
	}

	return mm.db.AutoMigrate(
		&model.Brawler{},
		&model.Mission{},
		&model.CrewMembership{},
	)
}

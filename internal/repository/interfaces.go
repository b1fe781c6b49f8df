package repository

import (
	"context"
	"errors"

	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
)

var ErrUsernameTaken = errors.New("username is already taken")

// BrawlerRepository looks brawlers up by id or username; a missing brawler
// is reported as nil without an error.
type BrawlerRepository interface {
	Create(ctx context.Context, b *model.Brawler) error
	GetByID(ctx context.Context, id uint) (*model.Brawler, error)
	GetByUsername(ctx context.Context, username string) (*model.Brawler, error)
	UpdateDisplayName(ctx context.Context, id uint, name string) error
	List(ctx context.Context) ([]*model.Brawler, error)
}

// MissionRepository is everything the mission services need from one backend.
type MissionRepository interface {
	mission.Store
	mission.Reader
}

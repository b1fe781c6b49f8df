package repository

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/brawlers/missionboard/internal/cache"
	"github.com/brawlers/missionboard/internal/database"
	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
)

const cacheTTL = time.Second * 10

var _ BrawlerRepository = &BrawlerDbRepository{}

type BrawlerDbRepository struct {
	logger   *slog.Logger
	seedFile string
	cache    *cache.Cache[uint, *model.Brawler]
	dbm      *database.DatabaseManager

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

func NewBrawlerDbRepository(seedFile string, dbm *database.DatabaseManager) *BrawlerDbRepository {
	r := &BrawlerDbRepository{
		seedFile: seedFile,
		logger:   slog.With(slog.String("logger", "brawler_repo")),
		dbm:      dbm,
	}

	r.cache = cache.NewWithTTL[uint, *model.Brawler](cacheTTL, r.loadBrawler)

	return r
}

func (r *BrawlerDbRepository) loadBrawler(id uint) *model.Brawler {
	b, err := r.dbm.BrawlerQuery().Id(id).One()
	if err != nil {
		r.logger.Error("error loading brawler", slog.Uint64("id", uint64(id)), slog.Any("error", err))
		return nil
	}

	return b
}

// Start imports the seed file and keeps watching it: brawlers added to the
// file later are created on the next write.
func (r *BrawlerDbRepository) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go r.cleaner(ctx)

	if r.seedFile == "" {
		return nil
	}

	r.importFile(ctx)

	var err error

	if r.watcher, err = fsnotify.NewWatcher(); err != nil {
		return err
	}

	// the directory is watched so that files replaced by editors are seen too
	if err := r.watcher.Add(filepath.Dir(r.seedFile)); err != nil {
		return err
	}

	go r.watch(ctx, r.watcher)

	return nil
}

func (r *BrawlerDbRepository) Stop() {
	if r.cancel != nil {
		r.cancel()
	}

	if r.watcher != nil {
		_ = r.watcher.Close()
	}
}

func (r *BrawlerDbRepository) importFile(ctx context.Context) {
	n, err := Seed(ctx, r, r.seedFile)
	if err != nil {
		r.logger.Error("error importing brawlers", slog.String("file", r.seedFile), slog.Any("error", err))
		return
	}

	if n > 0 {
		r.logger.Info("brawlers imported", slog.Int("count", n), slog.String("file", r.seedFile))
	}
}

func (r *BrawlerDbRepository) watch(ctx context.Context, w *fsnotify.Watcher) {
	name := filepath.Clean(r.seedFile)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}

			r.logger.Debug(fmt.Sprintf("event: %v", event))

			if filepath.Clean(event.Name) == name && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				r.logger.Info("brawlers file is modified, reloading")
				r.importFile(ctx)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}

			r.logger.Error("error", slog.Any("error", err))
		}
	}
}

func (r *BrawlerDbRepository) cleaner(ctx context.Context) {
	ticker := time.NewTicker(cacheTTL * 6)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cache.Clean()
		}
	}
}

func (r *BrawlerDbRepository) Create(ctx context.Context, b *model.Brawler) error {
	b.Username = model.NormalizeUsername(b.Username)

	err := r.dbm.WithContext(ctx).Create(b)

	if err != nil && r.usernameExists(ctx, b.Username) {
		return ErrUsernameTaken
	}

	return err
}

func (r *BrawlerDbRepository) usernameExists(ctx context.Context, username string) bool {
	b, err := r.dbm.WithContext(ctx).BrawlerQuery().Username(username).One()

	return err == nil && b != nil
}

// GetByID is served from a short lived cache.
func (r *BrawlerDbRepository) GetByID(ctx context.Context, id uint) (*model.Brawler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == 0 {
		return nil, nil
	}

	return r.cache.Load(id), nil
}

func (r *BrawlerDbRepository) GetByUsername(ctx context.Context, username string) (*model.Brawler, error) {
	return r.dbm.WithContext(ctx).BrawlerQuery().Username(username).One()
}

func (r *BrawlerDbRepository) UpdateDisplayName(ctx context.Context, id uint, name string) error {
	dbm := r.dbm.WithContext(ctx)

	b, err := dbm.BrawlerQuery().Id(id).One()
	if err != nil {
		return err
	}

	if b == nil {
		return mission.ErrNotFound
	}

	if b.DisplayName == name {
		return nil
	}

	defer r.cache.Invalidate(id)

	return dbm.BrawlerQuery().Id(id).Update(map[string]any{"display_name": name})
}

func (r *BrawlerDbRepository) List(ctx context.Context) ([]*model.Brawler, error) {
	return r.dbm.WithContext(ctx).BrawlerQuery().Limit(0).Get()
}

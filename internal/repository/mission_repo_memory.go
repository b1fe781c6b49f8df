package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
)

var (
	_ MissionRepository = &MemoryRepo{}
	_ BrawlerRepository = &MemoryRepo{}
)

// MemoryRepo keeps missions, memberships and brawlers in process. Atomic
// calls are serialized by a single mutex and work on a copy of the state
// that replaces the original only when fn succeeds.
type MemoryRepo struct {
	mx    sync.RWMutex
	state *memState
	now   func() time.Time
}

type memState struct {
	missions map[uint]*model.Mission
	crew     map[uint]map[uint]time.Time
	brawlers map[uint]*model.Brawler
	nextID   uint
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		state: &memState{
			missions: make(map[uint]*model.Mission),
			crew:     make(map[uint]map[uint]time.Time),
			brawlers: make(map[uint]*model.Brawler),
		},
		now: time.Now,
	}
}

func (s *memState) clone() *memState {
	res := &memState{
		missions: make(map[uint]*model.Mission, len(s.missions)),
		crew:     make(map[uint]map[uint]time.Time, len(s.crew)),
		brawlers: s.brawlers,
		nextID:   s.nextID,
	}

	for k, v := range s.missions {
		res.missions[k] = copyMission(v)
	}

	for k, v := range s.crew {
		m := make(map[uint]time.Time, len(v))
		for b, t := range v {
			m[b] = t
		}

		res.crew[k] = m
	}

	return res
}

func (s *memState) id() uint {
	s.nextID++

	return s.nextID
}

func (s *memState) alive(id uint) *model.Mission {
	m, ok := s.missions[id]
	if !ok || m.DeletedAt.Valid {
		return nil
	}

	return m
}

func copyMission(m *model.Mission) *model.Mission {
	if m == nil {
		return nil
	}

	c := *m

	return &c
}

func (r *MemoryRepo) Atomic(ctx context.Context, missionID uint, fn func(tx mission.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mx.Lock()
	defer r.mx.Unlock()

	if r.state.alive(missionID) == nil {
		return mission.ErrNotFound
	}

	tx := &memTx{state: r.state.clone(), now: r.now}

	if err := fn(tx); err != nil {
		return err
	}

	r.state = tx.state

	return nil
}

func (r *MemoryRepo) CreateMission(_ context.Context, m *model.Mission) error {
	r.mx.Lock()
	defer r.mx.Unlock()

	now := r.now()

	m.ID = r.state.id()
	m.CreatedAt = now
	m.UpdatedAt = now

	if m.Status == "" {
		m.Status = model.StatusOpen
	}

	r.state.missions[m.ID] = copyMission(m)

	return nil
}

type memTx struct {
	state *memState
	now   func() time.Time
}

func (t *memTx) GetMission(_ context.Context, id uint) (*model.Mission, error) {
	m := t.state.alive(id)
	if m == nil {
		return nil, mission.ErrNotFound
	}

	res := copyMission(m)
	res.Chief = t.state.brawlers[m.ChiefID]

	return res, nil
}

func (t *memTx) CountCrew(_ context.Context, missionID uint) (int, error) {
	return len(t.state.crew[missionID]), nil
}

func (t *memTx) HasMembership(_ context.Context, missionID, brawlerID uint) (bool, error) {
	_, ok := t.state.crew[missionID][brawlerID]

	return ok, nil
}

func (t *memTx) InsertMembership(_ context.Context, missionID, brawlerID uint) error {
	c, ok := t.state.crew[missionID]
	if !ok {
		c = make(map[uint]time.Time)
		t.state.crew[missionID] = c
	}

	if _, ok := c[brawlerID]; ok {
		return mission.ErrUniqueViolation
	}

	c[brawlerID] = t.now()

	return nil
}

func (t *memTx) DeleteMembership(_ context.Context, missionID, brawlerID uint) (bool, error) {
	if _, ok := t.state.crew[missionID][brawlerID]; !ok {
		return false, nil
	}

	delete(t.state.crew[missionID], brawlerID)

	return true, nil
}

func (t *memTx) UpdateMission(_ context.Context, id uint, upd model.MissionUpdate) error {
	m := t.state.alive(id)
	if m == nil {
		return mission.ErrNotFound
	}

	upd.Apply(m)
	m.UpdatedAt = t.now()

	return nil
}

func (t *memTx) SoftDeleteMission(_ context.Context, id uint) error {
	m := t.state.alive(id)
	if m == nil {
		return mission.ErrNotFound
	}

	m.DeletedAt.Time = t.now()
	m.DeletedAt.Valid = true

	return nil
}

func (r *MemoryRepo) GetMission(_ context.Context, id uint) (*model.Mission, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	m := r.state.alive(id)
	if m == nil {
		return nil, mission.ErrNotFound
	}

	res := copyMission(m)
	res.Chief = r.state.brawlers[m.ChiefID]

	return res, nil
}

func (r *MemoryRepo) CountCrew(_ context.Context, missionID uint) (int, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	return len(r.state.crew[missionID]), nil
}

func (r *MemoryRepo) CountCrews(_ context.Context, missionIDs []uint) (map[uint]int, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	res := make(map[uint]int, len(missionIDs))

	for _, id := range missionIDs {
		res[id] = len(r.state.crew[id])
	}

	return res, nil
}

func (r *MemoryRepo) FindMissions(_ context.Context, f *model.MissionFilter) ([]*model.Mission, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	if f == nil {
		f = new(model.MissionFilter)
	}

	res := make([]*model.Mission, 0)

	for _, m := range r.state.missions {
		if m.DeletedAt.Valid || !r.matches(f, m) {
			continue
		}

		c := copyMission(m)
		c.Chief = r.state.brawlers[m.ChiefID]
		res = append(res, c)
	}

	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]

		if f.OrderBy == model.OrderUpdatedDesc && !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}

		return a.ID > b.ID
	})

	if f.Offset > 0 {
		if f.Offset >= len(res) {
			return nil, nil
		}

		res = res[f.Offset:]
	}

	if l := f.GetLimit(); len(res) > l {
		res = res[:l]
	}

	return res, nil
}

func (r *MemoryRepo) matches(f *model.MissionFilter, m *model.Mission) bool {
	crew := r.state.crew[m.ID]
	_, joined := crew[f.JoinedBy]
	_, excluded := crew[f.ExcludeJoinedBy]
	_, member := crew[f.OwnedOrJoinedBy]

	switch {
	case f.Name != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(f.Name)):
		return false
	case f.Status != "" && m.Status != f.Status:
		return false
	case len(f.Statuses) > 0 && !hasStatus(f.Statuses, m.Status):
		return false
	case f.OwnedBy != 0 && m.ChiefID != f.OwnedBy:
		return false
	case f.JoinedBy != 0 && !joined:
		return false
	case f.ExcludeOwnedBy != 0 && m.ChiefID == f.ExcludeOwnedBy:
		return false
	case f.ExcludeJoinedBy != 0 && excluded:
		return false
	case f.OwnedOrJoinedBy != 0 && m.ChiefID != f.OwnedOrJoinedBy && !member:
		return false
	case f.WithRoom && len(crew) >= m.MaxCrew:
		return false
	}

	return true
}

func hasStatus(list []model.Status, s model.Status) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}

	return false
}

func (r *MemoryRepo) CrewRoster(_ context.Context, missionID uint) ([]*model.CrewMember, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	res := make([]*model.CrewMember, 0, len(r.state.crew[missionID]))

	for id, joined := range r.state.crew[missionID] {
		c := &model.CrewMember{BrawlerID: id, JoinedAt: joined}

		if b := r.state.brawlers[id]; b != nil {
			c.DisplayName = b.DisplayName
			c.AvatarURL = b.AvatarURL
		}

		c.MissionJoinedCount, c.MissionSuccessCount = r.participation(id)
		res = append(res, c)
	}

	sort.Slice(res, func(i, j int) bool {
		if !res[i].JoinedAt.Equal(res[j].JoinedAt) {
			return res[i].JoinedAt.Before(res[j].JoinedAt)
		}

		return res[i].BrawlerID < res[j].BrawlerID
	})

	return res, nil
}

// participation counts live missions the brawler crews, and how many of
// them were completed.
func (r *MemoryRepo) participation(brawlerID uint) (joined, success int64) {
	for id, crew := range r.state.crew {
		if _, ok := crew[brawlerID]; !ok {
			continue
		}

		m := r.state.alive(id)
		if m == nil {
			continue
		}

		joined++

		if m.Status == model.StatusCompleted {
			success++
		}
	}

	return joined, success
}

func (r *MemoryRepo) Stats(_ context.Context) (*model.DashboardStats, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	res := &model.DashboardStats{TotalBrawlers: int64(len(r.state.brawlers))}

	for _, m := range r.state.missions {
		if m.DeletedAt.Valid {
			continue
		}

		res.TotalMissions++

		switch m.Status {
		case model.StatusOpen:
			res.OpenMissions++
		case model.StatusInProgress:
			res.ActiveMissions++
		}
	}

	return res, nil
}

func (r *MemoryRepo) UserStats(_ context.Context, brawlerID uint) (*model.UserDashboard, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	res := new(model.UserDashboard)

	for _, m := range r.state.missions {
		if !m.DeletedAt.Valid && m.ChiefID == brawlerID {
			res.MyMissionsCount++
		}
	}

	res.JoinedMissionsCount, res.SuccessCount = r.participation(brawlerID)
	res.TotalParticipated = res.MyMissionsCount + res.JoinedMissionsCount

	return res, nil
}

func (r *MemoryRepo) Create(_ context.Context, b *model.Brawler) error {
	r.mx.Lock()
	defer r.mx.Unlock()

	b.Username = model.NormalizeUsername(b.Username)

	for _, o := range r.state.brawlers {
		if o.Username == b.Username {
			return ErrUsernameTaken
		}
	}

	now := r.now()

	b.ID = r.state.id()
	b.CreatedAt = now
	b.UpdatedAt = now

	c := *b
	r.state.brawlers[b.ID] = &c

	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id uint) (*model.Brawler, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	if b, ok := r.state.brawlers[id]; ok {
		c := *b

		return &c, nil
	}

	return nil, nil
}

func (r *MemoryRepo) GetByUsername(_ context.Context, username string) (*model.Brawler, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	username = model.NormalizeUsername(username)

	for _, b := range r.state.brawlers {
		if b.Username == username {
			c := *b

			return &c, nil
		}
	}

	return nil, nil
}

func (r *MemoryRepo) UpdateDisplayName(_ context.Context, id uint, name string) error {
	r.mx.Lock()
	defer r.mx.Unlock()

	b, ok := r.state.brawlers[id]
	if !ok {
		return mission.ErrNotFound
	}

	c := *b
	c.DisplayName = name
	c.UpdatedAt = r.now()
	r.state.brawlers[id] = &c

	return nil
}

func (r *MemoryRepo) List(_ context.Context) ([]*model.Brawler, error) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	res := make([]*model.Brawler, 0, len(r.state.brawlers))

	for _, b := range r.state.brawlers {
		c := *b
		res = append(res, &c)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })

	return res, nil
}

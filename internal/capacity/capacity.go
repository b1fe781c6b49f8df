// Package capacity decides, from a mission snapshot and its crew count, what
// membership changes the mission currently accepts. It is shared by the
// coordinators and the read projections so both agree on crew capacity.
package capacity

import (
	"time"

	"github.com/brawlers/missionboard/internal/model"
)

type Verdict int

const (
	Neither Verdict = iota
	Joinable
	Full
	Leavable
)

func (v Verdict) String() string {
	switch v {
	case Joinable:
		return "joinable"
	case Full:
		return "full"
	case Leavable:
		return "leavable"
	default:
		return "neither"
	}
}

func (v Verdict) AllowsJoin() bool {
	return v == Joinable
}

// AllowsLeave is true for every verdict except Neither: a full or concluded
// mission still lets its crew go.
func (v Verdict) AllowsLeave() bool {
	return v != Neither
}

func (v Verdict) AllowsKick() bool {
	return v == Joinable || v == Full
}

type Snapshot struct {
	Status         model.Status
	FullByCapacity bool
	MaxCrew        int
	Deadline       *time.Time
}

func SnapshotOf(m *model.Mission) Snapshot {
	if m == nil {
		return Snapshot{}
	}

	return Snapshot{
		Status:         m.Status,
		FullByCapacity: m.FullByCapacity,
		MaxCrew:        m.MaxCrew,
		Deadline:       m.Deadline,
	}
}

// Evaluate narrows Failed on purpose: only a mission failed by filling its
// roster takes joins and kicks, an explicitly failed run only lets crew leave.
func Evaluate(s Snapshot, crew int) Verdict {
	switch s.Status {
	case model.StatusOpen:
		return byRoom(s, crew)
	case model.StatusFailed:
		if !s.FullByCapacity {
			return Leavable
		}

		return byRoom(s, crew)
	case model.StatusCompleted:
		return Leavable
	default:
		return Neither
	}
}

func byRoom(s Snapshot, crew int) Verdict {
	if crew >= s.MaxCrew {
		return Full
	}

	return Joinable
}

// Remaining is the number of free crew slots, never negative.
func (s Snapshot) Remaining(crew int) int {
	if n := s.MaxCrew - crew; n > 0 {
		return n
	}

	return 0
}

// Overdue reports a running mission whose deadline has passed.
func (s Snapshot) Overdue(now time.Time) bool {
	return s.Status == model.StatusInProgress && s.Deadline != nil && now.After(*s.Deadline)
}

// Fills reports whether crew reaching this count leaves no free slot.
func (s Snapshot) Fills(crew int) bool {
	return crew >= s.MaxCrew
}

package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}

	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)

	if !st.Valid() {
		return "", fmt.Errorf("invalid mission status %q", s)
	}

	return st, nil
}

// Mission is owned by its chief. FullByCapacity tags a Failed status that was
// reached by filling the roster. Duration is in minutes and only used on start.
type Mission struct {
	ID             uint           `gorm:"primaryKey"`
	ChiefID        uint           `gorm:"not null;index"`
	Chief          *Brawler       `gorm:"foreignKey:ChiefID"`
	Name           string         `gorm:"not null"`
	Description    *string
	Status         Status         `gorm:"type:varchar(16);not null;default:Open;index"`
	FullByCapacity bool           `gorm:"not null;default:false"`
	MaxCrew        int            `gorm:"not null"`
	Duration       *int
	Deadline       *time.Time
	CreatedAt      time.Time      `gorm:"index"`
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

type CrewMembership struct {
	MissionID uint `gorm:"primaryKey;autoIncrement:false"`
	BrawlerID uint `gorm:"primaryKey;autoIncrement:false;index"`
	JoinedAt  time.Time
}

func (m *Mission) String() string {
	if m == nil {
		return "nil"
	}

	return fmt.Sprintf("mission %d (%s), status %s, max crew %d", m.ID, m.Name, m.Status, m.MaxCrew)
}

func (m *Mission) IsChief(brawlerID uint) bool {
	return m != nil && m.ChiefID == brawlerID
}

// ConcludedFailure is a Failed mission failed by its chief, not by a full roster.
func (m *Mission) ConcludedFailure() bool {
	return m != nil && m.Status == StatusFailed && !m.FullByCapacity
}

func (m *Mission) GetDescription() string {
	if m == nil || m.Description == nil {
		return ""
	}

	return *m.Description
}

func (m *Mission) ChiefName() string {
	if m == nil || m.Chief == nil {
		return ""
	}

	return m.Chief.DisplayName
}

// MissionUpdate is a partial update; nil fields are left untouched.
type MissionUpdate struct {
	Status         *Status
	FullByCapacity *bool
	Deadline       *time.Time
	ClearDeadline  bool
	Name           *string
	Description    *string
	MaxCrew        *int
	Duration       *int
}

func (u MissionUpdate) Map() map[string]any {
	res := make(map[string]any)

	if u.Status != nil {
		res["status"] = *u.Status
	}

	if u.FullByCapacity != nil {
		res["full_by_capacity"] = *u.FullByCapacity
	}

	if u.ClearDeadline {
		res["deadline"] = nil
	} else if u.Deadline != nil {
		res["deadline"] = *u.Deadline
	}

	if u.Name != nil {
		res["name"] = *u.Name
	}

	if u.Description != nil {
		res["description"] = *u.Description
	}

	if u.MaxCrew != nil {
		res["max_crew"] = *u.MaxCrew
	}

	if u.Duration != nil {
		res["duration"] = *u.Duration
	}

	return res
}

// Apply copies the update onto an in-memory mission.
func (u MissionUpdate) Apply(m *Mission) {
	if u.Status != nil {
		m.Status = *u.Status
	}

	if u.FullByCapacity != nil {
		m.FullByCapacity = *u.FullByCapacity
	}

	if u.ClearDeadline {
		m.Deadline = nil
	} else if u.Deadline != nil {
		d := *u.Deadline
		m.Deadline = &d
	}

	if u.Name != nil {
		m.Name = *u.Name
	}

	if u.Description != nil {
		d := *u.Description
		m.Description = &d
	}

	if u.MaxCrew != nil {
		m.MaxCrew = *u.MaxCrew
	}

	if u.Duration != nil {
		d := *u.Duration
		m.Duration = &d
	}
}

func Ptr[T any](v T) *T {
	return &v
}

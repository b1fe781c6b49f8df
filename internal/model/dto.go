package model

import (
	"time"
)

type MissionDTO struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Status           Status     `json:"status"`
	FullByCapacity   bool       `json:"full_by_capacity"`
	ChiefID          uint       `json:"chief_id"`
	ChiefDisplayName string     `json:"chief_display_name"`
	CrewCount        int        `json:"crew_count"`
	MaxCrew          int        `json:"max_crew"`
	Capacity         string     `json:"capacity"`
	Duration         *int       `json:"duration,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Overdue          bool       `json:"overdue"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type CrewMemberDTO struct {
	BrawlerID           uint      `json:"brawler_id"`
	DisplayName         string    `json:"display_name"`
	AvatarURL           string    `json:"avatar_url"`
	JoinedAt            time.Time `json:"joined_at"`
	MissionSuccessCount int64     `json:"mission_success_count"`
	MissionJoinedCount  int64     `json:"mission_joined_count"`
}

type NewMissionDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	MaxCrew     int     `json:"max_crew"`
	Duration    *int    `json:"duration,omitempty"`
}

type EditMissionDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	MaxCrew     *int    `json:"max_crew,omitempty"`
	Duration    *int    `json:"duration,omitempty"`
}

type ErrorDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

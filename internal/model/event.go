package model

import (
	"fmt"
	"time"
)

type EventType string

const (
	EventCreated   EventType = "created"
	EventEdited    EventType = "edited"
	EventRemoved   EventType = "removed"
	EventJoined    EventType = "joined"
	EventLeft      EventType = "left"
	EventKicked    EventType = "kicked"
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventFilled    EventType = "filled"
	EventReopened  EventType = "reopened"
)

type MissionEvent struct {
	Type      EventType `json:"type"`
	MissionID uint      `json:"mission_id"`
	BrawlerID uint      `json:"brawler_id,omitempty"`
	ActorID   uint      `json:"actor_id,omitempty"`
	Status    Status    `json:"status"`
	CrewCount int       `json:"crew_count"`
	Time      time.Time `json:"time"`
}

func (e *MissionEvent) String() string {
	if e == nil {
		return "nil"
	}

	return fmt.Sprintf("%s mission %d, brawler %d, status %s, crew %d", e.Type, e.MissionID, e.BrawlerID, e.Status, e.CrewCount)
}

package model

import "time"

type DashboardStats struct {
	TotalMissions  int64 `json:"total_missions"`
	TotalBrawlers  int64 `json:"total_brawlers"`
	OpenMissions   int64 `json:"open_missions"`
	ActiveMissions int64 `json:"active_missions"`
}

type UserDashboard struct {
	MyMissionsCount     int64 `json:"my_missions_count"`
	JoinedMissionsCount int64 `json:"joined_missions_count"`
	SuccessCount        int64 `json:"success_count"`
	TotalParticipated   int64 `json:"total_participated"`
}

// CrewMember is a roster row: a membership joined with brawler data and
// participation counters.
type CrewMember struct {
	BrawlerID           uint
	DisplayName         string
	AvatarURL           *string
	JoinedAt            time.Time
	MissionSuccessCount int64
	MissionJoinedCount  int64
}

func (c *CrewMember) ToDTO() *CrewMemberDTO {
	dto := &CrewMemberDTO{
		BrawlerID:           c.BrawlerID,
		DisplayName:         c.DisplayName,
		JoinedAt:            c.JoinedAt,
		MissionSuccessCount: c.MissionSuccessCount,
		MissionJoinedCount:  c.MissionJoinedCount,
	}

	if c.AvatarURL != nil {
		dto.AvatarURL = *c.AvatarURL
	}

	return dto
}

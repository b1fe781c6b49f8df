package model

// MissionFilter narrows a mission listing. Zero values mean "no restriction".
// OwnedOrJoinedBy matches missions the brawler leads or crews.
type MissionFilter struct {
	Name            string
	Status          Status
	OwnedBy         uint
	JoinedBy        uint
	ExcludeOwnedBy  uint
	ExcludeJoinedBy uint
	OwnedOrJoinedBy uint
	Statuses        []Status
	WithRoom        bool
	OrderBy         string
	Limit           int
	Offset          int
}

const (
	OrderCreatedDesc = "created_desc"
	OrderUpdatedDesc = "updated_desc"
)

func (f *MissionFilter) GetLimit() int {
	if f == nil || f.Limit <= 0 {
		return 100
	}

	return f.Limit
}

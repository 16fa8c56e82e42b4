package model

// EventFilter selects a page of events for one organization.
type EventFilter struct {
	OrgID      string `json:"orgId"`
	FirstEvent int64  `json:"firstEvent"`       // exclusive lower bound on EventID
	MaxEvents  int    `json:"maxEventsPerCall"` // row limit
}

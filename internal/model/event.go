package model

import "encoding/json"

// TablePrefix is prepended to an organization id to form its event table name.
const TablePrefix = "RxEvents"

// Event is a stored event as returned to readers. EventID is assigned by the
// store on insert and orders events within an organization.
type Event struct {
	EventID   int64           `json:"eventId"`
	EventData json.RawMessage `json:"eventData"`
}

// TableName returns the event table for an organization. The org id is used
// as-is; stores are responsible for quoting the result as an identifier.
func TableName(orgID string) string {
	return TablePrefix + orgID
}

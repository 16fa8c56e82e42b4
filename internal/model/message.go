package model

// Message is a queued message accepted for storage. Body is kept exactly as
// received; it is not parsed or validated on the way in.
type Message struct {
	MessageID string `json:"messageId"`
	OrgID     string `json:"orgId"`
	Body      string `json:"body"`
}

// OrgIDAttribute is the message attribute carrying the organization id.
const OrgIDAttribute = "OrgId"

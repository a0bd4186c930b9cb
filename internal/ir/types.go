package ir

// Identity is an opaque principal identity (an account address, a user ID).
// Identities compare by exact string equality.
type Identity string

// Status is the lifecycle stage of an achievement.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusMinted   Status = "minted"
	StatusVerified Status = "verified"
)

// ValidStatuses defines the allowed lifecycle stages.
var ValidStatuses = map[Status]bool{
	StatusDraft:    true,
	StatusMinted:   true,
	StatusVerified: true,
}

// Valid reports whether s is a known lifecycle stage.
func (s Status) Valid() bool {
	return ValidStatuses[s]
}

// Next returns the only stage reachable from s.
// Returns false for verified (terminal) and unknown stages.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusDraft:
		return StatusMinted, true
	case StatusMinted:
		return StatusVerified, true
	default:
		return "", false
	}
}

// Achievement is a user-submitted claim of accomplishment.
//
// ID, Owner and Timestamp are fixed at creation. Title, Description,
// Category and EvidenceURI may change while Status is draft.
type Achievement struct {
	ID          uint64   `json:"id"`
	Owner       Identity `json:"owner"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`     // e.g. "coding", "certification"
	EvidenceURI string   `json:"evidence_uri"` // e.g. IPFS CID or URL
	Timestamp   uint64   `json:"timestamp"`    // creation time, seconds
	Status      Status   `json:"status"`
}

// AchievementInput carries the caller-supplied fields of a new achievement.
// Text fields are opaque; empty strings are accepted.
type AchievementInput struct {
	Owner       Identity `json:"owner"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	EvidenceURI string   `json:"evidence_uri"`
}

// AchievementUpdate carries the editable fields of a draft achievement.
// A nil field retains the stored value.
type AchievementUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	EvidenceURI *string `json:"evidence_uri,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u AchievementUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.EvidenceURI == nil
}

// Canonical returns the achievement as a map suitable for MarshalCanonical.
func (a Achievement) Canonical() map[string]any {
	return map[string]any{
		"id":           a.ID,
		"owner":        string(a.Owner),
		"title":        a.Title,
		"description":  a.Description,
		"category":     a.Category,
		"evidence_uri": a.EvidenceURI,
		"timestamp":    a.Timestamp,
		"status":       string(a.Status),
	}
}

// EventName identifies a registry notification.
type EventName string

const (
	EventAchievementCreated  EventName = "AchievementCreated"
	EventAchievementUpdated  EventName = "AchievementUpdated"
	EventAchievementMinted   EventName = "AchievementMinted"
	EventAchievementVerified EventName = "AchievementVerified"
	EventInitialized         EventName = "Initialized"
	EventVerifierAdded       EventName = "VerifierAdded"
	EventVerifierRemoved     EventName = "VerifierRemoved"
)

// EventTopic is the topic every registry event is published under.
const EventTopic = "ACH"

// Event is a notification emitted after an operation commits.
// Achievement events carry AchievementID; role events carry Identity.
type Event struct {
	ID            string    `json:"id"`      // Content-addressed hash
	Seq           int64     `json:"seq"`     // Per-registry logical clock
	CallID        string    `json:"call_id"` // Correlates events of one operation
	Name          EventName `json:"name"`
	AchievementID uint64    `json:"achievement_id,omitempty"`
	Identity      Identity  `json:"identity,omitempty"`
}

// Canonical returns the event as a map suitable for MarshalCanonical.
// Zero-valued optional fields are omitted.
func (e Event) Canonical() map[string]any {
	m := map[string]any{
		"id":      e.ID,
		"seq":     e.Seq,
		"call_id": e.CallID,
		"name":    string(e.Name),
	}
	if e.AchievementID != 0 {
		m["achievement_id"] = e.AchievementID
	}
	if e.Identity != "" {
		m["identity"] = string(e.Identity)
	}
	return m
}

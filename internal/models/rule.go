package models

import "time"

// Label is the classification a rule assigns to matching activity.
type Label string

const (
	LabelWaste        Label = "waste"
	LabelProductive   Label = "productive"
	LabelUnclassified Label = "unclassified"
)

// Valid reports whether l may be stored on a rule. Unclassified is a report
// bucket only.
func (l Label) Valid() bool {
	return l == LabelWaste || l == LabelProductive
}

// ClassificationRule binds an application or window identifier to a label.
// (Type, Identifier) is unique.
type ClassificationRule struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Identifier string    `json:"identifier"`
	Label      Label     `json:"label"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

package models

import (
	"strings"
	"time"
)

// Session is a caller-defined span of tracked activity. ID is assigned by the
// caller; CreatedAt and UpdatedAt are set by the store on write.
type Session struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	SessionKey      string    `json:"session_key"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// SessionKeyParts holds the fields of a "category=<type>;identifier=<id>"
// session key.
type SessionKeyParts struct {
	Category   string
	Identifier string
	Fields     map[string]string
}

// ParseSessionKey splits a semicolon separated key=value session key. It
// reports false unless both category and identifier are present. The store
// never calls this; only reporting does.
func ParseSessionKey(key string) (SessionKeyParts, bool) {
	parts := SessionKeyParts{Fields: make(map[string]string)}
	for _, part := range strings.Split(key, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		parts.Fields[k] = v
	}
	parts.Category = parts.Fields["category"]
	parts.Identifier = parts.Fields["identifier"]
	return parts, parts.Category != "" && parts.Identifier != ""
}

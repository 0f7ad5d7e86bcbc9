package models

import (
	"strings"
	"time"
)

// Summary is the cached text blurb describing a player
type Summary struct {
	Key        string    `json:"-" bson:"_id"` // SummaryKey(PlayerName)
	PlayerName string    `json:"playerName" bson:"playerName"`
	Text       string    `json:"text" bson:"text"`
	FetchedAt  time.Time `json:"fetchedAt" bson:"fetchedAt"`
}

// SummaryKey normalizes a player name for cache lookups
func SummaryKey(playerName string) string {
	return strings.ToLower(strings.TrimSpace(playerName))
}

// IsExpired returns true when the summary is older than ttl.
// A non-positive ttl never expires.
func (s *Summary) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.FetchedAt) > ttl
}

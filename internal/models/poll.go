package models

import (
	"time"

	"github.com/google/uuid"
)

// Poll represents a single multiple-choice question posed to the class.
// At most one poll is active at a time; closed polls move to the history log.
type Poll struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	TimeLimit int       `json:"time_limit"` // seconds
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// OptionCount is one tally slot. Duplicate option labels stay distinct slots,
// which a plain map keyed by label could not represent.
type OptionCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Tally holds vote counts per option slot, in option order.
type Tally []OptionCount

// NewTally builds a zeroed tally with one slot per option.
func NewTally(options []string) Tally {
	t := make(Tally, len(options))
	for i, o := range options {
		t[i] = OptionCount{Label: o}
	}
	return t
}

// Increment adds one vote to the first slot matching label.
// Returns false when no slot matches.
func (t Tally) Increment(label string) bool {
	for i := range t {
		if t[i].Label == label {
			t[i].Count++
			return true
		}
	}
	return false
}

// Sum returns the total number of recorded votes.
func (t Tally) Sum() int {
	n := 0
	for i := range t {
		n += t[i].Count
	}
	return n
}

// Clone returns an independent copy of the tally.
func (t Tally) Clone() Tally {
	out := make(Tally, len(t))
	copy(out, t)
	return out
}

// HistoryEntry is an immutable snapshot of a closed poll and its final tally.
type HistoryEntry struct {
	Poll           Poll      `json:"poll"`
	Results        Tally     `json:"results"`
	TotalResponses int       `json:"total_responses"`
	ClosedAt       time.Time `json:"closed_at"`
}

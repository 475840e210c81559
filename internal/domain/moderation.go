package domain

import "fmt"

// ModerationStatus enumerates catalog entry moderation states.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ModerationStatus) Valid() bool {
	_, ok := moderationTransitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s ModerationStatus) Terminal() bool {
	return len(moderationTransitions[s]) == 0
}

// Label is the human readable status used in listings.
func (s ModerationStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending Approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// ParseModerationStatus validates a raw status value.
func ParseModerationStatus(raw string) (ModerationStatus, error) {
	s := ModerationStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown moderation status %q", raw)
	}
	return s, nil
}

var moderationTransitions = map[ModerationStatus][]ModerationStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// CanTransition reports whether from → to is a defined transition.
func CanTransition(from, to ModerationStatus) bool {
	for _, candidate := range moderationTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ModerationAction is a moderator decision on a catalog entry.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
)

// Target returns the status an action moves a pending entry to.
func (a ModerationAction) Target() (ModerationStatus, error) {
	switch a {
	case ActionApprove:
		return StatusApproved, nil
	case ActionReject:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown moderation action %q", a)
	}
}

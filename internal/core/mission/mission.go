// Package mission contains the pure domain model for missions: urgency and
// status enums, lifecycle rules, and identifier conventions. No I/O here.
package mission

import "fmt"

// Urgency levels, highest first. Stored verbatim in the missions table.
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
	UrgencyInfo     Urgency = "INFO"
)

// Status of a mission. The pipeline only ever sets StatusNew at creation;
// later transitions come from operator commands.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// ValidUrgency reports whether u is one of the five known urgency levels.
func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow, UrgencyInfo:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known mission status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// InitialStatus returns the status every mission starts in.
func InitialStatus() Status {
	return StatusNew
}

// CanTransition reports whether an operator may move a mission from one
// status to another. Completed and cancelled missions are terminal.
func CanTransition(from, to Status) error {
	if !ValidStatus(to) {
		return fmt.Errorf("unknown status %q", to)
	}
	switch from {
	case StatusCompleted, StatusCancelled:
		return fmt.Errorf("mission is already %s", from)
	}
	return nil
}

// Briefing is the actionable payload of a classified mission, as produced by
// the classifier and persisted on the mission row.
type Briefing struct {
	MissionID      string   `json:"mission_id"`
	Title          string   `json:"title"`
	Urgency        Urgency  `json:"urgency"`
	Deadline       string   `json:"deadline,omitempty"`
	ActionRequired string   `json:"action_required"`
	Context        string   `json:"context"`
	PeopleInvolved []string `json:"people_involved,omitempty"`
}

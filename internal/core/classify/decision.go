// Package classify defines the classifier decision schema and the tolerant
// parser for the model's JSON response. Pure logic, no network calls.
package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/inkwell/internal/core/mission"
)

// Kind distinguishes the three classification outcomes.
type Kind string

const (
	KindMission Kind = "MISSION"
	KindMessage Kind = "MESSAGE"
	KindIgnore  Kind = "IGNORE"
)

// ErrMalformedDecision marks a response that could not be parsed into a
// decision. This is distinct from a valid "no task" decision: the message is
// still marked processed, but no mission is created and nothing is printed.
var ErrMalformedDecision = errors.New("malformed classifier decision")

// Receipt carries the payload for a personal-message ticket.
type Receipt struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// Decision is the structured result of classifying one message.
type Decision struct {
	Type       Kind              `json:"type"`
	HasTask    bool              `json:"has_task"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
	Briefing   *mission.Briefing `json:"mission_briefing,omitempty"`
	Receipt    *Receipt          `json:"receipt_data,omitempty"`

	// Raw holds the exact JSON the decision was parsed from, kept for
	// replay and reprint.
	Raw string `json:"-"`
}

// IsMission reports whether the decision calls for creating a mission.
// Older prompt revisions omitted type and only set has_task, so both count.
func (d *Decision) IsMission() bool {
	return d.Type == KindMission || d.HasTask
}

// IsMessage reports whether the decision is a personal message ticket.
func (d *Decision) IsMessage() bool {
	return d.Type == KindMessage && !d.IsMission()
}

// ParseDecision parses the model response into a Decision. The model is
// instructed to reply with bare JSON but routinely wraps it in markdown code
// fences anyway, so those are stripped first. Any parse or validation failure
// wraps ErrMalformedDecision.
func ParseDecision(text string) (*Decision, error) {
	cleaned := StripFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedDecision)
	}

	var d Decision
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
	}

	if d.IsMission() {
		if d.Briefing == nil {
			return nil, fmt.Errorf("%w: has_task set but mission_briefing missing", ErrMalformedDecision)
		}
		if d.Briefing.MissionID == "" {
			return nil, fmt.Errorf("%w: mission_briefing.mission_id missing", ErrMalformedDecision)
		}
		if !mission.ValidUrgency(d.Briefing.Urgency) {
			return nil, fmt.Errorf("%w: unknown urgency %q", ErrMalformedDecision, d.Briefing.Urgency)
		}
		d.HasTask = true
		d.Type = KindMission
	}

	d.Raw = cleaned
	return &d, nil
}

// StripFences removes a surrounding markdown code fence (``` or ```json)
// from the response, if present.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

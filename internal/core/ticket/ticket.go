// Package ticket renders mission briefings and personal-message tickets as
// fixed-width text for 58mm thermal paper. Pure formatting, no device I/O.
package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/inkwell/internal/core/classify"
	"github.com/example/inkwell/internal/core/mission"
)

// Width is the character count per line on 58mm paper.
const Width = 32

// Separator is printed when a transport cannot cut paper.
func Separator() string {
	return "\n" + strings.Repeat("-", Width) + "\n\n"
}

// Wrap fills text to the print width, preserving paragraph breaks.
func Wrap(text string) string {
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, fill(paragraph, Width))
	}
	return strings.Join(out, "\n")
}

// fill greedily wraps a single paragraph at word boundaries. Words longer
// than the width are emitted on their own line rather than split.
func fill(paragraph string, width int) string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) <= width {
			line += " " + word
		} else {
			lines = append(lines, line)
			line = word
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// Briefing renders a mission briefing for printing.
func Briefing(b *mission.Briefing, agentName string, now time.Time) string {
	rule := strings.Repeat("=", Width)

	deadline := "DEADLINE: ASAP"
	if b.Deadline != "" && b.Deadline != "ASAP" {
		deadline = "DEADLINE: " + b.Deadline
	}

	lines := []string{
		rule,
		"    MISSION BRIEFING",
		rule,
		"",
		"AGENT: " + agentName,
		"URGENCY: " + string(b.Urgency),
		"TIME: " + now.Format("15:04 02/01/2006"),
		"",
		"MISSION:",
		Wrap(b.Title),
		"",
	}

	if len(b.PeopleInvolved) > 0 {
		lines = append(lines,
			"PEOPLE INVOLVED:",
			Wrap(strings.Join(b.PeopleInvolved, ", ")),
			"",
		)
	}

	lines = append(lines,
		"YOUR MISSION, SHOULD YOU",
		"CHOOSE TO ACCEPT IT:",
		Wrap(b.ActionRequired),
		"",
		"*** THIS MESSAGE WILL",
		"    SELF-DESTRUCT ***",
		"",
		deadline,
		"",
		rule,
		"MISSION ID: "+b.MissionID,
		rule,
	)

	return strings.Join(lines, "\n")
}

// bold wraps text in ESC/POS emphasis on/off codes.
func bold(text string) string {
	return "\x1B\x45\x01" + text + "\x1B\x45\x00"
}

func center(text string) string {
	if len(text) >= Width {
		return text
	}
	pad := (Width - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}

// Receipt renders a personal message as a simple ticket.
func Receipt(r *classify.Receipt, now time.Time) string {
	rule := strings.Repeat("=", Width)

	sender := r.Sender
	if sender == "" {
		sender = "UNKNOWN"
	}

	lines := []string{
		center(rule),
		center(bold("TICKET")),
		center(rule),
		"",
		fmt.Sprintf("%s: %s", bold("Date"), now.Format("2006-01-02")),
		fmt.Sprintf("%s: %s", bold("Time"), now.Format("03:04 PM")),
		fmt.Sprintf("%s: u/%s", bold("From"), sender),
		strings.Repeat("-", Width),
		"",
		Wrap(r.Message),
		"",
		strings.Repeat("-", Width),
		center("Thank you!"),
		"",
	}

	return strings.Join(lines, "\n")
}

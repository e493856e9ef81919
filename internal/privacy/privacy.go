// Package privacy defines the consent states that gate hit delivery.
package privacy

import (
	"fmt"
	"strings"
)

// Status is the user's consent state for outbound hits.
type Status string

const (
	// OptedIn allows delivery.
	OptedIn Status = "optedin"
	// OptedOut halts delivery and discards queued hits.
	OptedOut Status = "optedout"
	// Unknown halts delivery but keeps queued hits until consent is known.
	Unknown Status = "unknown"
)

// String returns the canonical spelling.
func (s Status) String() string {
	return string(s)
}

// Parse maps user input to a Status. Case, surrounding whitespace and
// separators are ignored, so "opted-in", "Opt_In" and "in" all parse.
func Parse(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)
	switch normalized {
	case "optedin", "optin", "in":
		return OptedIn, nil
	case "optedout", "optout", "out":
		return OptedOut, nil
	case "unknown", "optunknown", "":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown privacy status %q", value)
	}
}

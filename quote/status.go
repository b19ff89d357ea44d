package quote

import (
	"errors"
	"fmt"
)

// Status is the quotation lifecycle state. Any status may be set from any
// other; there is no terminal state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var Statuses = []Status{StatusDraft, StatusSent, StatusApproved, StatusRejected}

var ErrInvalidStatus = errors.New("invalid status")

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Label returns the status in title case for display.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusSent:
		return "Sent"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}

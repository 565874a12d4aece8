package domain

import "strings"

type Mode string

const (
	ModeCOD      Mode = "COD"
	ModeMockCard Mode = "MockCard"
)

// ParseMode matches known modes case-insensitively; unknown input is returned as-is.
func ParseMode(v string) (Mode, bool) {
	v = strings.TrimSpace(v)
	switch {
	case strings.EqualFold(v, string(ModeCOD)):
		return ModeCOD, true
	case strings.EqualFold(v, string(ModeMockCard)):
		return ModeMockCard, true
	}
	return Mode(v), false
}

// Request is what an approver sees when a decision is needed.
type Request struct {
	OrderID string
	Mode    Mode
	Amount  int64
}

type Status string

const (
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

type Decision struct {
	Status Status
	// Reason explains a decline; empty when approved.
	Reason string
	// LogMessage is the audit line recorded against the order.
	LogMessage string
}

func (d Decision) Approved() bool { return d.Status == StatusApproved }

package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlayMode is returned for an unrecognized play mode.
var ErrInvalidPlayMode = errors.New("invalid play mode")

// Mode selects how responses are collected and judged.
type Mode string

const (
	// ModeNormal asks for the artist and the song and matches them.
	ModeNormal Mode = "normal"
	// ModeSelfAssessment reveals the answer and asks whether it was known.
	ModeSelfAssessment Mode = "self-assessment"
)

// Modes lists the play modes in menu order.
var Modes = []Mode{ModeNormal, ModeSelfAssessment}

// ParseMode accepts a mode name or its menu number ("1" or "2").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "1":
		return ModeNormal, nil
	case "self-assessment", "2":
		return ModeSelfAssessment, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlayMode, s)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeNormal || m == ModeSelfAssessment
}

// Title returns the menu label for the mode.
func (m Mode) Title() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeSelfAssessment:
		return "Self-assessment"
	}
	return string(m)
}

// Description returns a one-line explanation for the mode menu.
func (m Mode) Description() string {
	switch m {
	case ModeNormal:
		return "Type the artist and the song"
	case ModeSelfAssessment:
		return "See the answer, then say whether you knew it"
	}
	return ""
}

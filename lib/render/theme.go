// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/machine"
)

// Theme is the colour palette, in ANSI 256-colour codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color

	// Positive covers running machines and succeeded jobs, Negative
	// stopped machines and failed jobs, Pending running jobs.
	Positive lipgloss.Color
	Negative lipgloss.Color
	Pending  lipgloss.Color
}

// DefaultTheme suits a dark 256-colour terminal.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("245"),
	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	Positive:         lipgloss.Color("114"),
	Negative:         lipgloss.Color("196"),
	Pending:          lipgloss.Color("220"),
}

// StateColor returns the colour for a machine state.
func (theme Theme) StateColor(state machine.State) lipgloss.Color {
	switch state {
	case machine.StateRunning:
		return theme.Positive
	case machine.StateStopped:
		return theme.Negative
	default:
		return theme.FaintText
	}
}

// StatusColor returns the colour for a job status.
func (theme Theme) StatusColor(status job.Status) lipgloss.Color {
	switch status {
	case job.StatusSucceeded:
		return theme.Positive
	case job.StatusFailed:
		return theme.Negative
	case job.StatusRunning:
		return theme.Pending
	default:
		return theme.FaintText
	}
}

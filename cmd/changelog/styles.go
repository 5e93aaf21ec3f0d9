package main

import "github.com/charmbracelet/lipgloss"

// Terminal colors for command output.
var (
	destructiveColor = lipgloss.Color("#e53935")
	successColor     = lipgloss.Color("#8BC34A")
	warningColor     = lipgloss.Color("#FFC107")
	infoColor        = lipgloss.Color("#2196F3")
	mutedColor       = lipgloss.Color("#888888")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(destructiveColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle  = lipgloss.NewStyle().Foreground(infoColor).Bold(true)

	// Diff lines
	addedStyle   = lipgloss.NewStyle().Foreground(successColor)
	removedStyle = lipgloss.NewStyle().Foreground(destructiveColor)
	hunkStyle    = lipgloss.NewStyle().Foreground(infoColor)
)

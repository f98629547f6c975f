// Package ui renders conversation state for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/bhandras/docchat/shared/wire"
	"github.com/charmbracelet/lipgloss"
)

var (
	userLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")).
			Render("you")

	assistantLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			Render("assistant")

	statusStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("1"))

	citationHeader = lipgloss.NewStyle().
			Faint(true).
			Render("References:")

	citationStyle = lipgloss.NewStyle().
			Faint(true)
)

// Message renders one conversation entry, including its citation list.
func Message(msg wire.Message) string {
	label := userLabel
	if msg.Role == "assistant" {
		label = assistantLabel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", label, msg.Content)

	if len(msg.Citations) > 0 {
		b.WriteString(citationHeader)
		b.WriteString("\n")
		for i, citation := range msg.Citations {
			b.WriteString(citationStyle.Render(fmt.Sprintf("  [%d] %s", i, citation.Filename)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Conversation renders the full message list, oldest first.
func Conversation(messages []wire.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(Message(msg))
	}
	return b.String()
}

// Status renders the transient progress line.
func Status(text string) string {
	return statusStyle.Render(text)
}

// Error renders the error banner.
func Error(text string) string {
	return errorStyle.Render("Error: " + text)
}

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GregMSThompson/explorer-guide/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	guideStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	emptyStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("243"))
)

func renderAnswer(region, answer string) string {
	return guideStyle.Render(region+" Explorer") + "\n" + answer
}

func renderHistory(uid, sessionID string, msgs []models.Message) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Session %s / %s (%d turns)", uid, sessionID, len(msgs)/2)))
	b.WriteString("\n")

	if len(msgs) == 0 {
		b.WriteString(emptyStyle.Render("No messages yet."))
		b.WriteString("\n")
		return b.String()
	}

	for _, msg := range msgs {
		label := userStyle.Render("You")
		if msg.Role == models.RoleAssistant {
			label = guideStyle.Render("Explorer")
		}
		stamp := ""
		if !msg.CreatedAt.IsZero() {
			stamp = " " + dateStyle.Render(msg.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(&b, "%s%s\n%s\n\n", label, stamp, msg.Content)
	}
	return b.String()
}

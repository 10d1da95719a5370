// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/biosearch/internal/notify"
	"github.com/pdiddy/biosearch/internal/render"
)

// Terminal styles. lipgloss drops the colors when stdout is not a terminal.
var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tabStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle    = lipgloss.NewStyle().Faint(true)
	linkStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("6"))

	kindStyles = map[notify.Kind]lipgloss.Style{
		notify.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		notify.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		notify.Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		notify.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
)

// writeTable prints a view as one block per database tab.
func writeTable(w io.Writer, v render.View) error {
	var b strings.Builder
	if v.Panel != nil {
		b.WriteString(panelStyle(v.Panel.Level).Render(v.Panel.Message))
		b.WriteByte('\n')
	}
	for i, t := range v.Tabs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(tabStyle.Render(fmt.Sprintf("%s (%d)", t.Database, t.Count())))
		b.WriteByte('\n')
		for _, it := range t.Items {
			writeItem(&b, it)
		}
	}
	if len(v.Skipped) > 0 {
		b.WriteString(metaStyle.Render("skipped: " + strings.Join(v.Skipped, ", ")))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeItem(b *strings.Builder, it render.Item) {
	label := it.Label
	if it.Badge != "" {
		label += " [" + it.Badge + "]"
	}
	fmt.Fprintf(b, "  %d. %s\n", it.Index+1, labelStyle.Render(label))

	meta := make([]string, 0, len(it.Meta))
	for _, m := range it.Meta {
		if m.Value == "" {
			continue
		}
		meta = append(meta, m.Value)
	}
	if len(meta) > 0 {
		fmt.Fprintf(b, "     %s\n", metaStyle.Render(strings.Join(meta, " | ")))
	}
	if it.Description != "" {
		fmt.Fprintf(b, "     %s\n", it.Description)
	}
	if it.URL != "" && it.URL != "#" {
		fmt.Fprintf(b, "     %s\n", linkStyle.Render(it.URL))
	}
}

func panelStyle(level render.PanelLevel) lipgloss.Style {
	if level == render.PanelDanger {
		return kindStyles[notify.Danger]
	}
	return kindStyles[notify.Info]
}

// notificationLine formats a notification for stderr.
func notificationLine(n notify.Notification) string {
	style, ok := kindStyles[n.Kind]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(fmt.Sprintf("[%s] %s", n.Kind, n.Message))
}

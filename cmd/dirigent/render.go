package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dirigent/internal/catalog"
	"dirigent/internal/engine"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	idStyle     = lipgloss.NewStyle().Bold(true)
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	tierStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var tierNames = map[catalog.Tier]string{
	catalog.TierMandatory: "mandatory",
	catalog.TierTask:      "task",
	catalog.TierTech:      "tech",
	catalog.TierAdvisory:  "advisory",
}

// renderBundle renders a bundle for humans. Machine consumers use
// --json instead.
func renderBundle(cat *catalog.Catalog, bundle *engine.Bundle) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("resolved bundle (%d units)", len(bundle.Units))))
	b.WriteString("\n")

	for i, ru := range bundle.Units {
		line := fmt.Sprintf("%2d. %s  %s  %s",
			i+1,
			idStyle.Render(ru.ID),
			kindStyle.Render(string(ru.Kind)),
			tierStyle.Render(tierNames[ru.Tier]))
		if ru.OverriddenBy != "" {
			line += "  " + warnStyle.Render("overridden-by:"+ru.OverriddenBy)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if unit, ok := cat.Get(ru.ID); ok && unit.Description != "" {
			b.WriteString(dimStyle.Render("      " + unit.Description))
			b.WriteString("\n")
		}
	}

	if len(bundle.Dropped) > 0 {
		b.WriteString(headerStyle.Render("dropped"))
		b.WriteString("\n")
		for _, d := range bundle.Dropped {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    %s (%s)", d.ID, d.Reason)))
			b.WriteString("\n")
		}
	}

	b.WriteString(dimStyle.Render("run " + bundle.RunID))
	b.WriteString("\n")

	return b.String()
}

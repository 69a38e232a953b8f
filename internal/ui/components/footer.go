package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/factory-dashboard-tui/internal/ui/styles"
)

// RenderFooter renders enabled bindings as a one-line shortcut bar.
func RenderFooter(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+h.Desc)
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(parts, styles.HelpSeparatorStyle.Render(" | ")))
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package render formats address records for terminal display.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ipdock/ipdock/internal/catalog"
)

// Styles holds the lipgloss styles used for the address list.
type Styles struct {
	Label lipgloss.Style
	Value lipgloss.Style
	Dim   lipgloss.Style
	Error lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")).Width(16).Align(lipgloss.Right),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")),
	}
}

// Records renders one aligned label/value row per record.
func Records(styles Styles, records []catalog.Record) string {
	if len(records) == 0 {
		return styles.Dim.Render("no addresses")
	}

	var content strings.Builder

	for i, record := range records {
		if i > 0 {
			content.WriteString("\n")
		}

		content.WriteString(lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.Label.Render(record.InterfaceName),
			styles.Value.Render(" "+record.Addr.String()),
		))
	}

	return content.String()
}

// Unavailable renders the state shown when enumeration fails.
func Unavailable(styles Styles) string {
	return styles.Error.Render("no network information available")
}

package sweepy

import (
	"fmt"
	"strings"
)

// Shared user-facing copy for the lookup failure modes.
const (
	MsgAddressNotFound = "Couldn't find that address. Try including the full street name and zip code."
	MsgNoRoutes        = "No posted sweep routes found nearby. This street may not have posted sweeping, or it might be outside the City of LA."
)

// Renders the report as the display card every transport shares.
// Markdown, matching what the posted signs say plus the computed
// dates.
func (r *Report) Text() string {
	lines := []string{fmt.Sprintf("🧹 *%s*", r.Summary.Street)}

	if len(r.Summary.Days) > 0 {
		lines = append(lines, "📅 "+strings.Join(r.Summary.Days, " & "))
	}
	lines = append(lines, "🔄 "+r.Summary.Parity.String())
	if len(r.Summary.Times) > 0 {
		lines = append(lines, "🕐 "+strings.Join(r.Summary.Times, ", "))
	}

	if r.SweepToday {
		lines = append(lines, "", "⚠️ *SWEEPING TODAY — MOVE YOUR CAR!*")
	}

	if len(r.NextDates) > 0 {
		formatted := make([]string, 0, len(r.NextDates))
		for _, d := range r.NextDates {
			formatted = append(formatted, d.Format("Mon Jan 2"))
		}
		lines = append(lines, "", "📆 Next: "+strings.Join(formatted, ", "))
	}

	return strings.Join(lines, "\n")
}

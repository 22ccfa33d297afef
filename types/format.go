package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// FormatBooking renders the slot snapshot as a markdown table.
func FormatBooking(info BookingInfo) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, slot := range AllSlots() {
		_ = table.Append(slot.DisplayName(), info.Value(slot))
	}
	_ = table.Render()
	return buf.String()
}

func FormatMissing(slots []Slot) string {
	if len(slots) == 0 {
		return "none"
	}
	seen := make(map[Slot]struct{}, len(slots))
	names := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		names = append(names, slot.DisplayName())
	}
	return strings.Join(names, ", ")
}

func FormatErrors(errs []string) string {
	if len(errs) == 0 {
		return "none"
	}
	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString("- ")
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatCurrentDate(now time.Time) string {
	return fmt.Sprintf("# Current Date:\n%s (%s)", now.Format(time.DateOnly), now.Weekday())
}

package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatStat renders one statistic cell with six significant digits.
func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// renderText renders a summary as an aligned text table: one line per source
// column, statistic columns ordered mean, std, min, max, nan_count. Column
// names are left-aligned, statistic cells right-aligned, and there is no
// trailing newline.
func renderText(s *Summary) string {
	rows := s.Rows()

	nameWidth := 0
	for _, r := range rows {
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
	}

	widths := make([]int, len(textStats))
	for j, name := range textStats {
		widths[j] = len(name)
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = make([]string, len(textStats))
		for j, statName := range textStats {
			var cell string
			if statName == StatNaNCount {
				cell = strconv.Itoa(r.NaNCount)
			} else {
				cell = formatStat(r.Stat(statName))
			}
			cells[i][j] = cell
			if len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s", nameWidth, "")
	for j, statName := range textStats {
		fmt.Fprintf(&b, "  %*s", widths[j], statName)
	}
	for i, r := range rows {
		fmt.Fprintf(&b, "\n%-*s", nameWidth, r.Name)
		for j := range textStats {
			fmt.Fprintf(&b, "  %*s", widths[j], cells[i][j])
		}
	}
	return b.String()
}

// fieldBlock renders the labeled text block one summarized field contributes
// to a summary file.
func fieldBlock(field string, s *Summary) string {
	return "\n\n\n" + strings.ToUpper(field) + " summary\n" + renderText(s)
}

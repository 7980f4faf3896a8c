package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jamesainslie/attic/pkg/attic/reconcile"
)

// timeRounding trims scan durations for display.
const timeRounding = time.Millisecond

// countsLine renders the per-classification counts in fixed order. Zero
// counts other than unchanged are omitted; the counts shown are exact.
func countsLine(r *reconcile.Report) string {
	parts := make([]string, 0, len(countOrder))
	for _, status := range countOrder {
		n := r.Count(status)
		if n == 0 && status != reconcile.StatusUnchanged {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", status, n))
	}
	return strings.Join(parts, "  ")
}

package cli

import (
	"fmt"
	"time"
)

// FormatDuration renders d as 850ms, 12.3s or 2m5.5s.
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Millisecond)
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := d / time.Minute
	return fmt.Sprintf("%dm%.1fs", m, (d - m*time.Minute).Seconds())
}

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// FormatBytes renders n with a binary unit, e.g. 1.50 KB.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// FormatPercent renders a ratio in [0, 1] as a percentage with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

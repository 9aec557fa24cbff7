package display

import (
	"fmt"
	"time"
)

var byteUnits = [...]string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes renders n with binary units: "512 B", "1.5 KiB", "4.7 GiB".
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	u := 0
	for v >= 1024 && u < len(byteUnits)-1 {
		v /= 1024
		u++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[u])
}

// FormatBytesWithSign prefixes a size delta with "+ " or "- ".
func FormatBytesWithSign(n int64) string {
	switch {
	case n > 0:
		return "+ " + FormatBytes(n)
	case n < 0:
		return "- " + FormatBytes(-n)
	}
	return FormatBytes(0)
}

// FormatDuration renders d rounded to the second as "1h02m03s", "4m05s"
// or "12s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

package model

import (
	"fmt"
)

// FormatBytes renders a byte count in the largest unit it reaches, truncating: 1536 is "1KB"
func FormatBytes(bytes int64) string {
	switch {
	case bytes < KiB:
		return fmt.Sprintf("%dB", bytes)
	case bytes < MiB:
		return fmt.Sprintf("%dKB", bytes/KiB)
	case bytes < GiB:
		return fmt.Sprintf("%dMB", bytes/MiB)
	default:
		return fmt.Sprintf("%dGB", bytes/GiB)
	}
}

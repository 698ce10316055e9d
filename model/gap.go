package model

// Gaps is the difference between each sample and the one before it, one shorter than `series`
func Gaps(series []int64) []int64 {
	if len(series) < 2 {
		return []int64{}
	}
	gaps := make([]int64, len(series)-1)
	for i := range gaps {
		gaps[i] = series[i+1] - series[i]
	}
	return gaps
}

// OverGap reports whether any gap drifted more than `threshold` away from the first gap
// it compares against gaps[0], not the previous gap: a steady rate never trips it
func OverGap(gaps []int64, threshold int64) bool {
	if len(gaps) == 0 {
		return false
	}
	baseline := gaps[0]
	for _, gap := range gaps {
		if abs(gap-baseline) > threshold {
			return true
		}
	}
	return false
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// GapDetectorTitle is the report section the gap findings go under
const GapDetectorTitle = "ETC"

// GapDetector turns a sampled `Series` into findings
type GapDetector struct {
	keysGap int64
	connGap int64
}

// NewGapDetector initializes a `GapDetector` from the keys and connection thresholds
func NewGapDetector(thresholds Thresholds) *GapDetector {
	return &GapDetector{
		keysGap: thresholds.KeysGap,
		connGap: thresholds.ConnGap,
	}
}

// Detect always reports the throughput, and flags `KEYS` usage and connection churn
func (gapDetector *GapDetector) Detect(series *Series) []Finding {
	findings := []Finding{}
	if keys := Gaps(series.Keys); OverGap(keys, gapDetector.keysGap) {
		findings = append(findings, Findingf(DANGER, "Don't use KEYS command, it enumerates the whole keyspace: %v", keys))
	}
	if conns := Gaps(series.Connections); OverGap(conns, gapDetector.connGap) {
		findings = append(findings, Findingf(CHECK, "Connections are frequently changed: %v", conns))
	}
	findings = append(findings, Findingf(INFO, "commands per interval: %v", Gaps(series.Commands)))
	return findings
}

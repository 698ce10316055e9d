package model

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// defaultSaveSchedule is the `save` setting redis ships with
var defaultSaveSchedule = []string{"3600", "1", "300", "100", "60", "10000"}

// totalSystemMemorySince is the first version reporting `total_system_memory`
var totalSystemMemorySince = MustParseVersion("3.2")

// DefaultRules is the built-in rule set in report order
func DefaultRules(thresholds Thresholds) []Rule {
	return []Rule{
		{ID: "memory", Title: "Memory Status", Evaluator: MemoryRule{}},
		{ID: "rdb", Title: "RDB Status", Evaluator: RDBRule{}},
		{ID: "aof", Title: "AOF Status", Evaluator: AOFRule{}},
		{ID: "maxclients", Title: "MAX Clients Status", Evaluator: MaxClientsRule{
			Floor:       thresholds.MaxClientsFloor,
			Recommended: thresholds.MaxClientsRecommended,
		}},
		{ID: "output-buffer", Title: "Replication outputBufferLimits Status", Evaluator: OutputBufferRule{
			MemoryFloor:    thresholds.ReplicaMemoryFloor,
			HardLimitFloor: thresholds.ReplicaHardLimitFloor,
		}},
	}
}

// ClassifyFragmentation labels a `mem_fragmentation_ratio`
// the checks run in order, so (1.2, 1.3) stays unlabeled and 1.5 is still "Caution"
func ClassifyFragmentation(ratio float64) string {
	if ratio <= 1.2 {
		return "Normal"
	}
	if ratio >= 1.3 && ratio <= 1.5 {
		return "Caution"
	}
	if ratio >= 1.5 {
		return "Bad"
	}
	return ""
}

// MemoryRule always reports memory usage as INFO findings
type MemoryRule struct{}

// Evaluate reports system, used, rss, maxmemory and fragmentation
func (memoryRule MemoryRule) Evaluate(ctx context.Context, snapshot *Snapshot) ([]Finding, error) {
	used, err := snapshot.Int("used_memory")
	if err != nil {
		return nil, err
	}
	rss, err := snapshot.Int("used_memory_rss")
	if err != nil {
		return nil, err
	}
	maxMemory, err := snapshot.Int("maxmemory")
	if err != nil {
		// older servers only expose it through CONFIG
		if maxMemory, err = snapshot.ConfigInt(ctx, "maxmemory"); err != nil {
			return nil, err
		}
	}
	ratio, _ := snapshot.Lookup("mem_fragmentation_ratio")

	total, usedPercent := "N/A", "unknown"
	if snapshot.Version().AtLeast(totalSystemMemorySince) {
		system, err := snapshot.Int("total_system_memory")
		if err != nil {
			return nil, err
		}
		total = FormatBytes(system)
		if system > 0 {
			percent := math.Round(float64(used)/float64(system)*100*100) / 100
			usedPercent = strconv.FormatFloat(percent, 'f', -1, 64)
		}
	}

	class := ""
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(ratio), 64); err == nil {
		class = ClassifyFragmentation(parsed)
	}

	return []Finding{
		Findingf(INFO, "Total Memory in Instance: %s", total),
		Findingf(INFO, "Used Memory in Redis: %s(%s%%)", FormatBytes(used), usedPercent),
		Findingf(INFO, "Real Memory in Redis RSS: %s", FormatBytes(rss)),
		Findingf(INFO, "MaxMemory Settings: %s", FormatBytes(maxMemory)),
		Findingf(INFO, "Fragmentation Ratio : %s(%s)", ratio, class),
	}, nil
}

// RDBRule inspects the snapshot (`save`) settings
type RDBRule struct{}

// Evaluate flags the vendor default schedule, a failed last bgsave and stop-writes-on-bgsave-error
func (rdbRule RDBRule) Evaluate(ctx context.Context, snapshot *Snapshot) ([]Finding, error) {
	save, err := snapshot.Config(ctx, "save")
	if err != nil {
		return nil, err
	}
	findings := []Finding{}
	points := strings.Fields(save)
	if equalTokens(points, defaultSaveSchedule) {
		findings = append(findings, Findingf(DANGER, "save option is set by default, likely never reviewed: %s", save))
	}
	if len(points) == 0 {
		return findings, nil
	}

	if status, _ := snapshot.Lookup("rdb_last_bgsave_status"); status != "ok" {
		findings = append(findings, Findingf(DANGER, "rdb_last_bgsave_status is bad: %s", status))
	}
	stopWrites, err := snapshot.Config(ctx, "stop-writes-on-bgsave-error")
	if err != nil {
		return nil, err
	}
	if stopWrites == "yes" {
		findings = append(findings, Findingf(WARNING, "stop-writes-on-bgsave-error is yes, a single failed bgsave blocks all writes"))
	}
	return findings, nil
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AOFRule inspects the append only file settings, it's silent when aof is off
type AOFRule struct{}

// Evaluate flags `appendfsync always` and automatic rewrites
func (aofRule AOFRule) Evaluate(ctx context.Context, snapshot *Snapshot) ([]Finding, error) {
	appendOnly, err := snapshot.Config(ctx, "appendonly")
	if err != nil {
		return nil, err
	}
	findings := []Finding{}
	if appendOnly != "yes" {
		return findings, nil
	}

	fsync, err := snapshot.Config(ctx, "appendfsync")
	if err != nil {
		return nil, err
	}
	if fsync == "always" {
		findings = append(findings, Findingf(CHECK, "appendfsync is always. It can cause performance issue"))
	}

	percentage, err := snapshot.ConfigInt(ctx, "auto-aof-rewrite-percentage")
	if err != nil {
		return nil, err
	}
	minSize, err := snapshot.ConfigInt(ctx, "auto-aof-rewrite-min-size")
	if err != nil {
		return nil, err
	}
	if percentage != 0 {
		findings = append(findings, Findingf(WARNING, "AOF can be auto rewritten. per: %d, size: %s", percentage, FormatBytes(minSize)))
	}
	return findings, nil
}

// MaxClientsRule flags a `maxclients` below `Floor`
type MaxClientsRule struct {
	Floor       int64
	Recommended int64
}

// Evaluate compares `maxclients` with the floor
func (maxClientsRule MaxClientsRule) Evaluate(ctx context.Context, snapshot *Snapshot) ([]Finding, error) {
	maxClients, err := snapshot.ConfigInt(ctx, "maxclients")
	if err != nil {
		return nil, err
	}
	if maxClients < maxClientsRule.Floor {
		return []Finding{
			Findingf(CHECK, "MaxClients is too small. current %d, recommend: %d", maxClients, maxClientsRule.Recommended),
		}, nil
	}
	return nil, nil
}

// BufferLimit is one class of `client-output-buffer-limit`
type BufferLimit struct {
	Class       string
	HardLimit   int64
	SoftLimit   int64
	SoftSeconds int64
}

// ParseBufferLimits parses "normal 0 0 0 slave 268435456 67108864 60 pubsub 33554432 8388608 60"
// malformed groups are skipped
func ParseBufferLimits(raw string) map[string]BufferLimit {
	limits := map[string]BufferLimit{}
	parts := strings.Fields(raw)
	for i := 0; i+3 < len(parts); i += 4 {
		values := make([]int64, 3)
		ok := true
		for v := range values {
			parsed, err := parseMemory(parts[i+1+v])
			if err != nil {
				ok = false
				break
			}
			values[v] = parsed
		}
		if !ok {
			continue
		}
		class := parts[i]
		limits[class] = BufferLimit{Class: class, HardLimit: values[0], SoftLimit: values[1], SoftSeconds: values[2]}
	}
	return limits
}

// parseMemory accepts plain bytes and the "64mb"/"1gb" units redis allows in config
func parseMemory(raw string) (int64, error) {
	lower := strings.ToLower(raw)
	multipliers := []struct {
		suffix string
		factor int64
	}{
		{"kb", KiB}, {"mb", MiB}, {"gb", GiB}, {"k", 1000}, {"m", 1000 * 1000}, {"g", 1000 * 1000 * 1000},
	}
	for _, m := range multipliers {
		if strings.HasSuffix(lower, m.suffix) {
			value, err := strconv.ParseInt(strings.TrimSuffix(lower, m.suffix), 10, 64)
			return value * m.factor, err
		}
	}
	return strconv.ParseInt(lower, 10, 64)
}

// OutputBufferRule flags a small replica output buffer on instances holding a lot of data
type OutputBufferRule struct {
	MemoryFloor    int64
	HardLimitFloor int64
}

// Evaluate only looks at the replica limits once used memory exceeds `MemoryFloor`
func (outputBufferRule OutputBufferRule) Evaluate(ctx context.Context, snapshot *Snapshot) ([]Finding, error) {
	used, err := snapshot.Int("used_memory")
	if err != nil {
		return nil, err
	}
	raw, err := snapshot.Config(ctx, "client-output-buffer-limit")
	if err != nil {
		return nil, err
	}
	limits := ParseBufferLimits(raw)
	replica, ok := limits["replica"]
	if !ok {
		// servers before 5.0 call it slave
		if replica, ok = limits["slave"]; !ok {
			return nil, nil
		}
	}
	if used > outputBufferRule.MemoryFloor && replica.HardLimit < outputBufferRule.HardLimitFloor {
		return []Finding{
			Findingf(CHECK, "client-output-buffer-limit is small for replica (hard: %s). up it to at least %s",
				FormatBytes(replica.HardLimit), FormatBytes(outputBufferRule.HardLimitFloor)),
		}, nil
	}
	return nil, nil
}

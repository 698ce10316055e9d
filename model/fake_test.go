package model

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var errFakeStore = errors.New("fake store failure")

// fakeStatus serves a fixed config and a sequence of INFO replies, the last one repeats
type fakeStatus struct {
	infos   []map[string]string
	config  map[string]string
	reads   int
	configs []string
}

func (fakeStatus *fakeStatus) Info(ctx context.Context, sections ...string) (map[string]string, error) {
	if len(fakeStatus.infos) == 0 {
		return nil, errFakeStore
	}
	i := fakeStatus.reads
	if i >= len(fakeStatus.infos) {
		i = len(fakeStatus.infos) - 1
	}
	fakeStatus.reads++
	return fakeStatus.infos[i], nil
}

func (fakeStatus *fakeStatus) ConfigGet(ctx context.Context, name string) (string, error) {
	fakeStatus.configs = append(fakeStatus.configs, name)
	if value, ok := fakeStatus.config[name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: no config %s", errFakeStore, name)
}

// baseInfo is a small healthy 7.x instance
func baseInfo() map[string]string {
	return map[string]string{
		"redis_version":            "7.2.4",
		"used_memory":              "1048576",
		"used_memory_rss":          "2097152",
		"maxmemory":                "0",
		"total_system_memory":      "8589934592",
		"mem_fragmentation_ratio":  "1.03",
		"rdb_last_bgsave_status":   "ok",
		"connected_clients":        "10",
		"total_commands_processed": "1000",
	}
}

// baseConfig is a reviewed configuration, no rule fires on it
func baseConfig() map[string]string {
	return map[string]string{
		"save":                        "900 1",
		"stop-writes-on-bgsave-error": "no",
		"appendonly":                  "no",
		"appendfsync":                 "everysec",
		"auto-aof-rewrite-percentage": "100",
		"auto-aof-rewrite-min-size":   "67108864",
		"maxclients":                  "50000",
		"client-output-buffer-limit":  "normal 0 0 0 replica 268435456 67108864 60 pubsub 33554432 8388608 60",
		"maxmemory":                   "0",
	}
}

func withFields(base map[string]string, overrides map[string]string) map[string]string {
	merged := map[string]string{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// fakeKeys is an in memory keyspace served a page at a time in key order
type fakeKeys struct {
	types      map[string]KeyType
	sizes      map[string]int64
	failType   map[string]bool
	failSize   map[string]bool
	failScanAt int
	scans      int
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{
		types:      map[string]KeyType{},
		sizes:      map[string]int64{},
		failType:   map[string]bool{},
		failSize:   map[string]bool{},
		failScanAt: -1,
	}
}

func (fakeKeys *fakeKeys) put(key string, keyType KeyType, size int64) {
	fakeKeys.types[key] = keyType
	fakeKeys.sizes[key] = size
}

func (fakeKeys *fakeKeys) sortedKeys() []string {
	keys := make([]string, 0, len(fakeKeys.types))
	for k := range fakeKeys.types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (fakeKeys *fakeKeys) Scan(ctx context.Context, cursor uint64, match string, count int64) (uint64, []string, error) {
	if fakeKeys.scans == fakeKeys.failScanAt {
		return 0, nil, errFakeStore
	}
	fakeKeys.scans++
	keys := fakeKeys.sortedKeys()
	start := int(cursor)
	end := start + int(count)
	if end >= len(keys) {
		return 0, keys[start:], nil
	}
	return uint64(end), keys[start:end], nil
}

func (fakeKeys *fakeKeys) TypeOf(ctx context.Context, key string) (KeyType, error) {
	if fakeKeys.failType[key] {
		return TypeUnknown, errFakeStore
	}
	return fakeKeys.types[key], nil
}

func (fakeKeys *fakeKeys) SizeOf(ctx context.Context, key string, keyType KeyType) (int64, error) {
	if fakeKeys.failSize[key] || keyType == TypeUnknown {
		return 0, errFakeStore
	}
	return fakeKeys.sizes[key], nil
}

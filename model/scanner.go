package model

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/golang/glog"
	"golang.org/x/time/rate"
)

// KeyType is the data type of a key as reported by `TYPE`
type KeyType string

const (
	TypeString  KeyType = "string"
	TypeList    KeyType = "list"
	TypeSet     KeyType = "set"
	TypeZSet    KeyType = "zset"
	TypeHash    KeyType = "hash"
	TypeUnknown KeyType = "unknown"
)

// ParseKeyType maps a `TYPE` reply to a `KeyType`, streams and module types are `TypeUnknown`
func ParseKeyType(raw string) KeyType {
	switch keyType := KeyType(raw); keyType {
	case TypeString, TypeList, TypeSet, TypeZSet, TypeHash:
		return keyType
	default:
		return TypeUnknown
	}
}

// Size is the length/cardinality of a key, `OK` is false when probing it failed
type Size struct {
	Value int64
	OK    bool
}

// SizeOf wraps a successful probe
func SizeOf(value int64) Size {
	return Size{Value: value, OK: true}
}

// FailedSize is a failed probe
var FailedSize = Size{}

// String prints -1 for a failed probe, like the classic tools do
func (size Size) String() string {
	if !size.OK {
		return "-1"
	}
	return strconv.FormatInt(size.Value, 10)
}

// Int64 is the probed value, -1 for a failed probe
func (size Size) Int64() int64 {
	if !size.OK {
		return -1
	}
	return size.Value
}

// MarshalJSON keeps the -1 convention as a json number
func (size Size) MarshalJSON() ([]byte, error) {
	return []byte(size.String()), nil
}

// MarshalYAML keeps the -1 convention as a yaml int
func (size Size) MarshalYAML() (interface{}, error) {
	return size.Int64(), nil
}

// Entry is one scanned key
type Entry struct {
	Key  string  `json:"key" yaml:"key"`
	Type KeyType `json:"type" yaml:"type"`
	Size Size    `json:"size" yaml:"size"`
}

// ScanResult is what's left after a complete scan
type ScanResult struct {
	Total    int
	Failed   int
	Streamed bool
	TopN     int
	Tops     *TopTables
	Prefixes *PrefixHistogram
}

const (
	// DefaultPageSize is the `COUNT` hint sent with every `SCAN`
	DefaultPageSize int64 = 100
	// DefaultDelimiter splits a key name into its prefix
	DefaultDelimiter = ":"
)

// Scanner walks the keyspace with a cursor and feeds the per type top-N tables and the prefix histogram
// with `topN` == 0 nothing is aggregated, every entry is handed to `emit` as it's found
type Scanner struct {
	source    KeySource
	match     string
	pageSize  int64
	delimiter string
	topN      int
	limiter   *rate.Limiter
}

// ScannerOption tweaks a `Scanner`
type ScannerOption func(*Scanner)

// WithMatch sets the `MATCH` pattern
func WithMatch(match string) ScannerOption {
	return func(scanner *Scanner) {
		if match != "" {
			scanner.match = match
		}
	}
}

// WithPageSize sets the `COUNT` hint
func WithPageSize(pageSize int64) ScannerOption {
	return func(scanner *Scanner) {
		if pageSize > 0 {
			scanner.pageSize = pageSize
		}
	}
}

// WithDelimiter sets the prefix delimiter
func WithDelimiter(delimiter string) ScannerOption {
	return func(scanner *Scanner) {
		scanner.delimiter = delimiter
	}
}

// WithTopN sets how many keys per type to keep, 0 streams every key instead
func WithTopN(topN int) ScannerOption {
	return func(scanner *Scanner) {
		if topN >= 0 {
			scanner.topN = topN
		}
	}
}

// WithProbeRate caps the per key probes per second, 0 leaves them unthrottled
func WithProbeRate(perSecond float64) ScannerOption {
	return func(scanner *Scanner) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			scanner.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewScanner initializes a `Scanner` matching every key, 100 per page, split on ":", streaming
func NewScanner(source KeySource, options ...ScannerOption) *Scanner {
	scanner := &Scanner{
		source:    source,
		match:     "*",
		pageSize:  DefaultPageSize,
		delimiter: DefaultDelimiter,
	}
	for _, option := range options {
		option(scanner)
	}
	return scanner
}

// Run scans until the cursor comes back to 0
// a failed page aborts the scan, a failed key is recorded with a failed size and the scan goes on
func (scanner *Scanner) Run(ctx context.Context, emit func(Entry)) (*ScanResult, error) {
	result := &ScanResult{
		Streamed: scanner.topN == 0,
		TopN:     scanner.topN,
		Tops:     NewTopTables(scanner.topN),
		Prefixes: NewPrefixHistogram(),
	}
	var cursor uint64
	for page := 0; ; page++ {
		next, keys, err := scanner.source.Scan(ctx, cursor, scanner.match, scanner.pageSize)
		if err != nil {
			return nil, fmt.Errorf("scan page %d (cursor %d): %w", page, cursor, err)
		}
		log.V(1).Infof("<scanner> page:%d cursor:%d next:%d keys:%d\n", page, cursor, next, len(keys))
		for _, key := range keys {
			entry, err := scanner.probe(ctx, key)
			if err != nil {
				return nil, err
			}
			result.Total++
			if !entry.Size.OK {
				result.Failed++
			}
			if result.Streamed {
				if emit != nil {
					emit(entry)
				}
				continue
			}
			result.Tops.Offer(entry)
			result.Prefixes.Add(ExtractPrefix(entry.Key, scanner.delimiter))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	log.Infof("<scanner> done, keys:%d failed probes:%d prefixes:%d\n", result.Total, result.Failed, result.Prefixes.Len())
	return result, nil
}

// probe only returns an error when the context is done, store failures become a failed size
func (scanner *Scanner) probe(ctx context.Context, key string) (Entry, error) {
	if scanner.limiter != nil {
		if err := scanner.limiter.Wait(ctx); err != nil {
			return Entry{}, err
		}
	}
	entry := Entry{Key: key, Type: TypeUnknown, Size: FailedSize}
	keyType, err := scanner.source.TypeOf(ctx, key)
	if err != nil {
		log.Warningf("<scanner> type of %q failed:%v\n", key, err)
		return entry, nil
	}
	entry.Type = keyType
	size, err := scanner.source.SizeOf(ctx, key, keyType)
	if err != nil {
		log.V(1).Infof("<scanner> size of %q (%s) failed:%v\n", key, keyType, err)
		return entry, nil
	}
	entry.Size = SizeOf(size)
	return entry, nil
}

package model

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dghubble/trie"
)

// NoPrefix is the bucket of keys without the delimiter
const NoPrefix = "(no-prefix)"

// ExtractPrefix is everything before the first `delimiter`, or `NoPrefix`
func ExtractPrefix(key, delimiter string) string {
	if delimiter == "" {
		return NoPrefix
	}
	if prefix, _, found := strings.Cut(key, delimiter); found {
		return prefix
	}
	return NoPrefix
}

// PrefixCount is one histogram bucket
type PrefixCount struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Count  uint64 `json:"count" yaml:"count"`
}

type prefixEntry struct {
	prefix string
	count  uint64
}

// PrefixHistogram counts key prefixes, buckets only ever grow
// redis keys are binary, the trie is keyed by the quoted prefix so invalid utf-8 bytes stay distinct
type PrefixHistogram struct {
	trie    *trie.RuneTrie
	buckets int
	total   uint64
}

// NewPrefixHistogram initializes an empty `PrefixHistogram`
func NewPrefixHistogram() *PrefixHistogram {
	return &PrefixHistogram{
		trie: trie.NewRuneTrie(),
	}
}

// Add counts one more key under `prefix`
func (prefixHistogram *PrefixHistogram) Add(prefix string) {
	prefixHistogram.total++
	node := strconv.Quote(prefix)
	if stored, ok := prefixHistogram.trie.Get(node).(*prefixEntry); ok {
		stored.count++
		return
	}
	prefixHistogram.trie.Put(node, &prefixEntry{prefix: prefix, count: 1})
	prefixHistogram.buckets++
}

// Count is the number of keys counted under `prefix`
func (prefixHistogram *PrefixHistogram) Count(prefix string) uint64 {
	if stored, ok := prefixHistogram.trie.Get(strconv.Quote(prefix)).(*prefixEntry); ok {
		return stored.count
	}
	return 0
}

// Len is the number of distinct prefixes
func (prefixHistogram *PrefixHistogram) Len() int {
	return prefixHistogram.buckets
}

// Total is the number of keys counted
func (prefixHistogram *PrefixHistogram) Total() uint64 {
	return prefixHistogram.total
}

// Top is the `n` most frequent prefixes, most frequent first, all of them when `n` <= 0
// equal counts are ordered by prefix so the output is stable
func (prefixHistogram *PrefixHistogram) Top(n int) []PrefixCount {
	counts := make([]PrefixCount, 0, prefixHistogram.buckets)
	prefixHistogram.trie.Walk(func(_ string, value interface{}) error {
		if stored, ok := value.(*prefixEntry); ok {
			counts = append(counts, PrefixCount{Prefix: stored.prefix, Count: stored.count})
		}
		return nil
	})
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Prefix < counts[j].Prefix
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

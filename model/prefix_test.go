package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPrefix(t *testing.T) {
	assert.Equal(t, "user", ExtractPrefix("user:123", ":"))
	assert.Equal(t, "user", ExtractPrefix("user:123:profile", ":"))
	assert.Equal(t, NoPrefix, ExtractPrefix("noDelimiterHere", ":"))
	assert.Equal(t, "", ExtractPrefix(":leading", ":"))
	assert.Equal(t, "session", ExtractPrefix("session_abc", "_"))
	assert.Equal(t, "a", ExtractPrefix("a::b", "::"))
	assert.Equal(t, NoPrefix, ExtractPrefix("user:1", ""))
}

func TestPrefixHistogram(t *testing.T) {
	histogram := NewPrefixHistogram()
	for _, key := range []string{"user:1", "user:2", "order:1", "user:3", "cart:9", "order:2", "plain", ":odd"} {
		histogram.Add(ExtractPrefix(key, ":"))
	}

	assert.Equal(t, 5, histogram.Len())
	assert.Equal(t, uint64(8), histogram.Total())
	assert.Equal(t, uint64(3), histogram.Count("user"))
	assert.Equal(t, uint64(1), histogram.Count(""))
	assert.Equal(t, uint64(0), histogram.Count("missing"))

	assert.Equal(t, []PrefixCount{
		{Prefix: "user", Count: 3},
		{Prefix: "order", Count: 2},
	}, histogram.Top(2))

	all := histogram.Top(0)
	assert.Equal(t, []PrefixCount{
		{Prefix: "user", Count: 3},
		{Prefix: "order", Count: 2},
		{Prefix: "", Count: 1},
		{Prefix: NoPrefix, Count: 1},
		{Prefix: "cart", Count: 1},
	}, all)
	assert.Len(t, histogram.Top(50), 5)
}

func TestPrefixHistogramNestedPrefixes(t *testing.T) {
	// "us" is a prefix of "user", both keep their own count
	histogram := NewPrefixHistogram()
	histogram.Add("user")
	histogram.Add("us")
	histogram.Add("user")
	assert.Equal(t, uint64(2), histogram.Count("user"))
	assert.Equal(t, uint64(1), histogram.Count("us"))
	assert.Equal(t, []PrefixCount{{Prefix: "user", Count: 2}, {Prefix: "us", Count: 1}}, histogram.Top(-1))
}

func TestPrefixHistogramBinaryPrefixes(t *testing.T) {
	histogram := NewPrefixHistogram()
	histogram.Add(ExtractPrefix("\xff:1", ":"))
	histogram.Add(ExtractPrefix("\xfe:1", ":"))
	histogram.Add(ExtractPrefix("\xfe:2", ":"))

	assert.Equal(t, 2, histogram.Len())
	assert.Equal(t, uint64(1), histogram.Count("\xff"))
	assert.Equal(t, uint64(2), histogram.Count("\xfe"))
	assert.Equal(t, uint64(0), histogram.Count("\uFFFD"))
	assert.Equal(t, []PrefixCount{{Prefix: "\xfe", Count: 2}, {Prefix: "\xff", Count: 1}}, histogram.Top(0))
}

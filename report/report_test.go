package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inexplicable/redis_checker/model"
)

func sampleReport() *model.Report {
	report := &model.Report{}
	report.Add("Memory Status", []model.Finding{
		model.Findingf(model.INFO, "Used Memory in Redis: %s", "1MB"),
	})
	report.Add("RDB Status", []model.Finding{
		model.Findingf(model.DANGER, "rdb_last_bgsave_status is bad: %s", "err"),
		model.Findingf(model.WARNING, "stop-writes-on-bgsave-error is yes"),
	})
	return report
}

func sampleScan(topN int) *model.ScanResult {
	result := &model.ScanResult{
		Total:    4,
		Failed:   1,
		Streamed: topN == 0,
		TopN:     topN,
		Tops:     model.NewTopTables(topN),
		Prefixes: model.NewPrefixHistogram(),
	}
	if topN == 0 {
		return result
	}
	for _, entry := range []model.Entry{
		{Key: "user:1", Type: model.TypeHash, Size: model.SizeOf(3)},
		{Key: "user:2", Type: model.TypeHash, Size: model.SizeOf(9)},
		{Key: "queue", Type: model.TypeList, Size: model.SizeOf(20)},
		{Key: "odd", Type: model.TypeUnknown, Size: model.FailedSize},
	} {
		result.Tops.Offer(entry)
		result.Prefixes.Add(model.ExtractPrefix(entry.Key, ":"))
	}
	return result
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "text", "json", "yaml"} {
		renderer, err := New(format, &bytes.Buffer{})
		require.NoError(t, err)
		assert.NotNil(t, renderer)
	}
	_, err := New("xml", &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestTextReport(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, NewTextRenderer(out, false).Report(sampleReport()))

	banner := strings.Repeat("=", 51)
	expected := banner + "\nMemory Status\nINFO: Used Memory in Redis: 1MB\n" +
		banner + "\nRDB Status\nDANGER: rdb_last_bgsave_status is bad: err\nWARNING: stop-writes-on-bgsave-error is yes\n" +
		banner + "\n"
	assert.Equal(t, expected, out.String())
}

func TestTextStreamingScan(t *testing.T) {
	out := &bytes.Buffer{}
	renderer := NewTextRenderer(out, false)
	require.NoError(t, renderer.StartScan(true))
	require.NoError(t, renderer.Entry(model.Entry{Key: "user:1", Type: model.TypeHash, Size: model.SizeOf(3)}))
	require.NoError(t, renderer.Entry(model.Entry{Key: "stream:1", Type: model.TypeUnknown, Size: model.FailedSize}))
	require.NoError(t, renderer.Scan(sampleScan(0)))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, strings.Repeat("-", 70), lines[1])
	assert.Equal(t, strings.Fields(lines[2]), []string{"user:1", "hash", "3"})
	assert.Equal(t, strings.Fields(lines[3]), []string{"stream:1", "unknown", "-1"})
	assert.Equal(t, "Total Keys: 4", lines[5])
	assert.Equal(t, "Failed Probes: 1", lines[6])
	assert.NotContains(t, out.String(), "Prefix")
}

func TestTextBoundedScan(t *testing.T) {
	out := &bytes.Buffer{}
	renderer := NewTextRenderer(out, false)
	require.NoError(t, renderer.StartScan(false))
	require.NoError(t, renderer.Scan(sampleScan(2)))

	text := out.String()
	assert.Contains(t, text, "Collection : HASH (Top 2)")
	assert.Contains(t, text, "Collection : LIST (Top 2)")
	assert.NotContains(t, text, "UNKNOWN", "a type with only failed probes has no table")
	assert.Less(t, strings.Index(text, "user:2"), strings.Index(text, "user:1"), "largest first")
	assert.Less(t, strings.Index(text, "Total Keys: 4"), strings.Index(text, "Collection"))

	prefixes := text[strings.Index(text, "Prefix"):]
	lines := strings.Split(strings.TrimRight(prefixes, "\n"), "\n")
	require.Len(t, lines, 4)
	// equal counts fall back to prefix order
	assert.Equal(t, []string{model.NoPrefix, "2"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"user", "2"}, strings.Fields(lines[3]))
}

func TestTextClients(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, NewTextRenderer(out, false).Clients([]model.ClientCount{{IP: "10.0.0.1", Count: 3}, {IP: "::1", Count: 1}}))
	assert.Equal(t, "IP : 10.0.0.1(count: 3)\nIP : ::1(count: 1)\n", out.String())
}

func TestTextColor(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, NewTextRenderer(out, true).Report(sampleReport()))
	// the message itself is never styled
	assert.Contains(t, out.String(), ": rdb_last_bgsave_status is bad: err\n")
}

func TestJSONDocuments(t *testing.T) {
	out := &bytes.Buffer{}
	renderer := NewJSONRenderer(out)
	require.NoError(t, renderer.Report(sampleReport()))

	var report struct {
		Worst    string `json:"worst"`
		Sections []struct {
			Title    string `json:"title"`
			Findings []struct {
				Severity string `json:"severity"`
				Message  string `json:"message"`
			} `json:"findings"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "DANGER", report.Worst)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, "WARNING", report.Sections[1].Findings[1].Severity)

	out.Reset()
	require.NoError(t, renderer.StartScan(true))
	require.NoError(t, renderer.Entry(model.Entry{Key: "a", Type: model.TypeString, Size: model.FailedSize}))
	require.NoError(t, renderer.Scan(sampleScan(0)))
	var scan struct {
		Total int `json:"total"`
		Keys  []struct {
			Key  string `json:"key"`
			Size int64  `json:"size"`
		} `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &scan))
	assert.Equal(t, 4, scan.Total)
	require.Len(t, scan.Keys, 1)
	assert.Equal(t, int64(-1), scan.Keys[0].Size)
}

func TestYAMLDocuments(t *testing.T) {
	out := &bytes.Buffer{}
	renderer := NewYAMLRenderer(out)
	require.NoError(t, renderer.StartScan(false))
	require.NoError(t, renderer.Scan(sampleScan(2)))

	var scan struct {
		Total  int `yaml:"total"`
		Tables []struct {
			Type    string `yaml:"type"`
			Entries []struct {
				Key  string `yaml:"key"`
				Size int64  `yaml:"size"`
			} `yaml:"entries"`
		} `yaml:"tables"`
		Prefixes []model.PrefixCount `yaml:"prefixes"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &scan))
	assert.Equal(t, 4, scan.Total)
	require.Len(t, scan.Tables, 2)
	assert.Equal(t, "hash", scan.Tables[0].Type)
	assert.Equal(t, "user:2", scan.Tables[0].Entries[0].Key)
	assert.Equal(t, int64(9), scan.Tables[0].Entries[0].Size)
	assert.Equal(t, []model.PrefixCount{{Prefix: model.NoPrefix, Count: 2}, {Prefix: "user", Count: 2}}, scan.Prefixes)

	out.Reset()
	require.NoError(t, renderer.Clients([]model.ClientCount{{IP: "10.0.0.1", Count: 2}}))
	var clients ClientsDocument
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &clients))
	assert.Equal(t, []model.ClientCount{{IP: "10.0.0.1", Count: 2}}, clients.Clients)
}

func TestTextfile(t *testing.T) {
	textfile := NewTextfile("cache.local:6379")
	textfile.ObserveReport(sampleReport())
	textfile.ObserveScan(sampleScan(2))
	textfile.ObserveClients([]model.ClientCount{{IP: "10.0.0.1", Count: 3}})

	expected := `
# HELP redis_checker_worst_severity Highest severity found, 0=INFO 1=CHECK 2=WARNING 3=DANGER.
# TYPE redis_checker_worst_severity gauge
redis_checker_worst_severity{target="cache.local:6379"} 3
# HELP redis_checker_client_connections Connections per client ip.
# TYPE redis_checker_client_connections gauge
redis_checker_client_connections{ip="10.0.0.1",target="cache.local:6379"} 3
`
	require.NoError(t, testutil.GatherAndCompare(textfile.Gatherer(), strings.NewReader(expected),
		"redis_checker_worst_severity", "redis_checker_client_connections"))

	count, err := testutil.GatherAndCount(textfile.Gatherer(), "redis_checker_findings")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	path := filepath.Join(t.TempDir(), "redis_checker.prom")
	require.NoError(t, textfile.Write(path))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), `redis_checker_prefix_keys{prefix="user",target="cache.local:6379"} 2`)
	assert.Contains(t, string(written), `redis_checker_scanned_keys{outcome="failed",target="cache.local:6379"} 1`)
	assert.Contains(t, string(written), "redis_checker_last_run_timestamp_seconds")
}

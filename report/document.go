package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/inexplicable/redis_checker/model"
)

// TypeTable is the top-N of one key type
type TypeTable struct {
	Type    model.KeyType `json:"type" yaml:"type"`
	Entries []model.Entry `json:"entries" yaml:"entries"`
}

// ScanDocument is a finished scan as one document
type ScanDocument struct {
	Total    int                 `json:"total" yaml:"total"`
	Failed   int                 `json:"failed" yaml:"failed"`
	Streamed bool                `json:"streamed" yaml:"streamed"`
	Top      int                 `json:"top" yaml:"top"`
	Keys     []model.Entry       `json:"keys,omitempty" yaml:"keys,omitempty"`
	Tables   []TypeTable         `json:"tables,omitempty" yaml:"tables,omitempty"`
	Prefixes []model.PrefixCount `json:"prefixes,omitempty" yaml:"prefixes,omitempty"`
}

// ReportDocument is the rule engine output plus its worst severity
type ReportDocument struct {
	Worst    model.Severity  `json:"worst" yaml:"worst"`
	Sections []model.Section `json:"sections" yaml:"sections"`
}

// ClientsDocument is the client summary
type ClientsDocument struct {
	Clients []model.ClientCount `json:"clients" yaml:"clients"`
}

// NewScanDocument flattens a `ScanResult`, `streamed` are the entries seen in streaming mode
func NewScanDocument(result *model.ScanResult, streamed []model.Entry) ScanDocument {
	document := ScanDocument{
		Total:    result.Total,
		Failed:   result.Failed,
		Streamed: result.Streamed,
		Top:      result.TopN,
		Keys:     streamed,
	}
	if result.Streamed {
		return document
	}
	for _, keyType := range result.Tops.Types() {
		document.Tables = append(document.Tables, TypeTable{Type: keyType, Entries: result.Tops.Sorted(keyType)})
	}
	document.Prefixes = result.Prefixes.Top(result.TopN)
	return document
}

// StructuredRenderer collects what it's given and writes one document per call of
// `Report`, `Scan` or `Clients`
type StructuredRenderer struct {
	encode   func(v interface{}) error
	streamed []model.Entry
}

// NewJSONRenderer writes indented json documents
func NewJSONRenderer(w io.Writer) *StructuredRenderer {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return &StructuredRenderer{encode: encoder.Encode}
}

// NewYAMLRenderer writes yaml documents
func NewYAMLRenderer(w io.Writer) *StructuredRenderer {
	return &StructuredRenderer{encode: func(v interface{}) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}}
}

// Report writes a `ReportDocument`
func (structuredRenderer *StructuredRenderer) Report(report *model.Report) error {
	return structuredRenderer.encode(ReportDocument{Worst: report.Worst(), Sections: report.Sections})
}

// StartScan resets the collected entries
func (structuredRenderer *StructuredRenderer) StartScan(streaming bool) error {
	structuredRenderer.streamed = nil
	if streaming {
		structuredRenderer.streamed = []model.Entry{}
	}
	return nil
}

// Entry is held until `Scan`
func (structuredRenderer *StructuredRenderer) Entry(entry model.Entry) error {
	structuredRenderer.streamed = append(structuredRenderer.streamed, entry)
	return nil
}

// Scan writes a `ScanDocument`
func (structuredRenderer *StructuredRenderer) Scan(result *model.ScanResult) error {
	document := NewScanDocument(result, structuredRenderer.streamed)
	structuredRenderer.streamed = nil
	return structuredRenderer.encode(document)
}

// Clients writes a `ClientsDocument`
func (structuredRenderer *StructuredRenderer) Clients(summary []model.ClientCount) error {
	return structuredRenderer.encode(ClientsDocument{Clients: summary})
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/inexplicable/redis_checker/model"
)

var banner = strings.Repeat("=", 51)

var severityStyles = map[model.Severity]lipgloss.Style{
	model.INFO:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	model.CHECK:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	model.WARNING: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	model.DANGER:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var titleStyle = lipgloss.NewStyle().Bold(true)

// TextRenderer prints the plain text layout, optionally coloured
type TextRenderer struct {
	out   io.Writer
	color bool
	err   error
}

// NewTextRenderer creates a `TextRenderer` writing to `out`
func NewTextRenderer(out io.Writer, color bool) *TextRenderer {
	return &TextRenderer{out: out, color: color}
}

// printf keeps the first write error, later writes are dropped
func (textRenderer *TextRenderer) printf(format string, args ...interface{}) {
	if textRenderer.err != nil {
		return
	}
	_, textRenderer.err = fmt.Fprintf(textRenderer.out, format, args...)
}

func (textRenderer *TextRenderer) flush() error {
	err := textRenderer.err
	textRenderer.err = nil
	return err
}

func (textRenderer *TextRenderer) style(style lipgloss.Style, text string) string {
	if !textRenderer.color {
		return text
	}
	return style.Render(text)
}

// Report prints a banner and the title of every section, then its findings one per line
func (textRenderer *TextRenderer) Report(report *model.Report) error {
	for _, section := range report.Sections {
		textRenderer.printf("%s\n%s\n", banner, textRenderer.style(titleStyle, section.Title))
		for _, finding := range section.Findings {
			label := textRenderer.style(severityStyles[finding.Severity], finding.Severity.String())
			textRenderer.printf("%s: %s\n", label, finding.Message)
		}
	}
	if len(report.Sections) > 0 {
		textRenderer.printf("%s\n", banner)
	}
	return textRenderer.flush()
}

// StartScan prints the streaming table header
func (textRenderer *TextRenderer) StartScan(streaming bool) error {
	textRenderer.printf("%-40s %-10s %15s\n", "Key", "Type", "Size (len/num)")
	textRenderer.printf("%s\n", strings.Repeat("-", 70))
	return textRenderer.flush()
}

// Entry prints one streamed row
func (textRenderer *TextRenderer) Entry(entry model.Entry) error {
	textRenderer.printf("%-40s %-10s %15s\n", entry.Key, entry.Type, entry.Size)
	return textRenderer.flush()
}

// Scan prints the total, then in bounded mode a table per type and the prefix counts
func (textRenderer *TextRenderer) Scan(result *model.ScanResult) error {
	textRenderer.printf("%s\n", strings.Repeat("-", 70))
	textRenderer.printf("Total Keys: %d\n", result.Total)
	if result.Failed > 0 {
		textRenderer.printf("Failed Probes: %d\n", result.Failed)
	}
	if result.Streamed {
		return textRenderer.flush()
	}

	for _, keyType := range result.Tops.Types() {
		entries := result.Tops.Sorted(keyType)
		header := fmt.Sprintf("Collection : %s (Top %d)", strings.ToUpper(string(keyType)), result.TopN)
		textRenderer.printf("%s\n", textRenderer.style(titleStyle, header))
		textRenderer.printf("%-40s %10s\n", "Key", "Size")
		textRenderer.printf("%s\n", strings.Repeat("-", 60))
		for _, entry := range entries {
			textRenderer.printf("%-40s %10s\n", entry.Key, entry.Size)
		}
		textRenderer.printf("\n")
	}

	textRenderer.printf("%-20s %10s\n", "Prefix", "Count")
	textRenderer.printf("%s\n", strings.Repeat("-", 50))
	for _, prefix := range result.Prefixes.Top(result.TopN) {
		textRenderer.printf("%-20s %10d\n", prefix.Prefix, prefix.Count)
	}
	return textRenderer.flush()
}

// Clients prints one line per client ip
func (textRenderer *TextRenderer) Clients(summary []model.ClientCount) error {
	for _, client := range summary {
		textRenderer.printf("IP : %s(count: %d)\n", client.IP, client.Count)
	}
	return textRenderer.flush()
}

package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/inexplicable/redis_checker/model"
)

// ErrUnknownFormat is returned by `New` for a format it can't render
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer writes what one command found
type Renderer interface {
	// Report renders the rule engine sections
	Report(report *model.Report) error
	// StartScan is called once before the first key is probed
	StartScan(streaming bool) error
	// Entry is called for every key in streaming mode
	Entry(entry model.Entry) error
	// Scan renders the end of a scan
	Scan(result *model.ScanResult) error
	// Clients renders the client summary
	Clients(summary []model.ClientCount) error
}

// New creates the `Renderer` of `format`, text is coloured only when `w` is a terminal
func New(format string, w io.Writer) (Renderer, error) {
	switch format {
	case "", "text":
		return NewTextRenderer(w, IsTerminal(w)), nil
	case "json":
		return NewJSONRenderer(w), nil
	case "yaml":
		return NewYAMLRenderer(w), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// IsTerminal tells if `w` is an interactive terminal
func IsTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

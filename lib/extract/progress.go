package extract

import (
	"fmt"
	"io"
	"strings"
)

// Progress receives a report after every processed map.
type Progress interface {
	// Percent reports that done of total steps are finished.
	Percent(done, total int)
}

// MessageFormat selects how progress is printed.
type MessageFormat string

const (
	FormatPlain  MessageFormat = "plain"
	FormatGUI    MessageFormat = "gui"
	FormatSilent MessageFormat = "silent"
)

// ParseMessageFormat parses plain, gui or silent. "standard" is accepted as an
// alias of plain.
func ParseMessageFormat(s string) (MessageFormat, error) {
	switch strings.ToLower(s) {
	case "plain", "standard", "":
		return FormatPlain, nil
	case "gui":
		return FormatGUI, nil
	case "silent":
		return FormatSilent, nil
	default:
		return "", fmt.Errorf("invalid message format %s (expected plain, gui or silent)", s)
	}
}

// NewProgress creates a progress reporter writing to w in the given format.
func NewProgress(w io.Writer, format MessageFormat) Progress {
	switch format {
	case FormatGUI:
		return &percentWriter{w: w, gui: true, last: -1}
	case FormatSilent:
		return silent{}
	default:
		return &percentWriter{w: w, last: -1}
	}
}

// percentWriter prints a percentage whenever it changes.
// Plain output rewrites the line with \b and ends with a newline at 100%.
type percentWriter struct {
	w    io.Writer
	gui  bool
	last int
}

func (p *percentWriter) Percent(done, total int) {
	if total <= 0 {
		return
	}
	pct := done * 100 / total
	if pct == p.last {
		return
	}
	p.last = pct

	if p.gui {
		fmt.Fprintf(p.w, "GRASS_INFO_PERCENT: %d\n", pct)
		return
	}
	if pct >= 100 {
		fmt.Fprintf(p.w, "%4d%%\n", pct)
		return
	}
	fmt.Fprintf(p.w, "%4d%%\b\b\b\b\b", pct)
}

type silent struct{}

func (silent) Percent(int, int) {}

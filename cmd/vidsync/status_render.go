package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vidsync/internal/session"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset     = "\x1b[0m"
	ansiRed       = "\x1b[31m"
	ansiGreen     = "\x1b[32m"
	ansiYellow    = "\x1b[33m"
	ansiBlue      = "\x1b[34m"
	ansiClearLine = "\r\x1b[K"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressLine redraws a single status line on a terminal. It stays silent
// on anything else so piped output only carries results.
type progressLine struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	drawn   bool
	last    int
}

func newProgressLine(out io.Writer) *progressLine {
	return &progressLine{out: out, enabled: shouldColorize(out), last: -1}
}

func (p *progressLine) update(op session.Operation, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || percent == p.last {
		return
	}
	p.last = percent
	p.drawn = true
	fmt.Fprintf(p.out, "%s%s %3d%%", ansiClearLine, operationLabel(op), percent)
}

func (p *progressLine) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprint(p.out, ansiClearLine)
	}
	p.drawn = false
	p.last = -1
}

func operationLabel(op session.Operation) string {
	switch op {
	case session.OpAuto:
		return "Full comparison"
	case session.OpOffset:
		return "Offset detection"
	default:
		return cases.Title(language.Und).String(string(op)) + " comparison"
	}
}

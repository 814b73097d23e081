package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

const (
	statusLabelWidth = 16
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

// variantStatusLabel renders a variant status such as revision_requested as
// "Revision Requested", with trashed and archived flags appended.
func variantStatusLabel(status string, archived, trashed, colorize bool) string {
	label := cases.Title(language.Und).String(strings.ReplaceAll(status, "_", " "))
	switch {
	case trashed:
		label += " (trashed)"
	case archived:
		label += " (archived)"
	}
	if !colorize {
		return label
	}
	color := ansiBlue
	switch {
	case trashed || archived:
		color = ansiGray
	case status == "approved" || status == "published":
		color = ansiGreen
	case status == "review" || status == "revision_requested":
		color = ansiYellow
	case status == "rejected":
		color = ansiRed
	}
	return color + label + ansiReset
}

func sourceLabel(source, reason string) string {
	if source == "fallback" && reason != "" {
		return "fallback (" + reason + ")"
	}
	return source
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

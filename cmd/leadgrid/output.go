package main

import (
	"fmt"
	"io"
	"os"
)

// Status lines go to stderr so table and export output on stdout stays
// pipeable; msgOut is swapped out by tests.
var msgOut io.Writer = os.Stderr

// style is the ANSI prefix for one class of message.
type style string

const (
	styleNone    style = ""
	styleSuccess style = "\033[32m"
	styleFailure style = "\033[31m"
	styleWarning style = "\033[33m"
	styleStep    style = "\033[36m"
	styleLabel   style = "\033[1m"

	styleReset = "\033[0m"
)

func colorize(s style, text string) string {
	if noColor || s == styleNone {
		return text
	}
	return string(s) + text + styleReset
}

func printMsg(s style, mark, format string, args ...any) {
	fmt.Fprintln(msgOut, colorize(s, mark+" "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { printMsg(styleSuccess, "✓", format, args...) }
func printError(format string, args ...any)   { printMsg(styleFailure, "✗", format, args...) }
func printWarning(format string, args ...any) { printMsg(styleWarning, "⚠", format, args...) }
func printStep(format string, args ...any)    { printMsg(styleStep, "→", format, args...) }

// printStatus renders an indented label/value line under the current step.
func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	fmt.Fprintf(msgOut, "  %s %s\n", colorize(styleLabel, label+":"), val)
}

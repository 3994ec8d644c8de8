// Package telnet serves line-oriented Telnet sessions with ANSI styling.
package telnet

import "regexp"

// ANSI SGR sequences.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Underline = "\033[4m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text in color and a trailing Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

var sgr = regexp.MustCompile("\033\\[[0-9;]*m")

// StripANSI removes SGR sequences from s.
func StripANSI(s string) string {
	return sgr.ReplaceAllString(s, "")
}

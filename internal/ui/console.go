// Package ui renders operator-facing output: colored, line-oriented, and
// strictly separate from the structured log file.
package ui

import (
	"fmt"
	"io"
)

// ANSI escape sequences.
const (
	colorRed    = "\033[91m"
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorBlue   = "\033[94m"
	colorCyan   = "\033[96m"
	colorReset  = "\033[0m"
	styleBold   = "\033[1m"
)

// Console writes colored status lines to a single writer.
type Console struct {
	w     io.Writer
	color bool
}

// NewConsole creates a console printer. When color is requested the Windows
// virtual-terminal mode is enabled so ANSI sequences render on conhost.
func NewConsole(w io.Writer, color bool) *Console {
	if color {
		enableVirtualTerminal()
	}
	return &Console{w: w, color: color}
}

func (c *Console) printf(color string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.color && color != "" {
		fmt.Fprintf(c.w, "%s%s%s\n", color, msg, colorReset)
		return
	}
	fmt.Fprintln(c.w, msg)
}

// Success prints a green line.
func (c *Console) Successf(format string, args ...any) {
	c.printf(colorGreen, format, args...)
}

// Errorf prints a red line.
func (c *Console) Errorf(format string, args ...any) {
	c.printf(colorRed, format, args...)
}

// Warnf prints a yellow line.
func (c *Console) Warnf(format string, args ...any) {
	c.printf(colorYellow, format, args...)
}

// Infof prints a blue line.
func (c *Console) Infof(format string, args ...any) {
	c.printf(colorBlue, format, args...)
}

// Headerf prints a bold cyan line, used for section banners.
func (c *Console) Headerf(format string, args ...any) {
	c.printf(styleBold+colorCyan, format, args...)
}

// Plainf prints an uncolored line.
func (c *Console) Plainf(format string, args ...any) {
	c.printf("", format, args...)
}

// Rule prints a banner separator line.
func (c *Console) Rule() {
	c.Headerf("============================================================")
}

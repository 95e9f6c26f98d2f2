package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats diagnostics against the source text with caret markers.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for one source file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders a diagnostic in the caret style:
//
//	error[E0102]: expected type u8, found type bool
//	    --> main.veil:3:9
//	    │
//	  3 │     let x: u8 = true;
//	    │         ^
func (r *Reporter) Format(err CompilerError) string {
	var b strings.Builder

	levelColor := r.levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message)

	width := r.lineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&b, "%s %s %s:%d:%d\n",
		indent, dim("-->"), r.filename, err.Position.Line, err.Position.Column)
	fmt.Fprintf(&b, "%s %s\n", indent, dim("│"))

	if err.Position.Line > 0 && err.Position.Line <= len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, err.Position.Line)),
			dim("│"),
			r.lines[err.Position.Line-1])
		fmt.Fprintf(&b, "%s %s %s\n", indent, dim("│"), r.marker(err))
	}

	suggestionColor := color.New(color.FgCyan).SprintFunc()
	for _, suggestion := range err.Suggestions {
		fmt.Fprintf(&b, "%s %s: %s\n", indent, suggestionColor("help"), suggestion)
	}

	noteColor := color.New(color.FgBlue).SprintFunc()
	for _, note := range err.Notes {
		fmt.Fprintf(&b, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	b.WriteString("\n")
	return b.String()
}

// FormatAll renders every diagnostic in order.
func (r *Reporter) FormatAll(errs []CompilerError) string {
	var b strings.Builder
	for _, err := range errs {
		b.WriteString(r.Format(err))
	}
	return b.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (r *Reporter) marker(err CompilerError) string {
	length := err.Length
	if length <= 0 {
		length = 1
	}
	column := err.Position.Column
	if column < 1 {
		column = 1
	}
	markerColor := color.New(color.FgRed, color.Bold)
	if err.Level == Warning {
		markerColor = color.New(color.FgYellow, color.Bold)
	}
	return strings.Repeat(" ", column-1) + markerColor.Sprint(strings.Repeat("^", length))
}

func (r *Reporter) lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

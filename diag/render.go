package diag

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Diagnostic is an error message with labeled source spans and notes.
// The first label determines the location printed in the header.
type Diagnostic struct {
	Message string
	Labels  []Label
	Notes   []string
}

// New creates a diagnostic with a single label.
func New(message string, span Span, label string) Diagnostic {
	return Diagnostic{Message: message, Labels: []Label{{Span: span, Message: label}}}
}

// WithLabel appends a label and returns the diagnostic.
func (d Diagnostic) WithLabel(span Span, message string) Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Message: message})
	return d
}

// WithNote appends a note and returns the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// sourceLine is one line of the source with its byte range.
type sourceLine struct {
	start int
	text  string
}

// labelPos is a label resolved against the source lines.
type labelPos struct {
	line   int // 0-based
	column int // 1-based, in characters
	offset int // display cells before the span on its line
	width  int // display cells covered on the first line
	label  string

	// Labels covering several lines are drawn in a column left of the
	// source text. endLine is the last line covered and endOffset the
	// cells before its last character. inlineTop is set when only
	// whitespace precedes the span, so the opening corner fits on the
	// source line itself.
	multi     bool
	endLine   int
	endOffset int
	inlineTop bool
	slot      int
}

// Render formats the diagnostic against source, naming the source fileName
// in the location header.
func (d Diagnostic) Render(fileName, source string) string {
	var b strings.Builder
	b.WriteString("error: ")
	b.WriteString(d.Message)
	b.WriteByte('\n')

	lines := splitLines(source)
	positions := make([]labelPos, 0, len(d.Labels))
	var multi []int
	for _, l := range d.Labels {
		p := locate(lines, l)
		if p.multi {
			p.slot = len(multi)
			multi = append(multi, len(positions))
		}
		positions = append(positions, p)
	}

	maxLine := 0
	for _, p := range positions {
		maxLine = max(maxLine, p.endLine+1)
	}
	gutter := len(strconv.Itoa(maxLine))
	pad := strings.Repeat(" ", gutter+1)

	if len(positions) > 0 {
		first := positions[0]
		fmt.Fprintf(&b, "%s┌─ %s:%d:%d\n", pad, fileName, first.line+1, first.column)
		b.WriteString(pad)
		b.WriteString("│\n")

		r := snippet{b: &b, pad: pad, gutter: gutter, positions: positions, multi: multi}
		prev := -1
		for _, ln := range labeledLines(positions) {
			if prev >= 0 {
				switch gap := ln - prev; {
				case gap == 2:
					r.line(prev+1, lines[prev+1].text)
				case gap > 2:
					b.WriteString(pad)
					b.WriteString("·\n")
				}
			}
			r.line(ln, lines[ln].text)
			prev = ln
		}
		if len(d.Notes) > 0 {
			b.WriteString(pad)
			b.WriteString("│\n")
		}
	}

	for _, note := range d.Notes {
		b.WriteString(pad)
		b.WriteString("= note: ")
		b.WriteString(note)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// snippet writes source lines with their labels.
type snippet struct {
	b         *strings.Builder
	pad       string
	gutter    int
	positions []labelPos
	multi     []int  // indexes into positions, by slot
	columns   []bool // per slot: whether the label's bar continues on this row
}

// line writes one source line followed by the underlines of the labels
// that start or end on it.
func (r *snippet) line(ln int, text string) {
	if len(r.multi) == 0 {
		writeSourceLine(r.b, r.gutter, ln, text)
		for _, p := range r.positions {
			if p.line == ln {
				r.caretRow(p)
			}
		}
		return
	}

	var row strings.Builder
	fmt.Fprintf(&row, "%*d │ ", r.gutter, ln+1)
	for _, i := range r.multi {
		p := r.positions[i]
		switch {
		case ln == p.line && p.inlineTop:
			row.WriteString("╭ ")
		case ln > p.line && ln <= p.endLine:
			row.WriteString("│ ")
		default:
			row.WriteString("  ")
		}
	}
	row.WriteString(text)
	r.b.WriteString(strings.TrimRight(row.String(), " "))
	r.b.WriteByte('\n')

	r.columns = r.columns[:0]
	for _, i := range r.multi {
		p := r.positions[i]
		open := (ln > p.line && ln <= p.endLine) || (ln == p.line && p.inlineTop)
		r.columns = append(r.columns, open)
	}

	for _, p := range r.positions {
		if !p.multi && p.line == ln {
			r.caretRow(p)
		}
	}
	for _, i := range r.multi {
		if p := r.positions[i]; p.line == ln && !p.inlineTop {
			r.cornerRow(p.slot, "╭", p.offset, "")
			r.columns[p.slot] = true
		}
	}
	for _, i := range r.multi {
		if p := r.positions[i]; p.endLine == ln {
			r.cornerRow(p.slot, "╰", p.endOffset, p.label)
			r.columns[p.slot] = false
		}
	}
}

// caretRow underlines a single-line label.
func (r *snippet) caretRow(p labelPos) {
	r.b.WriteString(r.pad)
	r.b.WriteString("│ ")
	r.writeColumns(len(r.columns))
	r.b.WriteString(strings.Repeat(" ", p.offset))
	r.b.WriteString(strings.Repeat("^", p.width))
	if p.label != "" {
		r.b.WriteByte(' ')
		r.b.WriteString(p.label)
	}
	r.b.WriteByte('\n')
}

// cornerRow draws the opening or closing corner of a multi-line label in
// its column, with a rule running right to a caret offset cells into the
// source text.
func (r *snippet) cornerRow(slot int, corner string, offset int, label string) {
	r.b.WriteString(r.pad)
	r.b.WriteString("│ ")
	r.writeColumns(slot)
	r.b.WriteString(corner)
	r.b.WriteString(strings.Repeat("─", 2*(len(r.multi)-slot)-1+offset))
	r.b.WriteByte('^')
	if label != "" {
		r.b.WriteByte(' ')
		r.b.WriteString(label)
	}
	r.b.WriteByte('\n')
}

func (r *snippet) writeColumns(n int) {
	for _, open := range r.columns[:n] {
		if open {
			r.b.WriteString("│ ")
		} else {
			r.b.WriteString("  ")
		}
	}
}

func writeSourceLine(b *strings.Builder, gutter, line int, text string) {
	fmt.Fprintf(b, "%*d │", gutter, line+1)
	if text != "" {
		b.WriteByte(' ')
		b.WriteString(text)
	}
	b.WriteByte('\n')
}

func splitLines(source string) []sourceLine {
	var lines []sourceLine
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lines = append(lines, sourceLine{start: start, text: strings.TrimSuffix(source[start:i], "\r")})
			start = i + 1
		}
	}
	lines = append(lines, sourceLine{start: start, text: source[start:]})
	return lines
}

func locate(lines []sourceLine, l Label) labelPos {
	idx := lineIndex(lines, l.Span.Start)
	line := lines[idx]
	startInLine := clamp(l.Span.Start-line.start, len(line.text))
	endInLine := clamp(l.Span.End-line.start, len(line.text))
	if endInLine < startInLine {
		endInLine = startInLine
	}

	prefix := line.text[:startInLine]
	width := runewidth.StringWidth(line.text[startInLine:endInLine])
	if width == 0 {
		width = 1
	}
	p := labelPos{
		line:    idx,
		column:  len([]rune(prefix)) + 1,
		offset:  runewidth.StringWidth(prefix),
		width:   width,
		label:   l.Message,
		endLine: idx,
	}

	if l.Span.End-1 > l.Span.Start {
		last := lineIndex(lines, l.Span.End-1)
		if last > idx {
			end := lines[last]
			lastInLine := clamp(l.Span.End-1-end.start, len(end.text))
			p.multi = true
			p.endLine = last
			p.endOffset = runewidth.StringWidth(end.text[:lastInLine])
			p.inlineTop = strings.TrimSpace(prefix) == ""
		}
	}
	return p
}

// lineIndex returns the line holding byte offset, clamped to the source.
func lineIndex(lines []sourceLine, offset int) int {
	idx := sort.Search(len(lines), func(i int) bool { return lines[i].start > offset }) - 1
	return max(idx, 0)
}

// labeledLines returns the lines to print in ascending order: every line
// carrying a label, and every line inside a multi-line label.
func labeledLines(positions []labelPos) []int {
	seen := make(map[int]bool, len(positions))
	var out []int
	for _, p := range positions {
		for ln := p.line; ln <= p.endLine; ln++ {
			if !seen[ln] {
				seen[ln] = true
				out = append(out, ln)
			}
		}
	}
	sort.Ints(out)
	return out
}

// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/djsfmt/djs"
)

// WriterOptions configures a Writer. The zero value is a ready-to-use
// non-strict (DJS) writer; DefaultJSONOptions returns the strict JSON
// settings, and DefaultDJSOptions a more permissive set of defaults for
// DJS output.
type WriterOptions struct {
	// Strict forces RFC 8259 JSON output: double-quoted strings and
	// keys, braces and brackets always present, members always comma
	// separated, and all comments dropped. OmitRootBraces, OmitQuotes,
	// and comment emission have no effect when Strict is true.
	Strict bool

	// Condense selects the "unformatted" strict-JSON rendering: a single
	// compact line with no indentation or interior spacing. Has no effect
	// unless Strict is also set; the default strict rendering is the
	// pretty, Indent-driven multi-line form.
	Condense bool

	Indent string // per-level indent string; "" defaults to two spaces

	AllowCondense  bool // with SmartSpacing: join a sibling with LinesAbove == 0 onto the previous one's line
	MaxSpacing     int  // cap on consecutive preserved blank lines
	MinSpacing     int  // floor on consecutive blank lines between non-condensed siblings
	DefaultSpacing int  // blank lines used when LinesAbove == -1 ("auto")
	SmartSpacing   bool // with AllowCondense: join only boring siblings with no comment between them

	OmitRootBraces bool // DJS only: write a non-empty open-root object without "{" "}"
	OmitQuotes     bool // DJS only: prefer unquoted keys when legal

	Newline string // line terminator; "" defaults to "\n"
	EOL     string // separator written before an EOL comment; "" defaults to " "
}

// DefaultJSONOptions returns the options used by WriteJSON: pretty,
// 2-space-indented strict JSON.
func DefaultJSONOptions() WriterOptions {
	return WriterOptions{Strict: true, Indent: "  ", Newline: "\n", EOL: " "}
}

// CondensedJSONOptions returns the "unformatted" strict-JSON rendering: a
// single compact line, no indentation, used by WriteJSONCondensed.
func CondensedJSONOptions() WriterOptions {
	return WriterOptions{Strict: true, Condense: true, Newline: "\n", EOL: " "}
}

// DefaultDJSOptions returns a reasonable default configuration for DJS
// output: condensed boring siblings, unquoted keys where legal, and
// comments preserved, with no root-brace omission (callers that want an
// open-root rendering set OmitRootBraces explicitly).
func DefaultDJSOptions() WriterOptions {
	return WriterOptions{
		Indent:         "  ",
		AllowCondense:  true,
		MaxSpacing:     1,
		DefaultSpacing: 0,
		OmitQuotes:     true,
		Newline:        "\n",
		EOL:            " ",
	}
}

func (o WriterOptions) indent() string {
	if o.Indent == "" {
		return "  "
	}
	return o.Indent
}

func (o WriterOptions) newline() string {
	if o.Newline == "" {
		return "\n"
	}
	return o.Newline
}

func (o WriterOptions) eol() string {
	if o.EOL == "" {
		return " "
	}
	return o.EOL
}

func (o WriterOptions) spacing(linesAbove int) int {
	n := linesAbove
	if n < 0 {
		n = o.DefaultSpacing
	}
	if o.MaxSpacing > 0 && n > o.MaxSpacing {
		n = o.MaxSpacing
	}
	if n < o.MinSpacing {
		n = o.MinSpacing
	}
	return n
}

// A Writer renders a Value tree as JSON or DJS text, according to its
// Options.
type Writer struct {
	Options WriterOptions
}

// NewWriter constructs a Writer with the given options.
func NewWriter(opts WriterOptions) *Writer { return &Writer{Options: opts} }

// WriteJSON renders v as pretty, indented strict JSON to out.
func WriteJSON(out io.Writer, v Value) error {
	return NewWriter(DefaultJSONOptions()).Write(out, v)
}

// WriteJSONCondensed renders v as compact, single-line strict JSON to out.
func WriteJSONCondensed(out io.Writer, v Value) error {
	return NewWriter(CondensedJSONOptions()).Write(out, v)
}

// WriteDJS renders v as DJS to out, using opts.
func WriteDJS(out io.Writer, v Value, opts WriterOptions) error {
	return NewWriter(opts).Write(out, v)
}

// Write renders v to out.
func (w *Writer) Write(out io.Writer, v Value) error {
	bw := bufio.NewWriter(out)
	w.writeValue(bw, v, 0, true, true)
	if !w.Options.Strict {
		switch v.(type) {
		case *Object, *Array:
			// Object and Array render their own Footer comments before
			// their closing delimiter (or, for an open root, after the
			// last member) in writeObject/writeArray.
		default:
			if fc := v.Comments().Get(Footer); len(fc) != 0 {
				io.WriteString(bw, w.options().newline())
				w.writeComments(bw, fc, "", false)
			}
		}
	}
	return bw.Flush()
}

func (w *Writer) options() WriterOptions { return w.Options }

// writeValue writes v at the given indent level. atRoot marks the
// document root (for OmitRootBraces); withLineComment controls whether
// v's own EOL comment is rendered by this call (the caller suppresses
// it when it will render the comment itself, e.g. outside a comma).
func (w *Writer) writeValue(bw *bufio.Writer, v Value, level int, atRoot, withLineComment bool) {
	o := w.options()
	if !o.Strict {
		if hc := v.Comments().Get(Header); len(hc) != 0 {
			w.writeComments(bw, hc, w.pad(level), true)
		}
	}
	switch t := v.(type) {
	case *Null:
		io.WriteString(bw, "null")
	case *Bool:
		io.WriteString(bw, strconv.FormatBool(t.Val))
	case *Number:
		io.WriteString(bw, w.renderNumber(t))
	case *String:
		io.WriteString(bw, w.renderString(t.Val, t.Flavor))
	case *Array:
		w.writeArray(bw, t, level, false)
	case *Object:
		w.writeObject(bw, t, level, atRoot)
	default:
		panic(fmt.Sprintf("dom: Write: unhandled value type %T", v))
	}
	if !o.Strict && withLineComment {
		if ec := v.Comments().Get(EOL); len(ec) != 0 {
			io.WriteString(bw, o.eol())
			io.WriteString(bw, w.renderInlineComment(ec[0]))
		}
	}
}

func (w *Writer) pad(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(w.options().indent(), level)
}

func (w *Writer) renderNumber(n *Number) string {
	if n.IsInfinity {
		if n.Val < 0 {
			return "-infinity"
		}
		return "infinity"
	}
	if n.Source != "" {
		return n.Source
	}
	return n.String()
}

var implicitKeyRe = regexp.MustCompile(`^[A-Za-z0-9_$]+$`)

// renderKey selects the key's surface form: implicit (unquoted) when
// OmitQuotes is set and the text is a legal bare word, otherwise a
// double-quoted string.
func (w *Writer) renderKey(k Key) string {
	o := w.options()
	if !o.Strict && o.OmitQuotes && implicitKeyRe.MatchString(k.Text) {
		return k.Text
	}
	return w.renderString(k.Text, DoubleQuoted)
}

// DoubleQuoted re-exports djs.DoubleQuoted for callers that build a Key
// or String by hand without importing djs directly.
const DoubleQuoted = djs.DoubleQuoted

// renderString selects and applies a quoting flavor for text. Strict
// mode always double-quotes; otherwise the preferred flavor is kept if
// it is still legal, and recomputed (per the selection rule: '\n' picks
// multi, a literal "'" picks double, else single) when it is not.
func (w *Writer) renderString(text string, flavor djs.StringFlavor) string {
	if w.options().Strict {
		return djs.Quote(text)
	}
	if !flavorStillLegal(text, flavor) {
		flavor = bestFlavorFor(text)
	}
	switch flavor {
	case djs.MultiQuoted:
		return "'''\n" + text + "\n'''"
	case djs.SingleQuoted:
		return "'" + text + "'"
	case djs.BacktickQuoted:
		return "`" + text + "`"
	default:
		return djs.Quote(text)
	}
}

func flavorStillLegal(text string, flavor djs.StringFlavor) bool {
	switch flavor {
	case djs.SingleQuoted:
		return !strings.Contains(text, "'") && !strings.Contains(text, "\n")
	case djs.MultiQuoted:
		return true
	case djs.DoubleQuoted, djs.ImplicitString, djs.NoFlavor:
		return true
	default:
		return true
	}
}

func bestFlavorFor(text string) djs.StringFlavor {
	switch {
	case strings.Contains(text, "\n"):
		return djs.MultiQuoted
	case strings.Contains(text, "'"):
		return djs.DoubleQuoted
	default:
		return djs.SingleQuoted
	}
}

func (w *Writer) writeArray(bw *bufio.Writer, a *Array, level int, _ bool) {
	o := w.options()
	if len(a.Elements) == 0 && len(a.Comments().Get(Interior)) == 0 {
		io.WriteString(bw, "[]")
		return
	}
	if o.Strict {
		if o.Condense {
			io.WriteString(bw, "[")
			for i, e := range a.Elements {
				if i > 0 {
					io.WriteString(bw, ",")
				}
				w.writeValue(bw, e, level, false, false)
			}
			io.WriteString(bw, "]")
			return
		}
		nl := o.newline()
		inner := level + 1
		io.WriteString(bw, "["+nl)
		for i, e := range a.Elements {
			io.WriteString(bw, w.pad(inner))
			w.writeValue(bw, e, inner, false, false)
			if i < len(a.Elements)-1 {
				io.WriteString(bw, ",")
			}
			io.WriteString(bw, nl)
		}
		io.WriteString(bw, w.pad(level)+"]")
		return
	}
	if w.isBoringArray(a) {
		io.WriteString(bw, "[")
		for i, e := range a.Elements {
			if i > 0 {
				io.WriteString(bw, ", ")
			}
			w.writeValue(bw, e, level, false, false)
		}
		io.WriteString(bw, "]")
		return
	}
	nl := o.newline()
	io.WriteString(bw, "["+nl)
	inner := level + 1
	for i, e := range a.Elements {
		condensed := i > 0 && w.canCondense(e.Format().LinesAbove, a.Elements[i-1], e)
		if i > 0 {
			if condensed {
				io.WriteString(bw, " ")
			} else {
				w.writeBlankLines(bw, o.spacing(e.Format().LinesAbove))
				io.WriteString(bw, w.pad(inner))
			}
		} else {
			io.WriteString(bw, w.pad(inner))
		}
		w.writeValue(bw, e, inner, false, false)
		if i < len(a.Elements)-1 {
			io.WriteString(bw, ",")
		}
		if ec := e.Comments().Get(EOL); len(ec) != 0 {
			io.WriteString(bw, o.eol())
			io.WriteString(bw, w.renderInlineComment(ec[0]))
		}
		if i == len(a.Elements)-1 || !w.canCondense(a.Elements[i+1].Format().LinesAbove, e, a.Elements[i+1]) {
			io.WriteString(bw, nl)
		}
	}
	if ic := a.Comments().Get(Interior); len(ic) != 0 {
		w.writeComments(bw, ic, w.pad(inner), false)
	}
	if fc := a.Comments().Get(Footer); len(fc) != 0 {
		w.writeComments(bw, fc, w.pad(inner), false)
	}
	io.WriteString(bw, w.pad(level)+"]")
}

func (w *Writer) writeObject(bw *bufio.Writer, obj *Object, level int, atRoot bool) {
	o := w.options()
	omitBraces := !o.Strict && atRoot && o.OmitRootBraces && obj.OpenRoot && len(obj.Members) > 0
	if len(obj.Members) == 0 && len(obj.Comments().Get(Interior)) == 0 {
		if omitBraces {
			return
		}
		io.WriteString(bw, "{}")
		return
	}
	if o.Strict {
		if o.Condense {
			io.WriteString(bw, "{")
			for i, m := range obj.Members {
				if i > 0 {
					io.WriteString(bw, ",")
				}
				io.WriteString(bw, w.renderKey(m.Key)+":")
				w.writeValue(bw, m.Value, level, false, false)
			}
			io.WriteString(bw, "}")
			return
		}
		nl := o.newline()
		inner := level + 1
		io.WriteString(bw, "{"+nl)
		for i, m := range obj.Members {
			io.WriteString(bw, w.pad(inner))
			io.WriteString(bw, w.renderKey(m.Key)+": ")
			w.writeValue(bw, m.Value, inner, false, false)
			if i < len(obj.Members)-1 {
				io.WriteString(bw, ",")
			}
			io.WriteString(bw, nl)
		}
		io.WriteString(bw, w.pad(level)+"}")
		return
	}
	if !omitBraces && w.isBoringObject(obj) {
		io.WriteString(bw, "{")
		for i, m := range obj.Members {
			if i > 0 {
				io.WriteString(bw, ", ")
			}
			io.WriteString(bw, w.renderKey(m.Key)+": ")
			w.writeValue(bw, m.Value, level, false, false)
		}
		io.WriteString(bw, "}")
		return
	}
	nl := o.newline()
	inner := level
	if !omitBraces {
		io.WriteString(bw, "{"+nl)
		inner = level + 1
	}
	for i, m := range obj.Members {
		condensed := i > 0 && w.canCondense(m.Format().LinesAbove, obj.Members[i-1], m)
		if i > 0 {
			if condensed {
				io.WriteString(bw, " ")
			} else {
				w.writeBlankLines(bw, o.spacing(m.Format().LinesAbove))
				if hc := m.Comments().Get(Header); len(hc) != 0 {
					w.writeComments(bw, hc, w.pad(inner), true)
				}
				io.WriteString(bw, w.pad(inner))
			}
		} else {
			if hc := m.Comments().Get(Header); len(hc) != 0 {
				w.writeComments(bw, hc, w.pad(inner), true)
			}
			io.WriteString(bw, w.pad(inner))
		}
		io.WriteString(bw, w.renderKey(m.Key))
		io.WriteString(bw, ":")
		if vc := m.Comments().Get(ValueComment); len(vc) != 0 {
			io.WriteString(bw, nl)
			w.writeComments(bw, vc, w.pad(inner+1), true)
			io.WriteString(bw, w.pad(inner+1))
			w.writeValue(bw, m.Value, inner+1, false, false)
		} else {
			io.WriteString(bw, " ")
			w.writeValue(bw, m.Value, inner, false, false)
		}
		if !omitBraces && i < len(obj.Members)-1 {
			io.WriteString(bw, ",")
		}
		if ec := m.Comments().Get(EOL); len(ec) != 0 {
			io.WriteString(bw, o.eol())
			io.WriteString(bw, w.renderInlineComment(ec[0]))
		}
		if i == len(obj.Members)-1 || !w.canCondense(obj.Members[i+1].Format().LinesAbove, m, obj.Members[i+1]) {
			io.WriteString(bw, nl)
		}
	}
	if ic := obj.Comments().Get(Interior); len(ic) != 0 {
		w.writeComments(bw, ic, w.pad(inner), false)
	}
	if fc := obj.Comments().Get(Footer); len(fc) != 0 {
		w.writeComments(bw, fc, w.pad(inner), false)
	}
	if !omitBraces {
		io.WriteString(bw, w.pad(level)+"}")
	}
}

// canCondense reports whether cur may be joined onto the same line as
// prev with a ", " separator instead of starting a new line, per
// SmartSpacing: both must be boring and flush (no intervening blank
// line), and neither may carry a header or EOL comment that would
// otherwise need its own line.
func (w *Writer) canCondense(linesAbove int, prev, cur Value) bool {
	o := w.options()
	return o.SmartSpacing && o.AllowCondense && linesAbove == 0 &&
		len(cur.Comments().Get(Header)) == 0 &&
		len(prev.Comments().Get(EOL)) == 0 &&
		w.isBoringValue(prev) && w.isBoringValue(cur)
}

func (w *Writer) writeBlankLines(bw *bufio.Writer, n int) {
	nl := w.options().newline()
	for i := 0; i < n; i++ {
		io.WriteString(bw, nl)
	}
}

// isBoringArray/isBoringObject report whether a container is simple
// enough to render on a single line: no interior or end-of-container
// comments, and every child free of its own header/EOL comments.
func (w *Writer) isBoringArray(a *Array) bool {
	if len(a.Comments().Get(Interior)) != 0 || len(a.Comments().Get(Footer)) != 0 {
		return false
	}
	for _, e := range a.Elements {
		if !w.isBoringValue(e) {
			return false
		}
	}
	return true
}

func (w *Writer) isBoringObject(o *Object) bool {
	if len(o.Comments().Get(Interior)) != 0 || len(o.Comments().Get(Footer)) != 0 {
		return false
	}
	for _, m := range o.Members {
		if len(m.Comments().Get(Header)) != 0 || len(m.Comments().Get(EOL)) != 0 ||
			len(m.Comments().Get(ValueComment)) != 0 || !w.isBoringValue(m.Value) {
			return false
		}
	}
	return true
}

func (w *Writer) isBoringValue(v Value) bool {
	if len(v.Comments().Get(Header)) != 0 || len(v.Comments().Get(EOL)) != 0 {
		return false
	}
	switch t := v.(type) {
	case *Array:
		return w.isBoringArray(t)
	case *Object:
		return w.isBoringObject(t)
	case *Member:
		return len(t.Comments().Get(ValueComment)) == 0 && w.isBoringValue(t.Value)
	default:
		return true
	}
}

// renderInlineComment renders a single comment as it appears at an EOL
// position: never multi-line, so no re-indentation is needed.
func (w *Writer) renderInlineComment(c Comment) string {
	if c.Style == djs.BlockStyle {
		return "/* " + c.Text + " */"
	}
	return commentMarker(c.Style) + c.Text
}

// writeComments renders a run of comments, one per line (except a lone
// block comment, which may be inlined when inlineOK is set), indented
// by indent and re-wrapped the way a multi-line block comment's
// interior lines are realigned when its indent level changes.
func (w *Writer) writeComments(bw *bufio.Writer, cs []Comment, indent string, inlineOK bool) {
	nl := w.options().newline()
	if inlineOK && len(cs) == 1 && cs[0].Style == djs.BlockStyle && !strings.Contains(cs[0].Text, "\n") {
		fmt.Fprintf(bw, "%s/* %s */ ", indent, strings.TrimSpace(cs[0].Text))
		return
	}
	for _, c := range cs {
		fmt.Fprint(bw, renderComment(c, indent))
		io.WriteString(bw, nl)
		for i := 0; i < c.BlankAfter; i++ {
			io.WriteString(bw, nl)
		}
	}
}

func commentMarker(style djs.CommentStyle) string {
	switch style {
	case djs.HashStyle:
		return "# "
	case djs.BlockStyle:
		return "/* "
	default:
		return "// "
	}
}

// renderComment renders a single comment, indented by indent, using
// outdentCommentLines to realign a multi-line block comment's interior
// lines to the new indent instead of reproducing their original one.
func renderComment(c Comment, indent string) string {
	switch c.Style {
	case djs.HashStyle:
		return indent + "# " + strings.TrimSpace(c.Text)
	case djs.LineStyle:
		return indent + "// " + strings.TrimSpace(c.Text)
	case djs.BlockStyle:
		if !strings.Contains(c.Text, "\n") {
			return indent + "/* " + strings.TrimSpace(c.Text) + " */"
		}
		lines := strings.Split(c.Text, "\n")
		outdentCommentLines(lines)
		all := make([]string, 0, len(lines)+2)
		all = append(all, indent+"/*")
		for _, ln := range lines {
			all = append(all, indent+" "+ln)
		}
		all = append(all, indent+"*/")
		return strings.Join(all, "\n")
	default:
		return indent + "// " + strings.TrimSpace(c.Text)
	}
}

// outdentCommentLines removes the shortest common leading-whitespace
// prefix from lines[1:] (the first line is assumed already flush) and
// trims trailing whitespace from every line, so a block comment
// re-written at a different indent level doesn't carry its old one.
func outdentCommentLines(lines []string) {
	pfx := -1
	for _, line := range lines[1:] {
		n := 0
		for _, c := range line {
			if c != ' ' && c != '\t' {
				break
			}
			n++
		}
		if pfx == -1 || n < pfx {
			pfx = n
		}
	}
	if pfx < 0 {
		pfx = 0
	}
	lines[0] = strings.TrimRight(lines[0], " \t\r")
	for i, line := range lines[1:] {
		if pfx <= len(line) {
			line = line[pfx:]
		}
		lines[i+1] = strings.TrimRight(line, " \t\r")
	}
}

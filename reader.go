// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package djs

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/djsfmt/djs/internal/escape"
	"go4.org/mem"
)

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// endOfText is the sentinel rune value reported by Current when the input is
// exhausted.
const endOfText rune = -1

// A Reader is a forward character cursor over a source, tracking line and
// column position and supporting a "capture" (a copy, recorded as it is
// consumed) of the substring consumed between two points in the input.
//
// A Reader holds exactly one rune of implicit lookahead: after a
// construction or a call to Advance, Current reports the next unconsumed
// rune (or the end-of-text sentinel).
type Reader struct {
	r *bufio.Reader

	current rune // the rune at the read cursor, or endOfText
	index   int  // byte offset of current, 0-based
	line    int  // 1-based line of current
	column  int  // 0-based column of current within its line

	linesSkipped int // lines consumed by the most recent SkipWhitespace

	capturing bool
	capBuf    bytes.Buffer

	tbuf [][]byte // allocation arena for EndCapture results
	err  error    // sticky I/O error, distinct from a syntax error
}

// NewReader constructs a Reader that consumes input from r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	rd := &Reader{r: br, line: 1}
	rd.advance() // prime the lookahead rune
	return rd
}

// NewReaderFromString constructs a Reader over s without an intervening
// allocation for the underlying buffer.
func NewReaderFromString(s string) *Reader { return NewReader(strings.NewReader(s)) }

// Current returns the rune at the read cursor, or the end-of-text sentinel.
func (r *Reader) Current() rune { return r.current }

// IsEndOfText reports whether the read cursor is at the end of the input.
func (r *Reader) IsEndOfText() bool { return r.current == endOfText }

// Index reports the 0-based byte offset of Current.
func (r *Reader) Index() int { return r.index }

// Line reports the 1-based line number of Current.
func (r *Reader) Line() int { return r.line }

// Column reports the 0-based column offset of Current within its line.
func (r *Reader) Column() int { return r.column }

// LinesSkipped reports the number of newlines consumed by the most recent
// call to SkipWhitespace.
func (r *Reader) LinesSkipped() int { return r.linesSkipped }

// Pos returns the current line and column as a LineCol.
func (r *Reader) Pos() LineCol { return LineCol{Line: r.line, Column: r.column} }

// advance consumes the current rune and loads the next one, updating
// index/line/column to describe the position of the new current. It returns
// false at end of input or on an I/O error (see Err).
func (r *Reader) advance() bool {
	if r.capturing && r.current != endOfText {
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r.current)
		r.capBuf.Write(buf[:n])
	}
	ch, _, err := r.r.ReadRune()
	if err != nil {
		r.current = endOfText
		if err != io.EOF {
			r.err = err
		}
		return false
	}
	if r.current != endOfText {
		r.index += utf8.RuneLen(r.current)
		if r.current == '\n' {
			r.line++
			r.column = 0
		} else {
			r.column += utf8.RuneLen(r.current)
		}
	}
	r.current = ch
	return true
}

// Advance consumes the current rune and reports whether another rune is now
// available. It is the fundamental read() primitive; callers that need to
// classify-then-consume use IsDigit/ReadIf/etc. instead.
func (r *Reader) Advance() bool { return r.advance() }

// Err returns the first I/O error (other than io.EOF) observed by r.
func (r *Reader) Err() error { return r.err }

// IsDigit reports whether Current is an ASCII digit.
func (r *Reader) IsDigit() bool { return isDigitRune(r.current) }

func isDigitRune(ch rune) bool { return ch >= '0' && ch <= '9' }

// ReadDigit consumes Current if it is an ASCII digit, returning its numeric
// value and true; otherwise it reports (0, false) without consuming.
func (r *Reader) ReadDigit() (int, bool) {
	if !r.IsDigit() {
		return 0, false
	}
	d := int(r.current - '0')
	r.advance()
	return d, true
}

// ReadAllDigits consumes a (possibly empty) run of ASCII digits, returning
// the count consumed.
func (r *Reader) ReadAllDigits() int {
	n := 0
	for r.IsDigit() {
		r.advance()
		n++
	}
	return n
}

// ReadIf consumes Current and returns true if it equals c; otherwise it
// leaves the cursor untouched and returns false.
func (r *Reader) ReadIf(c rune) bool {
	if r.current != c {
		return false
	}
	r.advance()
	return true
}

// Expect consumes c from the input, or reports a syntax error citing the
// current position.
func (r *Reader) Expect(c rune) error {
	if !r.ReadIf(c) {
		return r.Expected(quoteRune(c))
	}
	return nil
}

// SkipWhitespace consumes spaces, tabs, and carriage returns, and (if
// countLines is true) newlines as well. LinesSkipped reports the number of
// newlines consumed by this call once it returns.
func (r *Reader) SkipWhitespace(countLines bool) {
	r.linesSkipped = 0
	for {
		switch r.current {
		case ' ', '\t', '\r':
			r.advance()
		case '\n':
			if !countLines {
				return
			}
			r.linesSkipped++
			r.advance()
		default:
			return
		}
	}
}

// SkipLineWhitespace consumes spaces, tabs, and carriage returns, stopping
// at (without consuming) a newline or any other non-whitespace rune.
func (r *Reader) SkipLineWhitespace() {
	for r.current == ' ' || r.current == '\t' || r.current == '\r' {
		r.advance()
	}
}

// StartCapture begins recording the text consumed by subsequent calls that
// advance the cursor. A previously pending capture, if any, is discarded.
func (r *Reader) StartCapture() {
	r.capBuf.Reset()
	r.capturing = true
}

// EndCapture stops recording and returns the text consumed since the
// matching StartCapture, as a freshly-copied, arena-batched string.
func (r *Reader) EndCapture() string {
	r.capturing = false
	return string(r.copyOf(r.capBuf.Bytes()))
}

// InvalidateCapture stops recording and discards the accumulated text.
func (r *Reader) InvalidateCapture() {
	r.capturing = false
	r.capBuf.Reset()
}

// ReadQuoted consumes a q-quoted string, where q is '\'' or '"'. The opening
// quote must already have been consumed by the caller; ReadQuoted consumes
// through (and including) the matching closing quote and returns the
// unescaped content. JSON escapes (\", \\, \/, \b, \f, \n, \r, \t, \uXXXX)
// are interpreted; any other use of backslash is an error.
func (r *Reader) ReadQuoted(q rune) (string, error) {
	var raw bytes.Buffer
	for {
		if r.IsEndOfText() {
			return "", r.Unexpected("end of text in quoted string")
		}
		ch := r.current
		if ch == q {
			r.advance()
			break
		}
		if ch == '\\' {
			raw.WriteRune(ch)
			r.advance()
			if r.IsEndOfText() {
				return "", r.Unexpected("end of text in escape sequence")
			}
			if !strings.ContainsRune(`"\/bfnrtu`, r.current) {
				return "", r.Unexpected("invalid escape " + quoteText(`\`+string(r.current)))
			}
			raw.WriteRune(r.current)
			if r.current == 'u' {
				r.advance()
				for i := 0; i < 4; i++ {
					if !isHexDigitRune(r.current) {
						return "", r.Unexpected("invalid Unicode escape")
					}
					raw.WriteRune(r.current)
					r.advance()
				}
				continue
			}
			r.advance()
			continue
		}
		if ch < ' ' {
			return "", r.Unexpected("unescaped control character in string")
		}
		raw.WriteRune(ch)
		r.advance()
	}
	dec, err := escape.Unquote(mem.B(raw.Bytes()))
	if err != nil {
		return "", r.Unexpected(err.Error())
	}
	return string(dec), nil
}

func isHexDigitRune(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// ReadMulti consumes a triple-single-quoted multiline string. The opening
// ''' must already have been consumed; ReadMulti reads lines until the
// closing '''. The minimum leading-whitespace prefix shared by all non-empty
// interior lines is stripped from every line, and a single trailing newline
// immediately before the closer is trimmed. An empty body yields "".
//
// If strict is true, a body that mixes tabs and spaces in its shared indent
// prefix, or whose lines indent with a tab where others use a space, is
// rejected; otherwise the prefix is computed byte-for-byte without regard
// to which whitespace character it contains.
func (r *Reader) ReadMulti(strict bool) (string, error) {
	var lines []string
	var cur bytes.Buffer
	quotes := 0
	for {
		if r.IsEndOfText() {
			return "", r.Unexpected("end of text in multi-line string")
		}
		ch := r.current
		if ch == '\'' {
			quotes++
			if quotes == 3 {
				r.advance()
				break
			}
			r.advance()
			continue
		}
		for quotes > 0 {
			cur.WriteByte('\'')
			quotes--
		}
		if ch == '\n' {
			lines = append(lines, cur.String())
			cur.Reset()
			r.advance()
			continue
		}
		cur.WriteRune(ch)
		r.advance()
	}
	lines = append(lines, cur.String())

	// A body that opens with a newline right after ''' (the normal case)
	// produces a spurious empty first line; drop it so the string starts
	// at the first real line of content instead of with "\n".
	if len(lines) > 1 && lines[0] == "" {
		lines = lines[1:]
	}

	prefix, err := commonIndentPrefix(lines, strict)
	if err != nil {
		return "", r.Unexpected(err.Error())
	}
	for i, ln := range lines {
		if len(ln) == 0 {
			continue
		}
		lines[i] = ln[min(len(prefix), len(ln)):]
	}
	body := strings.Join(lines, "\n")
	return strings.TrimSuffix(body, "\n"), nil
}

// commonIndentPrefix returns the shortest leading run of whitespace shared by
// every non-empty line.
func commonIndentPrefix(lines []string, strict bool) (string, error) {
	var prefix string
	have := false
	for _, ln := range lines {
		if len(strings.TrimRight(ln, " \t\r")) == 0 {
			continue // blank line doesn't constrain the prefix
		}
		p := leadingWhitespace(ln)
		if !have {
			prefix, have = p, true
			continue
		}
		n := min(len(p), len(prefix))
		p, prefix = p[:n], prefix[:n]
		if p != prefix {
			// Divergent indentation: a tab in one line where another has a
			// space. Fall back to the common byte prefix.
			if strict {
				return "", errMixedIndent
			}
			i := 0
			for i < n && p[i] == prefix[i] {
				i++
			}
			prefix = prefix[:i]
		}
	}
	if strict {
		hasTab, hasSpace := false, false
		for _, c := range prefix {
			if c == '\t' {
				hasTab = true
			} else if c == ' ' {
				hasSpace = true
			}
		}
		if hasTab && hasSpace {
			return "", errMixedIndent
		}
	}
	return prefix, nil
}

var errMixedIndent = simpleError("multi-line string mixes tabs and spaces in its shared indent")

type simpleError string

func (e simpleError) Error() string { return string(e) }

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

// ReadLineComment consumes a "//"-style comment. The leading "//" must
// already have been consumed; ReadLineComment reads up to (but not
// including) the terminating newline, or end of input, stripping a single
// leading space if present.
func (r *Reader) ReadLineComment() string { return r.readToLineEnd() }

// ReadHashComment consumes a "#"-style comment. The leading "#" must already
// have been consumed; behavior otherwise matches ReadLineComment.
func (r *Reader) ReadHashComment() string { return r.readToLineEnd() }

func (r *Reader) readToLineEnd() string {
	r.ReadIf(' ')
	r.StartCapture()
	for r.current != '\n' && !r.IsEndOfText() {
		r.advance()
	}
	return r.EndCapture()
}

// ReadBlockComment consumes a "/*"-style comment. The leading "/*" must
// already have been consumed; ReadBlockComment reads through the
// terminating "*/", stripping a conventional leading "*" prefix from
// interior lines of a multi-line block.
func (r *Reader) ReadBlockComment() (string, error) {
	r.ReadIf(' ')
	var buf bytes.Buffer
	for {
		if r.IsEndOfText() {
			return "", r.Unexpected("end of text in block comment")
		}
		if r.current == '*' {
			r.advance()
			if r.current == '/' {
				r.advance()
				break
			}
			buf.WriteByte('*')
			continue
		}
		buf.WriteRune(r.current)
		r.advance()
	}
	return stripBlockPrefix(buf.String()), nil
}

// stripBlockPrefix removes a shared leading "*" gutter from the interior
// lines of a multi-line block comment body, a conventional C-style practice.
func stripBlockPrefix(body string) string {
	if !strings.Contains(body, "\n") {
		return strings.TrimRight(body, " \t\r")
	}
	lines := strings.Split(body, "\n")
	allStarred := true
	for _, ln := range lines[1:] {
		t := leadingWhitespace(ln)
		rest := ln[len(t):]
		if !hasPrefixStar(rest) {
			allStarred = false
			break
		}
	}
	if !allStarred {
		return body
	}
	out := make([]string, len(lines))
	out[0] = strings.TrimRight(lines[0], " \t\r")
	for i, ln := range lines[1:] {
		t := leadingWhitespace(ln)
		rest := ln[len(t):]
		rest = rest[1:] // drop '*'
		rest = strings.TrimPrefix(rest, " ")
		out[i+1] = strings.TrimRight(rest, " \t\r")
	}
	return strings.Join(out, "\n")
}

func hasPrefixStar(s string) bool { return len(s) > 0 && s[0] == '*' }

// ReadNumber consumes a JSON-grammar number at Current: an optional leading
// '-', an integer part with no extra leading zeroes, an optional fractional
// part, and an optional exponent. It returns the parsed double together
// with the exact source slice consumed.
func (r *Reader) ReadNumber() (float64, string, error) {
	r.StartCapture()
	if r.current == '-' {
		r.advance()
	}
	if !r.IsDigit() {
		r.InvalidateCapture()
		return 0, "", r.Expected("digit")
	}
	if r.current == '0' {
		r.advance()
		if r.IsDigit() {
			r.InvalidateCapture()
			return 0, "", r.Unexpected("extra leading zeroes")
		}
	} else {
		r.ReadAllDigits()
	}
	if r.current == '.' {
		r.advance()
		if !r.IsDigit() {
			r.InvalidateCapture()
			return 0, "", r.Expected("digit after decimal point")
		}
		r.ReadAllDigits()
	}
	if r.current == 'e' || r.current == 'E' {
		r.advance()
		if r.current == '+' || r.current == '-' {
			r.advance()
		}
		if !r.IsDigit() {
			r.InvalidateCapture()
			return 0, "", r.Expected("exponent digit")
		}
		r.ReadAllDigits()
	}
	text := r.EndCapture()
	v, err := parseFloat(text)
	if err != nil {
		return 0, "", r.Unexpected("malformed number " + quoteText(text))
	}
	return v, text, nil
}

// ReadInfinity consumes the literal "infinity" at Current, if present, and
// reports whether it did. On a mismatch, nothing is consumed.
func (r *Reader) ReadInfinity() bool {
	const word = "infinity"
	if r.current != rune(word[0]) {
		return false
	}
	rest, err := r.r.Peek(len(word) - 1)
	if err != nil || string(rest) != word[1:] {
		return false
	}
	for range word {
		r.advance()
	}
	return true
}

// Unexpected constructs a syntax error reporting an unexpected condition at
// the current position.
func (r *Reader) Unexpected(what string) error {
	return syntaxErrorf(r.Pos(), nil, "unexpected %s", what)
}

// Expected constructs a syntax error reporting that want was expected at the
// current position but something else was found.
func (r *Reader) Expected(want string) error {
	got := "end of text"
	if !r.IsEndOfText() {
		got = quoteRune(r.current)
	}
	return syntaxErrorf(r.Pos(), nil, "expected %s, got %s", want, got)
}

func quoteRune(c rune) string { return quoteText(string(c)) }

func quoteText(s string) string { return "\"" + s + "\"" }

// copyOf returns a copy of text, batched into an arena to reduce the
// allocation overhead of returning many small captures.
func (r *Reader) copyOf(text []byte) []byte {
	const minBlockSlop = 4
	const smallSizeFraction = 16
	const bufBlockBytes = 16384

	if len(text) >= bufBlockBytes/smallSizeFraction {
		return append([]byte(nil), text...)
	}

	i := 0
	for i < len(r.tbuf) {
		if n := len(r.tbuf[i]) + len(text); n < cap(r.tbuf[i]) {
			break
		} else if cap(r.tbuf[i])-len(text) < minBlockSlop {
			r.tbuf[i] = make([]byte, 0, bufBlockBytes)
			break
		}
		i++
	}
	if i == len(r.tbuf) {
		r.tbuf = append(r.tbuf, make([]byte, 0, bufBlockBytes))
	}
	p := len(r.tbuf[i])
	r.tbuf[i] = append(r.tbuf[i], text...)
	return r.tbuf[i][p : p+len(text)]
}

// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"fmt"
	"io"
	"math"

	"github.com/djsfmt/djs"
)

// ParseDJS parses r as DJS: a JSON superset with unquoted keys,
// single/multi-line strings, line/hash/block comments, an optional
// open root, and delimiters that may be a comma, a newline, or both.
// Unlike ParseJSON, the returned values carry full formatting metadata,
// so a document parsed and then written with preservation reproduces its
// original blank-line structure and comment placement.
//
// ParseDJS tokenizes with containerization enabled, so nested `{...}`
// and `[...]` groups arrive as single BRACES/BRACKETS tokens whose
// Group is a child TokenStream; the parser recurses into those groups
// rather than walking a flat token sequence itself.
func ParseDJS(r io.Reader) (v Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = e
				return
			}
			panic(p)
		}
	}()
	rd := djs.NewReader(r)
	tz := djs.NewTokenizer(rd)
	tz.SetContainerized(true)
	stream := djs.NewTokenStream(tz)
	val := parseRoot(stream)
	if err := rd.Err(); err != nil {
		panic(err)
	}
	return val, nil
}

// must panics on a non-nil error, otherwise returning v unchanged. Every
// *djs.TokenStream call in this file is routed through it so the parser
// below can read as ordinary recursive descent instead of threading an
// error return through every helper.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func djsErrorAt(tok *djs.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if tok == nil {
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("at %s: %s", tok.First, msg)
}

// leadingInfo is the result of gatherLeading: the comments and blank-line
// count consumed while scanning past BREAK and COMMENT tokens, and the
// first real token found (peeked, not consumed), or nil at end of input.
type leadingInfo struct {
	comments []Comment
	lines    int
	next     *djs.Token
}

// gatherLeading consumes a run of BREAK and COMMENT tokens from stream,
// converting runs of two or more consecutive breaks into a blank-line
// count attached to the trailing edge of the most recently gathered
// comment (or to the overall line count, if no comment has been seen
// yet), and returns once it reaches a token of any other tag, or the end
// of the stream. A BREAK delivered just before the call (the newline that
// consumeDelimiter took to end the previous value's line) counts as the
// start of the first run, so each further break there is one blank line.
func gatherLeading(stream *djs.TokenStream) leadingInfo {
	var info leadingInfo
	breakRun := 0
	if prev := must(stream.Peek(-1)); prev != nil && prev.Tag == djs.BREAK {
		breakRun = 1
	}
	flushBreaks := func() {
		if breakRun > 1 {
			n := breakRun - 1
			if len(info.comments) > 0 {
				info.comments[len(info.comments)-1].BlankAfter += n
			} else {
				info.lines += n
			}
		}
		breakRun = 0
	}
	for {
		tok := must(stream.Peek(1))
		if tok == nil {
			flushBreaks()
			return info
		}
		switch tok.Tag {
		case djs.BREAK:
			must(stream.Next())
			breakRun++
		case djs.COMMENT:
			flushBreaks()
			must(stream.Next())
			info.comments = append(info.comments, Comment{Style: tok.CommentStyle(), Text: tok.Text()})
		default:
			flushBreaks()
			info.next = tok
			return info
		}
	}
}

// consumeDelimiter implements the DJS delimiter rule: after a value,
// accept any mix of an optional ',' and an optional newline, in either
// order, with at most one comma; a value must be followed by at least
// one of them unless it is the last in its container. A comment found
// directly after the optional comma, before any break, is the EOL
// comment of the value just parsed (the common "value, // comment"
// placement); a comment found after the line break is left for the
// next gatherLeading call to pick up as the header of the next value,
// or the container's footer if there is none.
// consumeDelimiter reports whether the container is now exhausted.
func consumeDelimiter(stream *djs.TokenStream) (atEnd bool, eol []Comment) {
	tok := must(stream.Peek(1))
	if tok == nil {
		return true, nil
	}
	sawComma, sawBreak := false, false
	if tok.Tag == djs.SYMBOL && tok.Sym() == ',' {
		must(stream.Next())
		sawComma = true
		tok = must(stream.Peek(1))
	}
	if tok != nil && tok.Tag == djs.COMMENT {
		must(stream.Next())
		eol = []Comment{{Style: tok.CommentStyle(), Text: tok.Text()}}
		tok = must(stream.Peek(1))
	}
	if tok != nil && tok.Tag == djs.BREAK {
		must(stream.Next())
		sawBreak = true
		if !sawComma {
			tok = must(stream.Peek(1))
			if tok != nil && tok.Tag == djs.SYMBOL && tok.Sym() == ',' {
				must(stream.Next())
				sawComma = true
			}
		}
	}
	tok = must(stream.Peek(1))
	if tok == nil {
		return true, eol
	}
	if tok.Tag == djs.COMMENT {
		return false, eol
	}
	if !sawComma && !sawBreak {
		panic(djsErrorAt(tok, "expected ',' or newline"))
	}
	return false, eol
}

// parseKey converts a token already known to be in key position into a
// Key, consuming it from stream. An unquoted key that is immediately
// followed by another WORD or STRING token (meaning the author wrote an
// unquoted run containing whitespace) is rejected with a tailored error.
func parseKey(stream *djs.TokenStream, tok *djs.Token) Key {
	must(stream.Next())
	switch tok.Tag {
	case djs.STRING:
		return Key{Text: tok.Text(), Flavor: tok.Flavor()}
	case djs.WORD:
		nxt := must(stream.Peek(1))
		if nxt != nil && (nxt.Tag == djs.WORD || nxt.Tag == djs.STRING) {
			panic(djsErrorAt(nxt, "whitespace in key (use quotes to include)"))
		}
		return Key{Text: tok.Text(), Flavor: djs.ImplicitString}
	default:
		panic(djsErrorAt(tok, "illegal token in key position: %s", tok))
	}
}

// parseValueFrom converts a token already known to be in value position
// into a Value. BRACES and BRACKETS recurse into the token's Group.
func parseValueFrom(tok *djs.Token) Value {
	switch tok.Tag {
	case djs.BRACES:
		return parseObjectBody(tok.Group())
	case djs.BRACKETS:
		return parseArrayBody(tok.Group())
	case djs.NUMBER:
		return &Number{Val: tok.Double(), Source: tok.Source()}
	case djs.STRING:
		return &String{Val: tok.Text(), Flavor: tok.Flavor()}
	case djs.WORD:
		switch tok.Text() {
		case "true":
			return &Bool{Val: true}
		case "false":
			return &Bool{Val: false}
		case "null":
			return &Null{}
		case "infinity":
			return &Number{Val: math.Inf(1), Source: tok.Text(), IsInfinity: true}
		case "-infinity":
			return &Number{Val: math.Inf(-1), Source: tok.Text(), IsInfinity: true}
		default:
			panic(djsErrorAt(tok, "illegal token %q", tok.Text()))
		}
	default:
		panic(djsErrorAt(tok, "illegal token in value position: %s", tok))
	}
}

// parseOneMember parses a single "key : value" member whose key token
// is tok, having already gathered header as the comments and blank
// lines preceding it. flush requests the "linesAbove = -1" special case
// for a member placed flush at the top of an open root.
func parseOneMember(stream *djs.TokenStream, header leadingInfo, tok *djs.Token, flush bool) *Member {
	key := parseKey(stream, tok)
	m := &Member{Key: key}
	if flush && len(header.comments) == 0 && header.lines == 0 {
		m.Format().LinesAbove = -1
	} else {
		m.Format().LinesAbove = header.lines
	}
	m.Comments().Set(Header, header.comments)

	between := gatherLeading(stream)
	if between.next == nil || between.next.Tag != djs.SYMBOL || between.next.Sym() != ':' {
		panic(djsErrorAt(between.next, "expected ':'"))
	}
	must(stream.Next()) // consume ':'

	between2 := gatherLeading(stream)
	if between2.next == nil {
		panic(djsErrorAt(nil, "end of container when expecting a value"))
	}
	must(stream.Next()) // consume the value's lead token
	m.Value = parseValueFrom(between2.next)
	m.Format().LinesBetween = between.lines + between2.lines
	m.Comments().Set(ValueComment, append(append([]Comment{}, between.comments...), between2.comments...))
	return m
}

// parseObjectBody parses the members of a "{...}" group, given the
// TokenStream over its interior.
func parseObjectBody(stream *djs.TokenStream) *Object {
	obj := &Object{}
	header := gatherLeading(stream)
	if header.next == nil {
		obj.Comments().Set(Interior, header.comments)
		obj.Format().LinesTrailing = header.lines
		return obj
	}
	if header.next.Tag == djs.SYMBOL && header.next.Sym() == ',' {
		panic(djsErrorAt(header.next, "leading delimiter: ','"))
	}
	tok := header.next
	for {
		m := parseOneMember(stream, header, tok, false)
		obj.Members = append(obj.Members, m)
		atEnd, eol := consumeDelimiter(stream)
		m.Comments().Set(EOL, eol)
		if atEnd {
			break
		}
		header = gatherLeading(stream)
		if header.next == nil {
			// Only comments and blank lines remain: they are the footer.
			obj.Comments().Set(Footer, header.comments)
			obj.Format().LinesTrailing = header.lines
			return obj
		}
		tok = header.next
	}
	trailing := gatherLeading(stream)
	obj.Comments().Set(Footer, trailing.comments)
	obj.Format().LinesTrailing = trailing.lines
	return obj
}

// parseArrayBody parses the elements of a "[...]" group, given the
// TokenStream over its interior.
func parseArrayBody(stream *djs.TokenStream) *Array {
	arr := &Array{}
	header := gatherLeading(stream)
	if header.next == nil {
		arr.Comments().Set(Interior, header.comments)
		arr.Format().LinesTrailing = header.lines
		return arr
	}
	if header.next.Tag == djs.SYMBOL && header.next.Sym() == ',' {
		panic(djsErrorAt(header.next, "leading delimiter: ','"))
	}
	tok := header.next
	for {
		must(stream.Next())
		val := parseValueFrom(tok)
		val.Format().LinesAbove = header.lines
		val.Comments().Set(Header, header.comments)
		arr.Elements = append(arr.Elements, val)

		atEnd, eol := consumeDelimiter(stream)
		val.Comments().Set(EOL, eol)
		if atEnd {
			break
		}
		header = gatherLeading(stream)
		if header.next == nil {
			// Only comments and blank lines remain: they are the footer.
			arr.Comments().Set(Footer, header.comments)
			arr.Format().LinesTrailing = header.lines
			return arr
		}
		tok = header.next
	}
	trailing := gatherLeading(stream)
	arr.Comments().Set(Footer, trailing.comments)
	arr.Format().LinesTrailing = trailing.lines
	return arr
}

// parseOpenRootMembers parses a sequence of "key : value" members
// directly at the document root, with no enclosing braces. The first
// member, having already consumed the document's own leading comments
// as the root object's Header, starts with an empty header of its own;
// flush controls whether it still qualifies for the "linesAbove = -1"
// treatment.
func parseOpenRootMembers(stream *djs.TokenStream, obj *Object, tok *djs.Token, flush bool) {
	header := leadingInfo{}
	isFirst := true
	for {
		m := parseOneMember(stream, header, tok, isFirst && flush)
		obj.Members = append(obj.Members, m)
		isFirst = false
		atEnd, eol := consumeDelimiter(stream)
		m.Comments().Set(EOL, eol)
		if atEnd {
			return
		}
		header = gatherLeading(stream)
		if header.next == nil {
			// Only comments and blank lines remain; parseRoot appends any
			// further footer comments to these.
			obj.Comments().Set(Footer, header.comments)
			return
		}
		tok = header.next
	}
}

// isOpenRootStart reports whether the document's first real token (peeked,
// not consumed) begins an open-root member: a WORD or STRING directly
// followed by ':'. It looks at most two tokens ahead and never descends
// into a bracket-group token, since a BRACES/BRACKETS/NUMBER/etc. token
// can never start a key. A blind scan for ':' across the whole stream
// would be unsafe here: passing through an undrained bracket-group token
// pulls its interior into this stream's own buffer instead of the
// group's, corrupting both.
func isOpenRootStart(stream *djs.TokenStream, first *djs.Token) bool {
	if first.Tag != djs.WORD && first.Tag != djs.STRING {
		return false
	}
	second := must(stream.Peek(2))
	return second != nil && second.Tag == djs.SYMBOL && second.Sym() == ':'
}

// parseRoot parses the single value (or open-root object) that makes up
// an entire DJS document.
func parseRoot(stream *djs.TokenStream) Value {
	header := gatherLeading(stream)
	if header.next == nil {
		root := &Object{OpenRoot: true}
		root.Comments().Set(Interior, header.comments)
		return root
	}
	isOpenRoot := isOpenRootStart(stream, header.next)

	var root Value
	if isOpenRoot {
		obj := &Object{OpenRoot: true}
		obj.Comments().Set(Header, header.comments)
		obj.Format().LinesAbove = header.lines
		flush := len(header.comments) == 0 && header.lines == 0
		parseOpenRootMembers(stream, obj, header.next, flush)
		root = obj
	} else {
		must(stream.Next()) // consume header.next
		root = parseValueFrom(header.next)
		root.Comments().Set(Header, header.comments)
		root.Format().LinesAbove = header.lines
	}

	footer := gatherLeading(stream)
	if footer.next != nil {
		panic(djsErrorAt(footer.next, "trailing content after document value"))
	}
	existing := root.Comments().Get(Footer)
	root.Comments().Set(Footer, append(existing, footer.comments...))
	return root
}

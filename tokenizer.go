// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package djs

import "io"

// A Tokenizer produces DJS tokens from a Reader. Each call to Next
// advances to the next token, or reports io.EOF when the input is
// exhausted.
type Tokenizer struct {
	r             *Reader
	containerized bool
}

// NewTokenizer constructs a Tokenizer that reads from r.
func NewTokenizer(r *Reader) *Tokenizer { return &Tokenizer{r: r} }

// SetContainerized configures whether matched brackets are wrapped into
// nested TokenStream groups (true) or surfaced as plain SYMBOL tokens
// (false, the default).
func (t *Tokenizer) SetContainerized(on bool) { t.containerized = on }

// Containerized reports the current containerization setting.
func (t *Tokenizer) Containerized() bool { return t.containerized }

// Next returns the next token of the input, or io.EOF once it is
// exhausted.
func (t *Tokenizer) Next() (*Token, error) {
	r := t.r
	r.SkipLineWhitespace()
	if r.IsEndOfText() {
		if err := r.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	startIdx := r.Index()
	startLoc := r.Pos()
	ch := r.Current()

	var tok *Token
	var err error
	switch {
	case ch == '-' || ch == '+' || ch == '.' || r.IsDigit():
		tok, err = t.number(startIdx, startLoc)
	case ch == '/' || ch == '#':
		tok, err = t.comment(startIdx, startLoc)
	case ch == '\'' || ch == '"':
		tok, err = t.quote(startIdx, startLoc)
	case ch == '\n':
		r.Advance()
		tok = t.finishBreak(startIdx, startLoc)
	default:
		tok, err = t.word(startIdx, startLoc)
	}
	if err != nil {
		return nil, err
	}
	if t.containerized && tok.Tag == SYMBOL {
		if closer, ctag, ok := closerFor(tok.sym); ok {
			return t.openContainer(ctag, closer, tok), nil
		}
	}
	return tok, nil
}

// isWordRune reports whether ch may appear in a WORD token.
func isWordRune(ch rune) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= '0' && ch <= '9')
}

func (t *Tokenizer) word(startIdx int, startLoc LineCol) (*Token, error) {
	r := t.r
	if !isWordRune(r.Current()) {
		ch := r.Current()
		r.Advance()
		return t.finishSymbol(ch, startIdx, startLoc), nil
	}
	r.StartCapture()
	for isWordRune(r.Current()) {
		r.Advance()
	}
	return t.finishWord(r.EndCapture(), startIdx, startLoc), nil
}

// number implements the DJS number grammar, which is more permissive than
// strict JSON (leading '+' and '.', fallback to WORD on ambiguity) and
// deliberately reproduces two known quirks: a leading zero followed by
// another digit, and an exponent marker with no digits after its sign, are
// both re-lexed as a single WORD rather than split into a number and a
// trailing word.
func (t *Tokenizer) number(startIdx int, startLoc LineCol) (*Token, error) {
	r := t.r
	r.StartCapture()
	lead := r.Current()
	if lead == '-' || lead == '+' || lead == '.' {
		r.Advance()
		if !r.IsDigit() {
			if lead == '-' && r.ReadInfinity() {
				return t.finishWord(r.EndCapture(), startIdx, startLoc), nil
			}
			r.InvalidateCapture()
			return t.finishSymbol(lead, startIdx, startLoc), nil
		}
	}
	hasLeadDot := lead == '.'
	if !hasLeadDot {
		if r.Current() == '0' {
			r.Advance()
			if r.IsDigit() {
				return t.bailToWord(startIdx, startLoc), nil
			}
		} else {
			r.ReadAllDigits()
		}
		if r.Current() == '.' {
			r.Advance()
			r.ReadAllDigits()
		}
	} else {
		r.ReadAllDigits()
	}
	if r.Current() == 'e' || r.Current() == 'E' {
		r.Advance()
		if r.Current() == '+' || r.Current() == '-' {
			r.Advance()
		}
		if !r.IsDigit() {
			return t.bailToWord(startIdx, startLoc), nil
		}
		r.ReadAllDigits()
	}
	text := r.EndCapture()
	v, err := parseFloat(text)
	if err != nil {
		return nil, r.Unexpected("malformed number " + quoteText(text))
	}
	return t.finishNumber(v, text, startIdx, startLoc), nil
}

// bailToWord finishes a capture already in progress as a WORD, after first
// consuming any further word runes so the token covers the whole run (see
// the "leading zero" and "incomplete exponent" cases in number).
func (t *Tokenizer) bailToWord(startIdx int, startLoc LineCol) *Token {
	r := t.r
	for isWordRune(r.Current()) {
		r.Advance()
	}
	return t.finishWord(r.EndCapture(), startIdx, startLoc)
}

func (t *Tokenizer) quote(startIdx int, startLoc LineCol) (*Token, error) {
	r := t.r
	q := r.Current()
	r.Advance() // consume the opening quote
	if q == '\'' && r.Current() == '\'' {
		r.Advance() // consume a second quote
		if r.Current() == '\'' {
			r.Advance() // consume the third quote; ''' is now fully consumed
			text, err := r.ReadMulti(false)
			if err != nil {
				return nil, err
			}
			return t.finishString(text, MultiQuoted, startIdx, startLoc), nil
		}
		// Exactly two quotes: an empty single-quoted string.
		return t.finishString("", SingleQuoted, startIdx, startLoc), nil
	}
	text, err := r.ReadQuoted(q)
	if err != nil {
		return nil, err
	}
	flavor := DoubleQuoted
	if q == '\'' {
		flavor = SingleQuoted
	}
	return t.finishString(text, flavor, startIdx, startLoc), nil
}

func (t *Tokenizer) comment(startIdx int, startLoc LineCol) (*Token, error) {
	r := t.r
	lead := r.Current()
	r.Advance()
	if lead == '#' {
		return t.finishComment(r.ReadHashComment(), HashStyle, startIdx, startLoc), nil
	}
	switch r.Current() {
	case '/':
		r.Advance()
		return t.finishComment(r.ReadLineComment(), LineStyle, startIdx, startLoc), nil
	case '*':
		r.Advance()
		text, err := r.ReadBlockComment()
		if err != nil {
			return nil, err
		}
		return t.finishComment(text, BlockStyle, startIdx, startLoc), nil
	default:
		return t.finishSymbol('/', startIdx, startLoc), nil
	}
}

func (t *Tokenizer) openContainer(ctag Tag, closer rune, openTok *Token) *Token {
	openTok.Tag = ctag
	ts := &TokenStream{tag: ctag, token: openTok, closer: closer, tokenizer: t}
	openTok.group = ts
	return openTok
}

func (t *Tokenizer) finish(tag Tag, startIdx int, startLoc LineCol) Token {
	r := t.r
	return Token{
		Location: Location{
			Span:  Span{Pos: startIdx, End: r.Index()},
			First: startLoc,
			Last:  r.Pos(),
		},
		Tag: tag,
	}
}

func (t *Tokenizer) finishWord(text string, startIdx int, startLoc LineCol) *Token {
	tok := t.finish(WORD, startIdx, startLoc)
	tok.text = text
	return &tok
}

func (t *Tokenizer) finishNumber(v float64, text string, startIdx int, startLoc LineCol) *Token {
	tok := t.finish(NUMBER, startIdx, startLoc)
	tok.num = v
	tok.numText = text
	return &tok
}

func (t *Tokenizer) finishString(text string, flavor StringFlavor, startIdx int, startLoc LineCol) *Token {
	tok := t.finish(STRING, startIdx, startLoc)
	tok.text = text
	tok.flavor = flavor
	return &tok
}

func (t *Tokenizer) finishComment(text string, style CommentStyle, startIdx int, startLoc LineCol) *Token {
	tok := t.finish(COMMENT, startIdx, startLoc)
	tok.text = text
	tok.style = style
	return &tok
}

func (t *Tokenizer) finishSymbol(ch rune, startIdx int, startLoc LineCol) *Token {
	tok := t.finish(SYMBOL, startIdx, startLoc)
	tok.sym = ch
	return &tok
}

func (t *Tokenizer) finishBreak(startIdx int, startLoc LineCol) *Token {
	tok := t.finish(BREAK, startIdx, startLoc)
	return &tok
}

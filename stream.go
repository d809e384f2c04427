// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package djs

import (
	"fmt"
	"io"
	"strings"
)

// A TokenStream is a lazy, pull-based sequence of tokens produced by a
// Tokenizer. It also doubles as the Token for a bracketed group: the four
// bracket tags (OPEN, BRACES, BRACKETS, PARENTHESES) carry a non-nil
// *TokenStream in their Group field, and that stream's span grows to cover
// each child as it is produced.
//
// A TokenStream is owned by a single active iterator at a time. In the
// default mode it retains only as much lookahead as is currently needed;
// SetPreserving enables full retention, after which every child ever
// produced remains addressable by Peek, Skip, SkipTo, and Lookup.
type TokenStream struct {
	tag        Tag
	token      *Token
	closer     rune // 0 for an OPEN stream, which has no matching closer
	tokenizer  *Tokenizer
	preserving bool

	children  []*Token // retained window; children[i] has global index base+i
	base      int      // global index of children[0]
	delivered int      // global index of the next child Next would deliver
}

// NewTokenStream constructs a root TokenStream that pulls tokens from t.
// The returned stream has tag OPEN and has no closer: it runs to the end
// of the input.
func NewTokenStream(t *Tokenizer) *TokenStream {
	tok := &Token{Tag: OPEN}
	ts := &TokenStream{tag: OPEN, token: tok, tokenizer: t}
	tok.group = ts
	return ts
}

// Tag reports the stream's container tag.
func (ts *TokenStream) Tag() Tag { return ts.tag }

// Token returns the Token this stream doubles as.
func (ts *TokenStream) Token() *Token { return ts.token }

// SetPreserving enables or disables full retention of produced children.
func (ts *TokenStream) SetPreserving(on bool) { ts.preserving = on }

// Preserving reports whether this stream retains every produced child.
func (ts *TokenStream) Preserving() bool { return ts.preserving }

// GetIndex returns the global index of the most recently delivered child,
// or -1 if Next has not yet been called.
func (ts *TokenStream) GetIndex() int { return ts.delivered - 1 }

// Close detaches the stream from its producing tokenizer. It is safe to
// call more than once.
func (ts *TokenStream) Close() error {
	ts.tokenizer = nil
	return nil
}

// Next returns the next child of the stream, or io.EOF once it is
// exhausted.
func (ts *TokenStream) Next() (*Token, error) {
	if err := ts.fill(ts.delivered + 1); err != nil {
		return nil, err
	}
	idx := ts.delivered - ts.base
	if idx < 0 || idx >= len(ts.children) {
		return nil, io.EOF
	}
	tok := ts.children[idx]
	ts.delivered++
	ts.trim()
	return tok, nil
}

// Peek returns the k-th child ahead of the cursor (k ≥ 1) without
// advancing, or (for k = -1) the child most recently delivered. In
// preserving mode, any negative k is valid and counts further back.
// Peek returns (nil, nil) when the requested position does not exist
// (for example, past the end of the stream).
func (ts *TokenStream) Peek(k int) (*Token, error) {
	var gidx int
	switch {
	case k >= 1:
		gidx = ts.delivered + k - 1
		if err := ts.fill(gidx + 1); err != nil {
			return nil, err
		}
	case k == -1:
		gidx = ts.delivered - 1
	case k == 0:
		return nil, fmt.Errorf("peek(0) is not meaningful")
	default:
		if !ts.preserving {
			return nil, fmt.Errorf("peek(%d): lookback beyond -1 requires preserving mode", k)
		}
		gidx = ts.delivered + k
	}
	if gidx < ts.base || gidx >= ts.base+len(ts.children) {
		return nil, nil
	}
	return ts.children[gidx-ts.base], nil
}

// Skip advances the cursor by n children (n ≥ 0), or, in preserving mode,
// rewinds it by -n children.
func (ts *TokenStream) Skip(n int) error {
	if n >= 0 {
		for i := 0; i < n; i++ {
			if _, err := ts.Next(); err != nil {
				return err
			}
		}
		return nil
	}
	if !ts.preserving {
		return fmt.Errorf("skip(%d): negative skip requires preserving mode", n)
	}
	nd := ts.delivered + n
	if nd < 0 {
		nd = 0
	}
	ts.delivered = nd
	return nil
}

// SkipTo moves the cursor to the given global index. Moving to an earlier
// index than the current cursor requires preserving mode.
func (ts *TokenStream) SkipTo(index int) error {
	if index < ts.delivered {
		if !ts.preserving {
			return fmt.Errorf("skipTo(%d): rewinding requires preserving mode", index)
		}
		if index < 0 {
			index = 0
		}
		ts.delivered = index
		return nil
	}
	for ts.delivered < index {
		if _, err := ts.Next(); err != nil {
			return err
		}
	}
	return nil
}

// A Lookup is the result of a successful (*TokenStream).Lookup call.
type Lookup struct {
	Index int    // global index of the first matching token
	Token *Token // the token at Index
}

// Lookup scans forward from fromIndex for a contiguous run of SYMBOL
// tokens spelling symbol. If exact is true, a match that is directly
// adjacent to another SYMBOL token (on either side) is rejected, so that
// (for example) a search for "=" does not match inside "==".
func (ts *TokenStream) Lookup(symbol string, fromIndex int, exact bool) (*Lookup, error) {
	want := []rune(symbol)
	if len(want) == 0 {
		return nil, fmt.Errorf("lookup: empty symbol")
	}
	for idx := fromIndex; ; idx++ {
		tok, err := ts.at(idx)
		if err == io.EOF {
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		if tok.Tag != SYMBOL || tok.sym != want[0] {
			continue
		}
		matched := true
		for j := 1; j < len(want); j++ {
			next, err := ts.at(idx + j)
			if err != nil && err != io.EOF {
				return nil, err
			}
			if next == nil || next.Tag != SYMBOL || next.sym != want[j] {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if exact {
			before, _ := ts.at(idx - 1)
			after, _ := ts.at(idx + len(want))
			if (before != nil && before.Tag == SYMBOL) || (after != nil && after.Tag == SYMBOL) {
				continue
			}
		}
		return &Lookup{Index: idx, Token: tok}, nil
	}
}

// at returns the child at the given global index, materializing as
// necessary. Looking behind the currently retained window requires
// preserving mode.
func (ts *TokenStream) at(idx int) (*Token, error) {
	if idx < 0 {
		return nil, nil
	}
	if idx < ts.base {
		return nil, fmt.Errorf("index %d has been discarded (enable preserving mode to retain it)", idx)
	}
	if err := ts.fill(idx + 1); err != nil {
		return nil, err
	}
	if idx >= ts.base+len(ts.children) {
		return nil, io.EOF
	}
	return ts.children[idx-ts.base], nil
}

// fill materializes children until the retained window covers global
// index upTo-1, or the stream is exhausted.
func (ts *TokenStream) fill(upTo int) error {
	for ts.base+len(ts.children) < upTo {
		tok, err := ts.produceOne()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		ts.children = append(ts.children, tok)
		ts.expand(tok)
	}
	return nil
}

// trim discards retained children that can no longer be addressed,
// keeping at most one already-delivered child (so Peek(-1) still works).
// It is a no-op in preserving mode.
func (ts *TokenStream) trim() {
	if ts.preserving {
		return
	}
	keepFrom := ts.delivered - 1
	drop := keepFrom - ts.base
	if drop <= 0 {
		return
	}
	ts.children = ts.children[drop:]
	ts.base += drop
}

// produceOne pulls the next token from the producing tokenizer. It consumes
// (but does not expose) a matching closer symbol, detaches from the
// tokenizer once the stream ends, and reports an "expected <closer>"
// syntax error if the input ends before a container's closer.
func (ts *TokenStream) produceOne() (*Token, error) {
	if ts.tokenizer == nil {
		return nil, io.EOF
	}
	tok, err := ts.tokenizer.Next()
	if err == io.EOF {
		if ts.closer != 0 {
			defer ts.Close()
			return nil, ts.tokenizer.r.Expected(quoteRune(ts.closer))
		}
		ts.Close()
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if ts.closer != 0 && tok.Tag == SYMBOL && tok.sym == ts.closer {
		ts.Close()
		return nil, io.EOF
	}
	return tok, nil
}

// expand widens the stream's own span to cover a newly produced child.
func (ts *TokenStream) expand(tok *Token) {
	ts.token.Span.End = tok.Span.End
	ts.token.Last = tok.Last
}

// Stringify renders the tree of tokens rooted at ts as an indented
// multi-line string, for diagnostic purposes. If ts has not yet been
// fully consumed, the rendering ends with a "<reading...>" marker in
// place of the unread tail.
func (ts *TokenStream) Stringify() string {
	var buf strings.Builder
	ts.writeIndented(&buf, 0)
	return buf.String()
}

func (ts *TokenStream) writeIndented(buf *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(buf, "%s%s\n", indent, ts.tag)
	for _, c := range ts.children {
		if g := c.Group(); g != nil {
			g.writeIndented(buf, depth+1)
		} else {
			fmt.Fprintf(buf, "%s  %s\n", indent, c)
		}
	}
	if ts.tokenizer != nil {
		fmt.Fprintf(buf, "%s  <reading...>\n", indent)
	}
}

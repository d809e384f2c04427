// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package djs

import "fmt"

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

// String renders loc as "line:column".
func (loc LineCol) String() string { return fmt.Sprintf("%d:%d", loc.Line, loc.Column) }

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

// String renders loc in a compact form. If First and Last share a line, the
// result is "line:pos-end"; otherwise "line:pos-lastLine:end".
func (loc Location) String() string {
	if loc.First.Line == loc.Last.Line {
		return fmt.Sprintf("%d:%d-%d", loc.First.Line, loc.Span.Pos, loc.Span.End)
	}
	return fmt.Sprintf("%d:%d-%d:%d", loc.First.Line, loc.Span.Pos, loc.Last.Line, loc.Span.End)
}

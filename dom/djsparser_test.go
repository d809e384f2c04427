// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package dom_test

import (
	"strings"
	"testing"

	"github.com/djsfmt/djs/dom"
)

func mustParseDJS(t *testing.T, input string) dom.Value {
	t.Helper()
	v, err := dom.ParseDJS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDJS(%q): %v", input, err)
	}
	return v
}

func TestParseDJSUnquotedKeys(t *testing.T) {
	v := mustParseDJS(t, `{foo: 1, "bar": 2}`)
	obj := v.(*dom.Object)
	if len(obj.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(obj.Members))
	}
	if obj.Members[0].Key.Text != "foo" {
		t.Errorf("members[0].Key = %q, want %q", obj.Members[0].Key.Text, "foo")
	}
}

func TestParseDJSTrailingComma(t *testing.T) {
	v := mustParseDJS(t, `[1, 2, 3,]`)
	arr := v.(*dom.Array)
	if arr.Len() != 3 {
		t.Fatalf("got %d elements, want 3", arr.Len())
	}
}

func TestParseDJSNewlineDelimiters(t *testing.T) {
	v := mustParseDJS(t, "{\n  a: 1\n  b: 2\n}")
	obj := v.(*dom.Object)
	if len(obj.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(obj.Members))
	}
}

func TestParseDJSOpenRoot(t *testing.T) {
	v := mustParseDJS(t, "a: 1\nb: 2\n")
	obj := v.(*dom.Object)
	if !obj.OpenRoot {
		t.Error("OpenRoot = false, want true")
	}
	if len(obj.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(obj.Members))
	}
}

func TestParseDJSOpenRootFlushFirstMember(t *testing.T) {
	v := mustParseDJS(t, "a: 1\nb: 2\n")
	obj := v.(*dom.Object)
	if got := obj.Members[0].Format().LinesAbove; got != -1 {
		t.Errorf("first member LinesAbove = %d, want -1 (flush)", got)
	}
}

func TestParseDJSOpenRootNotFlushAfterComment(t *testing.T) {
	v := mustParseDJS(t, "// hi\na: 1\n")
	obj := v.(*dom.Object)
	if got := obj.Members[0].Format().LinesAbove; got != 0 {
		t.Errorf("first member LinesAbove = %d, want 0 (not flush: header owns the comment)", got)
	}
	if cs := obj.Comments().Get(dom.Header); len(cs) != 1 {
		t.Errorf("root Header comments = %v, want one comment", cs)
	}
}

func TestParseDJSEOLCommentAfterComma(t *testing.T) {
	v := mustParseDJS(t, `{
  // a header comment
  "a": 1, // an eol comment

  "b": 2
  // a footer comment
}`)
	obj := v.(*dom.Object)
	a := obj.Members[0]
	if cs := a.Comments().Get(dom.Header); len(cs) != 1 || cs[0].Text != "a header comment" {
		t.Errorf("a.Header = %v, want one comment", cs)
	}
	if cs := a.Comments().Get(dom.EOL); len(cs) != 1 || cs[0].Text != "an eol comment" {
		t.Errorf("a.EOL = %v, want one comment", cs)
	}
	b := obj.Members[1]
	if got := b.Format().LinesAbove; got != 1 {
		t.Errorf("b.LinesAbove = %d, want 1", got)
	}
	if cs := obj.Comments().Get(dom.Footer); len(cs) != 1 || cs[0].Text != "a footer comment" {
		t.Errorf("object Footer = %v, want one comment", cs)
	}
}

func TestParseDJSComments(t *testing.T) {
	// No comma at all after "a": the newline alone satisfies the delimiter
	// rule, and the comment that follows sits after that line break, so it
	// is deferred to the next gatherLeading call and becomes "b"'s header
	// rather than "a"'s EOL comment.
	v := mustParseDJS(t, `{
  // a header comment
  "a": 1
  // b's header, not a's eol
  "b": 2
}`)
	obj := v.(*dom.Object)
	a := obj.Members[0]
	if cs := a.Comments().Get(dom.Header); len(cs) != 1 || cs[0].Text != "a header comment" {
		t.Errorf("a.Header = %v, want one comment", cs)
	}
	if cs := a.Comments().Get(dom.EOL); len(cs) != 0 {
		t.Errorf("a.EOL = %v, want none", cs)
	}
	b := obj.Members[1]
	if cs := b.Comments().Get(dom.Header); len(cs) != 1 || cs[0].Text != "b's header, not a's eol" {
		t.Errorf("b.Header = %v, want one comment", cs)
	}
	if got := b.Format().LinesAbove; got != 0 {
		t.Errorf("b.LinesAbove = %d, want 0", got)
	}
}

func TestParseDJSMultiQuotedString(t *testing.T) {
	v := mustParseDJS(t, "'''\n  hello\n  world\n'''")
	s := v.(*dom.String)
	if s.Val != "hello\nworld" {
		t.Errorf("Val = %q, want %q", s.Val, "hello\nworld")
	}
}

func TestParseDJSInfinity(t *testing.T) {
	v := mustParseDJS(t, "[infinity, -infinity]")
	arr := v.(*dom.Array)
	n0 := arr.Elements[0].(*dom.Number)
	n1 := arr.Elements[1].(*dom.Number)
	if !n0.IsInfinity || n0.Val <= 0 {
		t.Errorf("elements[0] = %v, want +infinity", n0)
	}
	if !n1.IsInfinity || n1.Val >= 0 {
		t.Errorf("elements[1] = %v, want -infinity", n1)
	}
}

func TestParseDJSErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"whitespace in key", `{foo bar: 1}`},
		{"leading delimiter", `[, 1, 2]`},
		{"unterminated object", `{"a": 1`},
		{"missing colon", `{"a" 1}`},
		{"illegal word", `[nope]`},
		{"trailing content", `{} extra`},
		{"no delimiter between values", `[1 2]`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := dom.ParseDJS(strings.NewReader(test.input)); err == nil {
				t.Errorf("ParseDJS(%q): got nil error, want one", test.input)
			}
		})
	}
}

func TestParseDJSEmptyDocument(t *testing.T) {
	v := mustParseDJS(t, "")
	obj := v.(*dom.Object)
	if !obj.OpenRoot {
		t.Error("empty document OpenRoot = false, want true")
	}
	if len(obj.Members) != 0 {
		t.Errorf("empty document has %d members, want 0", len(obj.Members))
	}
}

func TestParseDJSArrayComments(t *testing.T) {
	v := mustParseDJS(t, "[\n  1,\n  // middle\n  2,\n]")
	arr := v.(*dom.Array)
	if cs := arr.Elements[1].Comments().Get(dom.Header); len(cs) != 1 || cs[0].Text != "middle" {
		t.Errorf("elements[1].Header = %v, want one comment", cs)
	}
}

func TestParseDJSBlankLinesBetweenKeyAndValue(t *testing.T) {
	v := mustParseDJS(t, "{\n  \"a\":\n\n    1\n}")
	obj := v.(*dom.Object)
	m := obj.Members[0]
	if got := m.Format().LinesBetween; got != 1 {
		t.Errorf("LinesBetween = %d, want 1", got)
	}
}

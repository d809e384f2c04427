// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package djs_test

import (
	"strings"
	"testing"

	"github.com/djsfmt/djs"
)

func TestReaderAdvance(t *testing.T) {
	r := djs.NewReaderFromString("ab\ncd")
	var got []rune
	for !r.IsEndOfText() {
		got = append(got, r.Current())
		r.Advance()
	}
	want := []rune{'a', 'b', '\n', 'c', 'd'}
	if string(got) != string(want) {
		t.Errorf("runes = %q, want %q", string(got), string(want))
	}
}

func TestReaderPos(t *testing.T) {
	r := djs.NewReaderFromString("ab\ncd")
	r.Advance() // b
	r.Advance() // \n
	r.Advance() // c
	pos := r.Pos()
	if pos.Line != 2 || pos.Column != 0 {
		t.Errorf("Pos() = %+v, want line 2 column 0", pos)
	}
}

func TestReaderReadQuoted(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `hello"`, "hello"},
		{"escapes", `a\nb\tc\"d"`, "a\nb\tc\"d"},
		{"single char", `A"`, "A"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := djs.NewReaderFromString(test.input)
			got, err := r.ReadQuoted('"')
			if err != nil {
				t.Fatalf("ReadQuoted: %v", err)
			}
			if got != test.want {
				t.Errorf("ReadQuoted() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestReaderReadQuotedErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated", `hello`},
		{"bad escape at end", `abc\`},
		{"control char", "ab\x01c\""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := djs.NewReaderFromString(test.input)
			if _, err := r.ReadQuoted('"'); err == nil {
				t.Errorf("ReadQuoted(%q): got nil error, want one", test.input)
			}
		})
	}
}

func TestReaderReadNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		text  string
	}{
		{"0", 0, "0"},
		{"-0", 0, "-0"},
		{"123", 123, "123"},
		{"-123.5", -123.5, "-123.5"},
		{"1e10", 1e10, "1e10"},
		{"1.5e-3", 1.5e-3, "1.5e-3"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			r := djs.NewReaderFromString(test.input)
			v, text, err := r.ReadNumber()
			if err != nil {
				t.Fatalf("ReadNumber(%q): %v", test.input, err)
			}
			if v != test.want || text != test.text {
				t.Errorf("ReadNumber(%q) = (%v, %q), want (%v, %q)", test.input, v, text, test.want, test.text)
			}
		})
	}
}

func TestReaderReadNumberErrors(t *testing.T) {
	tests := []string{"01", "-", ".", "1.", "1e", "1e+"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			r := djs.NewReaderFromString(input)
			if _, _, err := r.ReadNumber(); err == nil {
				t.Errorf("ReadNumber(%q): got nil error, want one", input)
			}
		})
	}
}

func TestReaderReadInfinity(t *testing.T) {
	r := djs.NewReaderFromString("infinity,")
	if !r.ReadInfinity() {
		t.Fatal("ReadInfinity() = false, want true")
	}
	if r.Current() != ',' {
		t.Errorf("Current() = %q after ReadInfinity, want ','", r.Current())
	}

	r2 := djs.NewReaderFromString("infinit")
	if r2.ReadInfinity() {
		t.Error("ReadInfinity() on truncated word = true, want false")
	}
	if r2.Current() != 'i' {
		t.Errorf("ReadInfinity left cursor at %q, want unconsumed 'i'", r2.Current())
	}
}

func TestReaderReadMulti(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single line", "hello'''", "hello"},
		{"shared indent stripped", "  foo\n  bar\n  '''", "foo\nbar"},
		{"uneven indent keeps shortest", "    foo\n  bar\n  '''", "  foo\nbar"},
		{"empty", "'''", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := djs.NewReaderFromString(test.input)
			got, err := r.ReadMulti(false)
			if err != nil {
				t.Fatalf("ReadMulti: %v", err)
			}
			if got != test.want {
				t.Errorf("ReadMulti() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestReaderReadMultiStrictMixedIndent(t *testing.T) {
	r := djs.NewReaderFromString("\tfoo\n bar\n '''")
	if _, err := r.ReadMulti(true); err == nil {
		t.Error("ReadMulti(strict) with mixed tabs/spaces: got nil error, want one")
	}
}

func TestReaderSkipWhitespace(t *testing.T) {
	r := djs.NewReaderFromString("  \t\n\n  x")
	r.SkipWhitespace(true)
	if r.Current() != 'x' {
		t.Errorf("Current() = %q, want 'x'", r.Current())
	}
	if r.LinesSkipped() != 2 {
		t.Errorf("LinesSkipped() = %d, want 2", r.LinesSkipped())
	}
}

func TestReaderSkipLineWhitespace(t *testing.T) {
	r := djs.NewReaderFromString("  \tx\ny")
	r.SkipLineWhitespace()
	if r.Current() != 'x' {
		t.Errorf("Current() = %q, want 'x'", r.Current())
	}
}

func TestReaderExpect(t *testing.T) {
	r := djs.NewReaderFromString("a")
	if err := r.Expect('a'); err != nil {
		t.Errorf("Expect('a'): %v", err)
	}
	r2 := djs.NewReaderFromString("b")
	if err := r2.Expect('a'); err == nil {
		t.Error("Expect('a') on 'b': got nil error, want one")
	}
}

func TestReaderCapture(t *testing.T) {
	r := djs.NewReaderFromString("hello world")
	r.StartCapture()
	for r.Current() != ' ' {
		r.Advance()
	}
	got := r.EndCapture()
	if got != "hello" {
		t.Errorf("EndCapture() = %q, want %q", got, "hello")
	}
}

func TestReaderLineComment(t *testing.T) {
	r := djs.NewReaderFromString(" trailing text\nmore")
	got := r.ReadLineComment()
	if got != "trailing text" {
		t.Errorf("ReadLineComment() = %q, want %q", got, "trailing text")
	}
	if r.Current() != '\n' {
		t.Errorf("Current() = %q, want newline", r.Current())
	}
}

func TestReaderBlockComment(t *testing.T) {
	r := djs.NewReaderFromString(" multi\n * line\n * comment\n * end*/tail")
	got, err := r.ReadBlockComment()
	if err != nil {
		t.Fatalf("ReadBlockComment: %v", err)
	}
	want := "multi\nline\ncomment\nend"
	if got != want {
		t.Errorf("ReadBlockComment() = %q, want %q", got, want)
	}
	if r.Current() != 't' {
		t.Errorf("Current() after ReadBlockComment = %q, want 't' (start of tail)", r.Current())
	}
}

func TestReaderErr(t *testing.T) {
	r := djs.NewReader(strings.NewReader(""))
	if err := r.Err(); err != nil {
		t.Errorf("Err() on empty input = %v, want nil", err)
	}
	if !r.IsEndOfText() {
		t.Error("IsEndOfText() on empty input = false, want true")
	}
}

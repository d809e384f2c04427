// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package djs_test

import (
	"io"
	"testing"

	"github.com/djsfmt/djs"
)

func newStream(input string) *djs.TokenStream {
	tz := djs.NewTokenizer(djs.NewReaderFromString(input))
	tz.SetContainerized(true)
	return djs.NewTokenStream(tz)
}

func TestTokenStreamNext(t *testing.T) {
	ts := newStream("a b c")
	var got []string
	for {
		tok, err := ts.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next(): %v", err)
		}
		got = append(got, tok.Text())
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenStreamPeek(t *testing.T) {
	ts := newStream("a b c")
	p1, err := ts.Peek(1)
	if err != nil {
		t.Fatalf("Peek(1): %v", err)
	}
	if p1.Text() != "a" {
		t.Errorf("Peek(1) = %q, want %q", p1.Text(), "a")
	}
	p2, err := ts.Peek(2)
	if err != nil {
		t.Fatalf("Peek(2): %v", err)
	}
	if p2.Text() != "b" {
		t.Errorf("Peek(2) = %q, want %q", p2.Text(), "b")
	}
	// Peeking must not consume.
	first, err := ts.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	if first.Text() != "a" {
		t.Errorf("Next() after Peek = %q, want %q", first.Text(), "a")
	}
}

func TestTokenStreamPeekPastEnd(t *testing.T) {
	ts := newStream("a")
	ts.Next()
	tok, err := ts.Peek(1)
	if err != nil {
		t.Fatalf("Peek(1) past end: %v", err)
	}
	if tok != nil {
		t.Errorf("Peek(1) past end = %v, want nil", tok)
	}
}

func TestTokenStreamSkip(t *testing.T) {
	ts := newStream("a b c")
	if err := ts.Skip(2); err != nil {
		t.Fatalf("Skip(2): %v", err)
	}
	tok, err := ts.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	if tok.Text() != "c" {
		t.Errorf("Next() after Skip(2) = %q, want %q", tok.Text(), "c")
	}
}

func TestTokenStreamLookup(t *testing.T) {
	ts := newStream("a := b")
	lk, err := ts.Lookup(":=", 0, false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if lk == nil {
		t.Fatal("Lookup(\":=\") = nil, want a match")
	}
	if lk.Index != 1 {
		t.Errorf("Lookup match index = %d, want 1", lk.Index)
	}
}

func TestTokenStreamLookupExact(t *testing.T) {
	ts := newStream("a == b")
	lk, err := ts.Lookup("=", 0, true)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if lk != nil {
		t.Errorf("exact Lookup(\"=\") inside \"==\" = %v, want nil", lk)
	}
}

func TestTokenStreamLookupNoMatch(t *testing.T) {
	ts := newStream("a b c")
	lk, err := ts.Lookup(":", 0, false)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if lk != nil {
		t.Errorf("Lookup(\":\") with no colon = %v, want nil", lk)
	}
}

func TestTokenStreamPreserving(t *testing.T) {
	ts := newStream("a b c")
	ts.SetPreserving(true)
	ts.Next()
	ts.Next()
	ts.Next()
	if err := ts.Skip(-2); err != nil {
		t.Fatalf("Skip(-2) in preserving mode: %v", err)
	}
	tok, err := ts.Next()
	if err != nil {
		t.Fatalf("Next() after rewind: %v", err)
	}
	if tok.Text() != "b" {
		t.Errorf("Next() after rewind = %q, want %q", tok.Text(), "b")
	}
}

func TestTokenStreamSkipNegativeWithoutPreserving(t *testing.T) {
	ts := newStream("a b c")
	ts.Next()
	if err := ts.Skip(-1); err == nil {
		t.Error("Skip(-1) without preserving: got nil error, want one")
	}
}

func TestTokenStreamGroup(t *testing.T) {
	ts := newStream("[1, 2, 3]")
	tok, err := ts.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	if tok.Tag != djs.BRACKETS {
		t.Fatalf("Tag = %s, want BRACKETS", tok.Tag)
	}
	group := tok.Group()
	if group.Tag() != djs.BRACKETS {
		t.Errorf("group.Tag() = %s, want BRACKETS", group.Tag())
	}
	count := 0
	for {
		_, err := group.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("group.Next(): %v", err)
		}
		count++
	}
	// 1, ',', 2, ',', 3 = 5 children (commas are plain SYMBOL tokens).
	if count != 5 {
		t.Errorf("group child count = %d, want 5", count)
	}
}

func TestTokenStreamUnclosedGroup(t *testing.T) {
	ts := newStream("[1, 2")
	tok, err := ts.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	group := tok.Group()
	for {
		_, err := group.Next()
		if err != nil {
			if err == io.EOF {
				t.Fatal("group.Next() on unclosed group = io.EOF, want a syntax error")
			}
			return // got the expected error
		}
	}
}

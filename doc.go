// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package djs implements the lexical primitives shared by the DJS and
// strict JSON parsers: a position-tracking character Reader, a Token model,
// a Tokenizer, and a lazy TokenStream.
//
// # Reading
//
// The Reader type wraps an io.Reader and exposes one rune of lookahead via
// Current, plus line/column tracking and a capture facility that records
// the substring consumed between two points without re-scanning it:
//
//	r := djs.NewReader(input)
//	for !r.IsEndOfText() {
//	   r.Advance()
//	}
//
// Most Reader methods classify the current rune and consume it in the same
// call (ReadIf, ReadDigit, ReadQuoted, ReadNumber, ...). Reader never peeks
// more than one rune ahead; wherever a production needs to distinguish a
// word from a keyword such as "infinity" without committing, the Reader
// buffers internally and only advances on a confirmed match.
//
// # Tokenizing
//
// The Tokenizer type implements a lexical scanner for the DJS grammar, a
// superset of JSON that also recognizes line, hash, and block comments,
// blank lines, bare words, and single-quoted and multi-line strings. Next
// advances to the next token:
//
//	t := djs.NewTokenizer(r)
//	for {
//	   tok, err := t.Next()
//	   if err == io.EOF {
//	      break
//	   } else if err != nil {
//	      log.Fatalf("Next failed: %v", err)
//	   }
//	   log.Printf("Next token: %v", tok)
//	}
//
// A Tokenizer constructed with containerization enabled also groups
// bracketed runs of tokens ({...}, [...], (...)) under a single BRACES,
// BRACKETS, or PARENTHESES token whose Group method exposes a nested
// TokenStream over the interior. The group reads its interior lazily from
// the same Tokenizer and consumes the matching closer itself, so a group
// must be read to its end before the Tokenizer moves on past it.
//
// # Streaming
//
// The TokenStream type is a pull-based iterator over a Tokenizer with
// bidirectional lookahead: Peek inspects upcoming tokens without consuming
// them, Skip discards them, and SkipTo moves the cursor to a given index.
// SetPreserving switches a TokenStream into preserving mode, in which every
// token it has ever produced remains available for re-inspection.
//
// Construction, comment attachment, and value formatting live in the dom
// package, which consumes a TokenStream (or, for strict JSON, a Reader
// directly) to build a formatting-aware document tree.
package djs

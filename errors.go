// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package djs

import "fmt"

// SyntaxError is the concrete type of error that the Reader, the Tokenizer,
// a TokenStream, and the strict JSON parser report for a grammar
// violation. It carries the line and column at which the violation was
// first detected. The DJS parser in package dom reports the grammar errors
// it detects itself as plain errors, whose text begins with the position
// when a token is at hand; errors from the layers below it reach the
// caller as *SyntaxError.
type SyntaxError struct {
	Location LineCol
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// syntaxErrorf constructs a *SyntaxError at loc with a formatted message.
func syntaxErrorf(loc LineCol, cause error, format string, args ...any) *SyntaxError {
	return &SyntaxError{Location: loc, Message: fmt.Sprintf(format, args...), err: cause}
}

// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package registry dispatches parsing and writing by file extension. It
// is a thin convenience layer over the djs/dom packages: callers that
// already know which grammar and writer policy they want should call
// dom.ParseJSON/dom.ParseDJS and dom.WriteJSON/dom.WriteDJS directly
// instead.
package registry

import (
	"fmt"
	"io"
	"strings"

	"github.com/djsfmt/djs/dom"
)

// ParseFunc parses a document from r into a Value tree.
type ParseFunc func(r io.Reader) (dom.Value, error)

// WriteFunc renders v to w under the format's own default policy.
type WriteFunc func(w io.Writer, v dom.Value) error

// A Format pairs a ParseFunc and WriteFunc for one named format.
type Format struct {
	Name  string
	Parse ParseFunc
	Write WriteFunc
}

var formats = map[string]Format{
	"json": {Name: "json", Parse: dom.ParseJSON, Write: dom.WriteJSON},
	"djs":  {Name: "djs", Parse: dom.ParseDJS, Write: djsWrite},
}

var aliases = map[string]string{
	"xjs": "djs",
}

func djsWrite(w io.Writer, v dom.Value) error {
	return dom.WriteDJS(w, v, dom.DefaultDJSOptions())
}

// Register adds or replaces a named format. It is not safe to call
// concurrently with Lookup/Parse/Write.
func Register(f Format) { formats[f.Name] = f }

// Alias makes ext resolve to the format already registered as target.
func Alias(ext, target string) { aliases[strings.ToLower(ext)] = strings.ToLower(target) }

// Lookup resolves ext (case-insensitively, with or without a leading
// '.') to its registered Format, following aliases. An unrecognized
// extension defaults to "djs".
func Lookup(ext string) Format {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if target, ok := aliases[ext]; ok {
		ext = target
	}
	if f, ok := formats[ext]; ok {
		return f
	}
	return formats["djs"]
}

// Parse dispatches to the ParseFunc registered for ext.
func Parse(ext string, r io.Reader) (dom.Value, error) {
	f := Lookup(ext)
	v, err := f.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse (%s): %w", f.Name, err)
	}
	return v, nil
}

// Write dispatches to the WriteFunc registered for ext.
func Write(ext string, w io.Writer, v dom.Value) error {
	f := Lookup(ext)
	if err := f.Write(w, v); err != nil {
		return fmt.Errorf("write (%s): %w", f.Name, err)
	}
	return nil
}

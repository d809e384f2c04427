// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package dom_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tailscale/hujson"

	"github.com/djsfmt/djs/dom"
)

// crossCheckAgainstHuJSON parses input with both this module's DJS parser
// and hujson, standardizes (strips comments, trailing commas, and
// formatting) through each library's own mechanism, and checks the two
// canonical `any` trees agree. hujson is an independent JSON-with-comments
// implementation, so agreement here is evidence that this module's own
// comment/trailing-comma handling matches the wider ecosystem's, not just
// its own expectations.
func crossCheckAgainstHuJSON(t *testing.T, input string) {
	t.Helper()

	v, err := dom.ParseDJS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("dom.ParseDJS: %v", err)
	}
	var gotBuf bytes.Buffer
	if err := dom.WriteJSON(&gotBuf, dom.Standardize(v)); err != nil {
		t.Fatalf("dom.WriteJSON: %v", err)
	}
	var got any
	if err := json.Unmarshal(gotBuf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal this module's output: %v\noutput: %s", err, gotBuf.Bytes())
	}

	hv, err := hujson.Parse([]byte(input))
	if err != nil {
		t.Fatalf("hujson.Parse: %v", err)
	}
	hv.Standardize()
	var want any
	if err := json.Unmarshal(hv.Pack(), &want); err != nil {
		t.Fatalf("unmarshal hujson's output: %v\noutput: %s", err, hv.Pack())
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("canonical value mismatch (-hujson +this module):\n%s", diff)
	}
}

func TestCrossCheckAgainstHuJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain object", `{"a": 1, "b": [1, 2, 3]}`},
		{
			"line comments and trailing comma",
			`{
  // a header comment
  "a": 1,
  "b": 2, // trailing
}`,
		},
		{
			"block comment and nested array",
			`{
  /* describes c */
  "c": [1, 2, 3,],
}`,
		},
		{
			"line comment and blank lines",
			`{
  "a": 1,

  // still line style
  "b": 2
}`,
		},
		{"nested objects with comments", `{
  "outer": {
    // inner header
    "inner": true
  }
}`},
		{"empty containers", `{"a": [], "b": {}}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			crossCheckAgainstHuJSON(t, test.input)
		})
	}
}

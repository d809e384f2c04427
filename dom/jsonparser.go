// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package dom

import (
	"fmt"
	"io"

	"github.com/djsfmt/djs"
)

// ParseJSON parses r as strict JSON. It accepts exactly RFC 8259, with no
// DJS relaxations: no comments, no trailing commas, no bare keys. A
// trailing comma is not special-cased; it falls through to the same
// error as any other malformed member or element ("expected a quoted
// key" in an object, "unexpected character" in an array), reported at
// the closer. The returned values carry no formatting
// metadata.
//
// ParseJSON reads directly from a *djs.Reader rather than going through a
// Tokenizer or TokenStream, since strict JSON has no container- or
// comment-fidelity requirements for those to serve.
func ParseJSON(r io.Reader) (v Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = e
				return
			}
			panic(p)
		}
	}()
	rd := djs.NewReader(r)
	val := jsonValue(rd)
	jsonSkipWS(rd)
	if err := rd.Err(); err != nil {
		panic(err)
	}
	if !rd.IsEndOfText() {
		panic(rd.Unexpected("trailing content after JSON value"))
	}
	return val, nil
}

func jsonSkipWS(rd *djs.Reader) { rd.SkipWhitespace(true) }

func jsonValue(rd *djs.Reader) Value {
	jsonSkipWS(rd)
	switch {
	case rd.IsEndOfText():
		panic(rd.Unexpected("end of text where a value was expected"))
	case rd.Current() == '{':
		return jsonObject(rd)
	case rd.Current() == '[':
		return jsonArray(rd)
	case rd.Current() == '"':
		rd.Advance()
		s, err := rd.ReadQuoted('"')
		if err != nil {
			panic(err)
		}
		return &String{Val: s, Flavor: djs.DoubleQuoted}
	case rd.Current() == '-' || rd.IsDigit():
		v, text, err := rd.ReadNumber()
		if err != nil {
			panic(err)
		}
		return &Number{Val: v, Source: text}
	case rd.Current() == 't':
		jsonLiteral(rd, "true")
		return &Bool{Val: true}
	case rd.Current() == 'f':
		jsonLiteral(rd, "false")
		return &Bool{Val: false}
	case rd.Current() == 'n':
		jsonLiteral(rd, "null")
		return &Null{}
	default:
		panic(rd.Unexpected("character " + quoteCh(rd.Current())))
	}
}

func jsonLiteral(rd *djs.Reader, word string) {
	for _, c := range word {
		if !rd.ReadIf(c) {
			panic(rd.Expected(fmt.Sprintf("%q", word)))
		}
	}
}

func jsonObject(rd *djs.Reader) Value {
	rd.Advance() // '{'
	obj := &Object{}
	jsonSkipWS(rd)
	if rd.ReadIf('}') {
		return obj
	}
	for {
		jsonSkipWS(rd)
		if rd.Current() != '"' {
			panic(rd.Expected("a quoted key"))
		}
		rd.Advance()
		key, err := rd.ReadQuoted('"')
		if err != nil {
			panic(err)
		}
		jsonSkipWS(rd)
		if err := rd.Expect(':'); err != nil {
			panic(err)
		}
		val := jsonValue(rd)
		obj.Members = append(obj.Members, &Member{
			Key:   Key{Text: key, Flavor: djs.DoubleQuoted},
			Value: val,
		})
		jsonSkipWS(rd)
		if rd.ReadIf(',') {
			continue
		}
		if rd.ReadIf('}') {
			break
		}
		panic(rd.Expected("',' or '}'"))
	}
	return obj
}

func jsonArray(rd *djs.Reader) Value {
	rd.Advance() // '['
	arr := &Array{}
	jsonSkipWS(rd)
	if rd.ReadIf(']') {
		return arr
	}
	for {
		arr.Elements = append(arr.Elements, jsonValue(rd))
		jsonSkipWS(rd)
		if rd.ReadIf(',') {
			continue
		}
		if rd.ReadIf(']') {
			break
		}
		panic(rd.Expected("',' or ']'"))
	}
	return arr
}

func quoteCh(c rune) string {
	if c < 0 {
		return "end of text"
	}
	return fmt.Sprintf("%q", c)
}

// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package dom defines the formatting-aware value model written and read by
// the parsers and writer of this module, and a handful of helpers for
// working with it.
package dom

import (
	"fmt"
	"strconv"

	"github.com/djsfmt/djs"
)

// Format records the blank-line layout around a Value, as seen by the
// parser that produced it. A field of -1 means "not recorded; let the
// writer choose a default" rather than "exactly zero".
type Format struct {
	LinesAbove    int // blank lines before this value, relative to its context
	LinesBetween  int // for a Member only: blank lines between its key and value
	LinesTrailing int // blank lines after this value's last child, before its closer
}

// CommentPosition names one of the five places a comment can attach to a
// value, per the attachment rules of the DJS parser.
type CommentPosition int

const (
	// Header comments sit directly above a value, sharing its LinesAbove.
	Header CommentPosition = iota
	// Footer comments trail the last child of a container, or the last
	// value of the document.
	Footer
	// EOL is a single comment on the same line as the value it follows.
	EOL
	// ValueComment sits between a Member's key and its value.
	ValueComment
	// Interior is the entire content of a container that holds nothing
	// but comments.
	Interior
)

// A Comment is one comment token, with the blank-line gap (if any) that
// followed it before the next comment or real content.
type Comment struct {
	Style      djs.CommentStyle
	Text       string
	BlankAfter int
}

// Comments holds every comment attached to a Value, indexed by position.
type Comments struct {
	Header   []Comment
	Footer   []Comment
	EOL      []Comment
	Value    []Comment
	Interior []Comment
}

func (c *Comments) byPosition(pos CommentPosition) *[]Comment {
	switch pos {
	case Header:
		return &c.Header
	case Footer:
		return &c.Footer
	case EOL:
		return &c.EOL
	case ValueComment:
		return &c.Value
	case Interior:
		return &c.Interior
	default:
		panic(fmt.Sprintf("invalid comment position %d", pos))
	}
}

// Get returns the comments attached at pos.
func (c *Comments) Get(pos CommentPosition) []Comment { return *c.byPosition(pos) }

// Set replaces the comments attached at pos.
func (c *Comments) Set(pos CommentPosition, cs []Comment) { *c.byPosition(pos) = cs }

// base is embedded in every concrete Value type to supply its formatting
// metadata without repeating the boilerplate accessors.
type base struct {
	format   Format
	comments Comments
}

// Format returns the value's blank-line metadata, for reading or mutation.
func (b *base) Format() *Format { return &b.format }

// Comments returns the value's attached comments, for reading or mutation.
func (b *base) Comments() *Comments { return &b.comments }

// A Value is any node of the DOM: Null, Bool, Number, String, Array,
// Object, or Member. Every concrete type carries formatting metadata even
// when it is empty, so a strict-JSON parse and a DJS parse produce values
// of the same shape.
type Value interface {
	// Format returns this value's blank-line metadata.
	Format() *Format
	// Comments returns this value's attached comments.
	Comments() *Comments
	// Kind reports which concrete type this value is.
	Kind() Kind
}

// Kind enumerates the concrete Value types.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
	MemberKind
)

// Null is the JSON null literal.
type Null struct{ base }

func (*Null) Kind() Kind { return NullKind }

// Bool is a JSON boolean literal.
type Bool struct {
	base
	Val bool
}

func (*Bool) Kind() Kind { return BoolKind }

// Number is a JSON or DJS numeric literal. Source preserves the exact
// text it was parsed from, including DJS extensions such as a leading
// '+' or a bare leading '.'; the writer writes Source in place of
// re-rendering Val whenever Source is non-empty.
type Number struct {
	base
	Val        float64
	Source     string
	IsInfinity bool // Val is +/-Inf because the source literal was (-)infinity
}

func (*Number) Kind() Kind { return NumberKind }

// String returns the decimal form of the number, or its preserved source
// text when one was recorded.
func (n *Number) String() string {
	if n.Source != "" {
		return n.Source
	}
	return strconv.FormatFloat(n.Val, 'g', -1, 64)
}

// String is a JSON or DJS string value.
type String struct {
	base
	Val    string
	Flavor djs.StringFlavor
}

func (*String) Kind() Kind { return StringKind }

// Array is a JSON array, or a DJS array (which permits a trailing comma
// and comments among its elements).
type Array struct {
	base
	Elements []Value
}

func (*Array) Kind() Kind { return ArrayKind }

// Len reports the number of elements.
func (a *Array) Len() int { return len(a.Elements) }

// Object is a JSON object, or a DJS object, including the synthetic
// "open root" object (one with no enclosing braces) that only a document
// root can be.
type Object struct {
	base
	Members []*Member
	// OpenRoot is true when this object was written (or should be
	// written) without enclosing braces, because it is the document
	// root and every one of its keys is a bare word or quoted string
	// followed directly by ':'.
	OpenRoot bool
}

func (*Object) Kind() Kind { return ObjectKind }

// Find returns the value of the first member with the given key, and
// whether one was found.
func (o *Object) Find(key string) (Value, bool) {
	for _, m := range o.Members {
		if m.Key.Text == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Key is an object member's key. In DJS a key may be a bare (unquoted)
// word; Flavor records which.
type Key struct {
	Text   string
	Flavor djs.StringFlavor
}

// NumericKey reports whether Text is the decimal text of a non-negative
// integer, and if so its value. This is how a numeric-key object member
// (DJS has no separate grammar production for one) is probed after being
// folded into an ordinary Member.
func (k Key) NumericKey() (int64, bool) {
	if k.Text == "" {
		return 0, false
	}
	for _, c := range k.Text {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(k.Text, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Member is a single key/value pair of an Object. Member is itself a
// Value so that the comment-attachment and formatting machinery has one
// uniform node to work with; its LinesBetween field (on the embedded
// Format) describes the gap between Key and Value, and ValueComment
// comments sit in that same gap.
type Member struct {
	base
	Key   Key
	Value Value
}

func (*Member) Kind() Kind { return MemberKind }

// Path locates a value by a sequence of object keys and array indices.
// A string element indexes an Object by key; an int element indexes an
// Array by position.
type Path []any

// Field walks v by the elements of p in order, returning an error that
// names the first step that failed.
func Field(v Value, p Path) (Value, error) {
	cur := v
	for i, step := range p {
		switch s := step.(type) {
		case string:
			obj, ok := cur.(*Object)
			if !ok {
				return nil, fmt.Errorf("path[%d]: %q: not an object (got %s)", i, s, cur.Kind())
			}
			val, ok := obj.Find(s)
			if !ok {
				return nil, fmt.Errorf("path[%d]: %q: no such member", i, s)
			}
			cur = val
		case int:
			arr, ok := cur.(*Array)
			if !ok {
				return nil, fmt.Errorf("path[%d]: %d: not an array (got %s)", i, s, cur.Kind())
			}
			if s < 0 || s >= len(arr.Elements) {
				return nil, fmt.Errorf("path[%d]: index %d out of range (len %d)", i, s, len(arr.Elements))
			}
			cur = arr.Elements[s]
		default:
			return nil, fmt.Errorf("path[%d]: invalid step type %T", i, step)
		}
	}
	return cur, nil
}

// ToValue converts a plain Go value (string, int, int64, float64, bool,
// nil, or another Value, plus []any and map[string]any built from those)
// into a formatting-free Value tree. It panics if v is not one of these
// types, exactly as the teacher's jwcc.ToValue does.
func ToValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return &Null{}
	case Value:
		return x
	case bool:
		return &Bool{Val: x}
	case float64:
		return &Number{Val: x}
	case int:
		return &Number{Val: float64(x)}
	case int64:
		return &Number{Val: float64(x)}
	case string:
		return &String{Val: x}
	case []any:
		arr := &Array{Elements: make([]Value, 0, len(x))}
		for _, e := range x {
			arr.Elements = append(arr.Elements, ToValue(e))
		}
		return arr
	case map[string]any:
		obj := &Object{}
		for k, e := range x {
			obj.Members = append(obj.Members, &Member{Key: Key{Text: k}, Value: ToValue(e)})
		}
		return obj
	default:
		panic(fmt.Sprintf("dom: cannot convert %T to a Value", v))
	}
}

// Standardize returns a deep copy of v with every Format and Comments
// cleared, so that a DJS document re-written after this step uses the
// writer's own defaults throughout instead of reproducing the original
// layout. Member keys and ordering are preserved.
func Standardize(v Value) Value {
	switch x := v.(type) {
	case *Null:
		return &Null{}
	case *Bool:
		return &Bool{Val: x.Val}
	case *Number:
		return &Number{Val: x.Val, Source: x.Source, IsInfinity: x.IsInfinity}
	case *String:
		return &String{Val: x.Val, Flavor: x.Flavor}
	case *Array:
		out := &Array{Elements: make([]Value, len(x.Elements))}
		for i, e := range x.Elements {
			out.Elements[i] = Standardize(e)
		}
		return out
	case *Object:
		out := &Object{OpenRoot: x.OpenRoot, Members: make([]*Member, len(x.Members))}
		for i, m := range x.Members {
			out.Members[i] = Standardize(m).(*Member)
		}
		return out
	case *Member:
		return &Member{Key: x.Key, Value: Standardize(x.Value)}
	default:
		panic(fmt.Sprintf("dom: Standardize: unhandled type %T", v))
	}
}

var kindStr = [...]string{
	NullKind:   "null",
	BoolKind:   "bool",
	NumberKind: "number",
	StringKind: "string",
	ArrayKind:  "array",
	ObjectKind: "object",
	MemberKind: "member",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindStr) {
		return "invalid"
	}
	return kindStr[k]
}

package goAudit

import (
	"fmt"
	"time"

	"github.com/mailru/easyjson/jwriter"
)

// Option configures a Document at construction time.
type Option func(*options)

type options struct {
	now              func() time.Time
	loc              *time.Location
	allowInvalidUTF8 bool
}

func defaultOptions() options {
	return options{now: time.Now}
}

// WithClock replaces the wall clock used by AddTimestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation sets the zone timestamps are rendered in. The default is the
// local zone.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.loc = loc
	}
}

// WithInvalidUTF8 accepts strings that are not valid UTF-8. Each invalid
// byte is serialized as the escape \ufffd. By default such strings
// put the document in the error state.
func WithInvalidUTF8(allow bool) Option {
	return func(o *options) {
		o.allowInvalidUTF8 = allow
	}
}

// Document is a JSON object or array under construction.
//
// Faults are sticky: the first failure is recorded, every later mutation is
// a no-op, and Serialize fails. Callers chain encoder calls and check once.
// A Document is owned by one goroutine at a time.
type Document struct {
	root *Value
	err  error
	opts options
}

func newDocument(kind Kind, opts []Option) *Document {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Document{root: containerValue(kind), opts: o}
}

// NewObject returns an empty JSON object document.
func NewObject(opts ...Option) *Document {
	return newDocument(KindObject, opts)
}

// NewArray returns an empty JSON array document.
func NewArray(opts ...Option) *Document {
	return newDocument(KindArray, opts)
}

func (d *Document) fail(err error) {
	if d != nil && d.err == nil {
		d.err = err
	}
}

// IsValid reports whether the document can still be mutated and serialized.
func (d *Document) IsValid() bool {
	return d != nil && d.err == nil
}

// IsInvalid is the negation of IsValid.
func (d *Document) IsInvalid() bool {
	return !d.IsValid()
}

// Release drops the tree. It is safe on errored documents and on documents
// already absorbed by a parent; the parent's copy is unaffected.
func (d *Document) Release() {
	if d == nil {
		return
	}
	d.root = nil
	d.fail(ErrDocumentReleased)
}

// Root exposes the tree for inspection. It is nil after Release or
// absorption.
func (d *Document) Root() *Value {
	if d == nil {
		return nil
	}
	return d.root
}

// take hands the tree to a parent and invalidates d.
func (d *Document) take() (*Value, error) {
	root, err := d.root, d.err
	d.root = nil
	d.fail(ErrDocumentConsumed)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// AssertIsArray puts the document in the error state unless it is an array.
func (d *Document) AssertIsArray() {
	if d.IsInvalid() {
		return
	}
	if d.root.kind != KindArray {
		d.fail(ErrNotArray)
	}
}

// GetArray returns a copy of the named array member as a new Document, or an
// empty array when the member is absent. Changes are stored back with
// AddObject(name, copy).
func (d *Document) GetArray(name string) *Document {
	return d.getMember(name, KindArray)
}

// GetObject is GetArray for object members.
func (d *Document) GetObject(name string) *Document {
	return d.getMember(name, KindObject)
}

func (d *Document) getMember(name string, kind Kind) *Document {
	if d == nil {
		out := newDocument(kind, nil)
		out.fail(ErrNilDocument)
		return out
	}

	out := &Document{root: containerValue(kind), opts: d.opts}
	switch {
	case d.err != nil:
		out.fail(d.err)
	case d.root.kind != KindObject:
		out.fail(ErrNotObject)
	default:
		v, ok := d.root.Get(name)
		if !ok {
			break
		}
		if v.kind != kind {
			out.fail(fmt.Errorf("%w: %q is %s, want %s", ErrKindMismatch, name, v.kind, kind))
			break
		}
		out.root = v.clone()
	}
	return out
}

// Serialize renders the compact JSON text of the document. It fails with
// ErrSerialization when the document is in the error state.
func (d *Document) Serialize() ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, ErrNilDocument)
	}
	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, d.err)
	}

	w := jwriter.Writer{NoEscapeHTML: true}
	if err := d.root.encode(&w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	out, err := w.BuildBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return out, nil
}

// ToString is Serialize returning a string.
func (d *Document) ToString() (string, error) {
	b, err := d.Serialize()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

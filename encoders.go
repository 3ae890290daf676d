package goAudit

import (
	"fmt"
	"unicode/utf8"

	"github.com/MrEthical07/goAudit/address"
	"github.com/MrEthical07/goAudit/guid"
	"github.com/MrEthical07/goAudit/sid"
)

const (
	timestampKey = "timestamp"
	versionKey   = "version"
)

// String returns a pointer to s, for the optional string encoders.
func String(s string) *string {
	return &s
}

// insert places v under key for object roots and appends it for array roots,
// where the key is ignored.
func (d *Document) insert(key string, v *Value) {
	if d.IsInvalid() {
		return
	}
	switch d.root.kind {
	case KindArray:
		d.root.push(v)
	case KindObject:
		if !d.validText(key) {
			return
		}
		d.root.set(key, v)
	}
}

func (d *Document) validText(s string) bool {
	if d.opts.allowInvalidUTF8 || utf8.ValidString(s) {
		return true
	}
	d.fail(fmt.Errorf("%w: %q", ErrInvalidUTF8, s))
	return false
}

func (d *Document) insertString(key, s string) {
	if d.IsInvalid() || !d.validText(s) {
		return
	}
	d.insert(key, stringValue(s))
}

// AddInt inserts an integer.
func (d *Document) AddInt(key string, v int64) {
	d.insert(key, intValue(v))
}

// AddBool inserts true or false.
func (d *Document) AddBool(key string, v bool) {
	d.insert(key, boolValue(v))
}

// AddString inserts the string byte for byte, or null when v is nil.
func (d *Document) AddString(key string, v *string) {
	if v == nil {
		d.insert(key, nullValue())
		return
	}
	d.insertString(key, *v)
}

// AddStringN inserts at most n bytes of v. A nil v or n <= 0 inserts null.
// Truncation counts bytes, so a multi-byte character cut at the boundary
// leaves invalid UTF-8 behind and is treated like any other invalid string.
func (d *Document) AddStringN(key string, v *string, n int) {
	if v == nil || n <= 0 {
		d.insert(key, nullValue())
		return
	}
	s := *v
	if len(s) > n {
		s = s[:n]
	}
	d.insertString(key, s)
}

// AddObject moves the tree of nested into d. nested is consumed whatever the
// outcome: it reports IsInvalid afterwards and its Release is a no-op for d.
// A nil nested inserts null.
func (d *Document) AddObject(key string, nested *Document) {
	if nested == nil {
		d.insert(key, nullValue())
		return
	}
	if nested == d {
		d.fail(ErrSelfReference)
		return
	}

	root, err := nested.take()
	if err != nil {
		d.fail(fmt.Errorf("%w: %q: %w", ErrInvalidNestedDocument, key, err))
		return
	}
	d.insert(key, root)
}

// AddTimestamp inserts "timestamp" with the current time in ISO-8601 form,
// microsecond precision and numeric zone offset.
func (d *Document) AddTimestamp() {
	if d.IsInvalid() {
		return
	}
	now := d.opts.now()
	if d.opts.loc != nil {
		now = now.In(d.opts.loc)
	} else {
		now = now.Local()
	}
	d.insert(timestampKey, stringValue(FormatISOTimestamp(now)))
}

// AddVersion inserts "version" as {"major": major, "minor": minor}.
func (d *Document) AddVersion(major, minor int) {
	v := objectValue()
	v.set("major", intValue(int64(major)))
	v.set("minor", intValue(int64(minor)))
	d.insert(versionKey, v)
}

// AddAddress inserts the family-tagged address text. nil and addresses of
// an unknown family insert null.
func (d *Document) AddAddress(key string, a *address.Address) {
	s, ok := a.Canonical()
	if !ok {
		d.insert(key, nullValue())
		return
	}
	d.insertString(key, s)
}

// AddSID inserts the S-R-A-... form, or null when s is nil.
func (d *Document) AddSID(key string, s *sid.SID) {
	if s == nil {
		d.insert(key, nullValue())
		return
	}
	d.insert(key, stringValue(s.String()))
}

// AddGUID inserts the lowercase hyphenated form, or null when g is nil.
func (d *Document) AddGUID(key string, g *guid.GUID) {
	if g == nil {
		d.insert(key, nullValue())
		return
	}
	d.insert(key, stringValue(g.String()))
}

package goAudit

import "errors"

var (
	// ErrSerialization is returned by Serialize and ToString for errored documents.
	ErrSerialization = errors.New("audit document serialization failed")
	// ErrDocumentReleased marks a document used after Release.
	ErrDocumentReleased = errors.New("audit document released")
	// ErrDocumentConsumed marks a document whose tree was absorbed by a parent.
	ErrDocumentConsumed = errors.New("audit document absorbed by parent")
	// ErrInvalidNestedDocument marks a parent that absorbed an errored document.
	ErrInvalidNestedDocument = errors.New("invalid nested audit document")
	// ErrInvalidUTF8 marks a document that received a non UTF-8 string.
	ErrInvalidUTF8 = errors.New("string is not valid utf-8")
	// ErrNotArray is set by AssertIsArray on non-array documents.
	ErrNotArray = errors.New("audit document is not an array")
	// ErrNotObject is set when a named lookup is made on an array document.
	ErrNotObject = errors.New("audit document is not an object")
	// ErrKindMismatch is set when a named member exists with another kind.
	ErrKindMismatch = errors.New("audit value kind mismatch")
	// ErrSelfReference is set when a document is added to itself.
	ErrSelfReference = errors.New("audit document added to itself")
	// ErrNilDocument is returned when a nil document is passed.
	ErrNilDocument = errors.New("nil audit document")
	// ErrEmitterClosed is returned by Send after Close.
	ErrEmitterClosed = errors.New("audit emitter closed")
	// ErrDeliveryFailed wraps sink errors returned by Send.
	ErrDeliveryFailed = errors.New("audit delivery failed")
)

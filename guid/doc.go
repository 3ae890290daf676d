// Package guid wraps github.com/google/uuid with the parsing and NDR byte
// layouts used by directory and file-access audit producers.
package guid

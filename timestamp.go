package goAudit

import "time"

const (
	isoTimestampLayout   = "2006-01-02T15:04:05.000000-0700"
	auditTimestampLayout = "Mon, 02 Jan 2006 15:04:05.000000 MST"
)

// FormatISOTimestamp renders t as used by AddTimestamp, for example
// 2018-03-20T10:23:45.123456+1300.
func FormatISOTimestamp(t time.Time) string {
	return t.Format(isoTimestampLayout)
}

// FormatAuditTimestamp renders t in the human readable form used for text
// audit lines, for example "Tue, 20 Mar 2018 10:23:45.123456 NZDT". Day and
// month names are always English.
func FormatAuditTimestamp(t time.Time) string {
	return t.Format(auditTimestampLayout)
}

// AuditTimestamp is FormatAuditTimestamp of the current local time.
func AuditTimestamp() string {
	return FormatAuditTimestamp(time.Now().Local())
}

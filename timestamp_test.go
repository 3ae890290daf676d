package goAudit

import (
	"strings"
	"testing"
	"time"
)

func TestFormatAuditTimestamp(t *testing.T) {
	nzdt := time.FixedZone("NZDT", 13*60*60)
	at := time.Date(2018, time.March, 20, 10, 23, 45, 123456789, nzdt)

	if got := FormatAuditTimestamp(at); got != "Tue, 20 Mar 2018 10:23:45.123456 NZDT" {
		t.Fatalf("unexpected audit timestamp %q", got)
	}
	if got := FormatISOTimestamp(at); got != "2018-03-20T10:23:45.123456+1300" {
		t.Fatalf("unexpected iso timestamp %q", got)
	}
}

func TestFormatAuditTimestampPadsFields(t *testing.T) {
	at := time.Date(2021, time.January, 3, 4, 5, 6, 7000, time.UTC)

	if got := FormatAuditTimestamp(at); got != "Sun, 03 Jan 2021 04:05:06.000007 UTC" {
		t.Fatalf("unexpected audit timestamp %q", got)
	}
	if got := FormatISOTimestamp(at); got != "2021-01-03T04:05:06.000007+0000" {
		t.Fatalf("unexpected iso timestamp %q", got)
	}
}

func TestAuditTimestampIsCurrentLocalTime(t *testing.T) {
	before := time.Now()
	got := AuditTimestamp()
	after := time.Now()

	days := []string{"Mon, ", "Tue, ", "Wed, ", "Thu, ", "Fri, ", "Sat, ", "Sun, "}
	english := false
	for _, d := range days {
		if strings.HasPrefix(got, d) {
			english = true
		}
	}
	if !english {
		t.Fatalf("expected english day name, got %q", got)
	}

	ts, err := time.ParseInLocation(auditTimestampLayout, got, time.Local)
	if err != nil {
		t.Fatalf("audit timestamp %q does not parse: %v", got, err)
	}
	if ts.Before(before.Truncate(time.Microsecond).Add(-time.Second)) || ts.After(after.Add(time.Second)) {
		t.Fatalf("audit timestamp %s outside [%s, %s]", ts, before, after)
	}
}

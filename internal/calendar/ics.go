// Package calendar renders workouts as an iCalendar (RFC 5545) feed.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const ContentType = "text/calendar; charset=utf-8"

// Event is one VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	// Reminder is minutes before Start; zero means no alarm.
	Reminder int
}

// Render builds a VCALENDAR containing events. stamp is used as DTSTAMP.
func Render(name string, events []Event, stamp time.Time) []byte {
	var sb strings.Builder

	writeLine(&sb, "BEGIN:VCALENDAR")
	writeLine(&sb, "VERSION:2.0")
	writeLine(&sb, "PRODID:-//coach-app//Workouts//RU")
	writeLine(&sb, "CALSCALE:GREGORIAN")
	writeLine(&sb, "METHOD:PUBLISH")
	if name != "" {
		writeLine(&sb, "X-WR-CALNAME:"+escapeICS(name))
	}

	for _, e := range events {
		writeLine(&sb, "BEGIN:VEVENT")
		writeLine(&sb, "UID:"+e.UID)
		writeLine(&sb, "DTSTAMP:"+formatICSTime(stamp))
		writeLine(&sb, "DTSTART:"+formatICSTime(e.Start))
		writeLine(&sb, "DTEND:"+formatICSTime(e.End))
		writeLine(&sb, "SUMMARY:"+escapeICS(e.Summary))
		if e.Description != "" {
			writeLine(&sb, "DESCRIPTION:"+escapeICS(e.Description))
		}
		if e.Location != "" {
			writeLine(&sb, "LOCATION:"+escapeICS(e.Location))
		}
		if e.Reminder > 0 {
			writeLine(&sb, "BEGIN:VALARM")
			writeLine(&sb, "ACTION:DISPLAY")
			writeLine(&sb, fmt.Sprintf("TRIGGER:-PT%dM", e.Reminder))
			writeLine(&sb, "DESCRIPTION:"+escapeICS(e.Summary))
			writeLine(&sb, "END:VALARM")
		}
		writeLine(&sb, "END:VEVENT")
	}

	writeLine(&sb, "END:VCALENDAR")
	return []byte(sb.String())
}

// maxLineOctets is the content line limit, excluding CRLF.
const maxLineOctets = 75

// writeLine folds line into CRLF-space continuations of at most 75 octets,
// never splitting a UTF-8 sequence.
func writeLine(sb *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		sb.WriteString(line[:cut])
		sb.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineOctets - 1 // the leading space counts
	}
	sb.WriteString(line)
	sb.WriteString("\r\n")
}

func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

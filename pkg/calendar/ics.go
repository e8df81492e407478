// Package calendar renders booking invites as iCalendar payloads and
// Google Calendar quick-add links
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const icsTimeLayout = "20060102T150405Z"

// Invite describes a single calendar entry for a confirmed booking
type Invite struct {
	UID         string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Organizer   string
	Location    string
}

// NewInvite builds an invite for a booking of the given event slot
func NewInvite(bookingID, domain, title, description string, start time.Time, durationMin int, organizerEmail string) *Invite {
	return &Invite{
		UID:         fmt.Sprintf("%s@%s", bookingID, domain),
		Title:       title,
		Description: description,
		Start:       start.UTC(),
		End:         start.UTC().Add(time.Duration(durationMin) * time.Minute),
		Organizer:   organizerEmail,
		Location:    "Online",
	}
}

// ICS renders the invite as a VCALENDAR document
func (i *Invite) ICS() string {
	var b strings.Builder

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//eventmarket//booking//EN")
	writeLine("CALSCALE:GREGORIAN")
	writeLine("METHOD:PUBLISH")
	writeLine("BEGIN:VEVENT")
	writeLine("UID:" + i.UID)
	writeLine("DTSTAMP:" + time.Now().UTC().Format(icsTimeLayout))
	writeLine("DTSTART:" + i.Start.Format(icsTimeLayout))
	writeLine("DTEND:" + i.End.Format(icsTimeLayout))
	writeLine("SUMMARY:" + escapeText(i.Title))
	if i.Description != "" {
		writeLine("DESCRIPTION:" + escapeText(i.Description))
	}
	writeLine("LOCATION:" + escapeText(i.Location))
	if i.Organizer != "" {
		writeLine("ORGANIZER:MAILTO:" + i.Organizer)
	}
	writeLine("END:VEVENT")
	writeLine("END:VCALENDAR")

	return b.String()
}

// GoogleLink builds a Google Calendar quick-add URL for the invite
func (i *Invite) GoogleLink() string {
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", i.Title)
	params.Set("dates", i.Start.Format(icsTimeLayout)+"/"+i.End.Format(icsTimeLayout))
	params.Set("details", i.Description)
	params.Set("location", i.Location)

	return "https://calendar.google.com/calendar/render?" + params.Encode()
}

// escapeText escapes characters that carry meaning in iCalendar text values
func escapeText(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}

package calendar

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewInvite тестирует сборку приглашения из данных бронирования
func TestNewInvite(t *testing.T) {
	start := time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC)

	invite := NewInvite("booking-42", "eventmarket.local", "Вечер джаза", "Живой концерт", start, 90, "host@eventmarket.local")

	assert.Equal(t, "booking-42@eventmarket.local", invite.UID)
	assert.Equal(t, start, invite.Start)
	assert.Equal(t, start.Add(90*time.Minute), invite.End)
	assert.Equal(t, "host@eventmarket.local", invite.Organizer)
	assert.Equal(t, "Online", invite.Location)
}

// TestInviteICS тестирует формат iCalendar
func TestInviteICS(t *testing.T) {
	start := time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC)
	invite := NewInvite("booking-42", "eventmarket.local", "Yoga; morning", "Bring a mat,\nplease", start, 60, "host@eventmarket.local")

	ics := invite.ICS()

	// Каждая строка завершается CRLF
	lines := strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n")
	for _, line := range lines {
		assert.NotContains(t, line, "\n")
	}

	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "END:VCALENDAR", lines[len(lines)-1])

	assert.Contains(t, ics, "UID:booking-42@eventmarket.local\r\n")
	assert.Contains(t, ics, "DTSTART:20250701T183000Z\r\n")
	assert.Contains(t, ics, "DTEND:20250701T193000Z\r\n")
	assert.Contains(t, ics, "ORGANIZER:MAILTO:host@eventmarket.local\r\n")

	// Спецсимволы текста экранированы
	assert.Contains(t, ics, "SUMMARY:Yoga\\; morning\r\n")
	assert.Contains(t, ics, "DESCRIPTION:Bring a mat\\,\\nplease\r\n")
}

// TestInviteICSOmitsEmptyFields тестирует пропуск пустых полей
func TestInviteICSOmitsEmptyFields(t *testing.T) {
	start := time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC)
	invite := NewInvite("booking-1", "eventmarket.local", "Title", "", start, 30, "")

	ics := invite.ICS()
	assert.NotContains(t, ics, "DESCRIPTION:")
	assert.NotContains(t, ics, "ORGANIZER:")
}

// TestGoogleLink тестирует ссылку быстрого добавления в Google Календарь
func TestGoogleLink(t *testing.T) {
	start := time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC)
	invite := NewInvite("booking-42", "eventmarket.local", "Вечер джаза", "Живой концерт", start, 90, "host@eventmarket.local")

	link := invite.GoogleLink()

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", parsed.Host)

	params := parsed.Query()
	assert.Equal(t, "TEMPLATE", params.Get("action"))
	assert.Equal(t, "Вечер джаза", params.Get("text"))
	assert.Equal(t, "20250701T183000Z/20250701T200000Z", params.Get("dates"))
}

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatName(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		senders  []string
		want     string
	}{
		{"one sender", "chat.txt", []string{"Alice Smith"}, "Chat with Alice"},
		{"two senders", "chat.txt", []string{"Alice Smith", "Bob"}, "Alice & Bob"},
		{"group", "chat.txt", []string{"Alice", "Bob", "Carol", "Dan"}, "Alice, Bob & 2 others"},
		{"phone numbers skipped", "chat.txt", []string{"+44 7700 900123", "Bob"}, "Chat with Bob"},
		{"only numbers uses file", "WhatsApp Chat with Mum.txt", []string{"+44 7700 900123"}, "WhatsApp Chat with Mum"},
		{"nested path", "/tmp/exports/holiday.txt", nil, "holiday"},
		{"no file name", "", nil, "Bloop Analysis"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChatName(tc.filename, tc.senders))
		})
	}
}

func TestDisplayNames(t *testing.T) {
	got := DisplayNames([]string{"  ", "José María", "123", "~ Zoë", "Ängel"})
	assert.Equal(t, []string{"José", "Ängel"}, got)
}

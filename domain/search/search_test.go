package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Query
	}{
		{
			name:     "Plain terms",
			input:    "lunch today",
			expected: Query{Terms: "lunch today", Limit: DefaultLimit},
		},
		{
			name:     "Room and limit flags",
			input:    "/find invoice --room general --limit 5",
			expected: Query{Terms: "invoice", RoomID: "general", Limit: 5},
		},
		{
			name:     "Limit is clamped",
			input:    "invoice --limit 5000",
			expected: Query{Terms: "invoice", Limit: MaxLimit},
		},
		{
			name:     "Unknown flags and bad limits are ignored",
			input:    "invoice --business 0.8 --limit many",
			expected: Query{Terms: "invoice", Limit: DefaultLimit},
		},
		{
			name:     "Trailing flag is a term",
			input:    "invoice --room",
			expected: Query{Terms: "invoice --room", Limit: DefaultLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.expected, ParseQuery(tt.input))
		})
	}
}

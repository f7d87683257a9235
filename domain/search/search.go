package search

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query is a full-text search over room messages, optionally restricted to one room.
type Query struct {
	Terms  string
	RoomID string
	Limit  int
}

// ParseQuery reads command-line style input.
// Example: invoice due --room general --limit 5
func ParseQuery(input string) Query {
	query := Query{Limit: DefaultLimit}

	parts := strings.Fields(input)
	var terms []string
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			switch strings.TrimPrefix(part, "--") {
			case "room":
				query.RoomID = parts[i+1]
			case "limit":
				if limit, err := strconv.Atoi(parts[i+1]); err == nil {
					query.Limit = limit
				}
			}
			i++
			continue
		}
		if !strings.HasPrefix(part, "/") {
			terms = append(terms, part)
		}
	}
	query.Terms = strings.Join(terms, " ")
	return query.Bounded()
}

// Bounded clamps the limit into [1, MaxLimit], DefaultLimit when unset.
func (q Query) Bounded() Query {
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	q.Terms = strings.TrimSpace(q.Terms)
	return q
}

package domain

import (
	"chat-hub/errors"
	"fmt"
	"strings"
)

// ConversationKey identifies a private conversation between two names.
// It is computed on demand and never stored as an entity of its own.
type ConversationKey string

// DeriveConversationKey returns the same key for (a, b) and (b, a).
// The length of the first name is encoded in the key, so the split point is
// unambiguous and two different pairs cannot share a key even when a name
// contains the separator.
func DeriveConversationKey(a, b string) (ConversationKey, error) {
	first, second, err := orderPair(a, b)
	if err != nil {
		return "", err
	}
	return ConversationKey(fmt.Sprintf("dm:%d:%s:%s", len(first), first, second)), nil
}

// Participants returns the pair sorted the same way the key is.
func Participants(a, b string) ([]string, error) {
	first, second, err := orderPair(a, b)
	if err != nil {
		return nil, err
	}
	return []string{first, second}, nil
}

func orderPair(a, b string) (string, string, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return "", "", errors.ErrEmptyName
	}
	if b < a {
		a, b = b, a
	}
	return a, b, nil
}

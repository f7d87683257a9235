// Package domain contains core concepts of the chat system.
// This file defines the Member value tracked by memberships.
// No runtime, network, or UI logic should be added here.
package domain

// Member is one live connection joined to a target under a display name.
type Member struct {
	ConnID string
	Name   string
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeaderMatches(t *testing.T) {
	stored := Leader{
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie.dupont@example.org",
		Phone:     "+32 470 11 22 33",
	}

	t.Run("identical fields match", func(t *testing.T) {
		assert.True(t, stored.Matches("Marie", "Dupont", "marie.dupont@example.org", "+32 470 11 22 33"))
	})

	// Unit identity is frozen at first registration; any single divergent
	// field is a conflict, not an update.
	mismatches := map[string][4]string{
		"first name": {"Jeanne", "Dupont", "marie.dupont@example.org", "+32 470 11 22 33"},
		"last name":  {"Marie", "Durand", "marie.dupont@example.org", "+32 470 11 22 33"},
		"email":      {"Marie", "Dupont", "autre@example.org", "+32 470 11 22 33"},
		"phone":      {"Marie", "Dupont", "marie.dupont@example.org", "+32 499 00 00 00"},
	}
	for name, f := range mismatches {
		t.Run("differing "+name+" is a mismatch", func(t *testing.T) {
			assert.False(t, stored.Matches(f[0], f[1], f[2], f[3]))
		})
	}

	t.Run("comparison is exact, not case-folded", func(t *testing.T) {
		assert.False(t, stored.Matches("Marie", "Dupont", "Marie.Dupont@example.org", "+32 470 11 22 33"))
	})
}

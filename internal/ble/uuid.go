package ble

import (
	"fmt"

	"github.com/google/uuid"
	"tinygo.org/x/bluetooth"
)

// parseUUID converts a textual 128-bit UUID into the stack's representation.
func parseUUID(s string) (bluetooth.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return bluetooth.UUID{}, fmt.Errorf("ble: parse uuid %q: %w", s, err)
	}
	return bluetooth.NewUUID(u), nil
}

// ValidateUUID reports whether s is a well-formed 128-bit UUID.
func ValidateUUID(s string) error {
	_, err := parseUUID(s)
	return err
}

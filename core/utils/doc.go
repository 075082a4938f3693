// Package utils provides common utility functions for grocer.
// It includes the loose type conversions used to read server records, whose
// fields arrive as JSON numbers, strings, or nothing at all depending on the command.
package utils

// Package sanitizer normalizes free-text input before validation and
// persistence: whitespace collapsing for names and labels, rune-safe
// truncation for negotiation notes, and E.164 phone normalization.
//
// Sanitization is lossy on purpose. It runs before validation so that
// validation always sees the value that will actually be stored.
package sanitizer

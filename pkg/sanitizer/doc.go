// Package sanitizer normalizes user input before it is validated or sent upstream.
//
// All functions are idempotent and never return errors; invalid input yields an
// empty string so that validation rejects it downstream.
//
// Normalization includes:
//   - Names: collapse whitespace, trim
//   - E-mail: trim, lowercase
//   - Search terms: collapse whitespace, lowercase
//   - Phone numbers: E.164 (Vietnam first, then international)
//   - URLs: enforce https, lowercase host
//   - Slices: remove duplicates and empty values after normalization
package sanitizer

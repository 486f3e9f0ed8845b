// Package sanitizer normalizes free-form input before validation and storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized comes back empty.
//
// Normalization includes:
//   - Phone numbers: E.164 format (+[country][number])
//   - Names and specializations: collapsed whitespace, trimmed
//   - Licence numbers: upper case, letters and digits only
//   - Patient and doctor notes: trimmed, inner line breaks kept
package sanitizer

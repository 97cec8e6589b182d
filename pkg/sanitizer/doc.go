// Package sanitizer provides input normalization for request data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings rather than errors.
//
// Normalization includes:
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Destinations: Collapsed whitespace, case preserved ("  Costa   Rica " becomes "Costa Rica")
//   - Categories: Lowercase, collapsed whitespace
//   - Identifiers: Trimmed, inner whitespace removed
//   - Base URLs: Scheme enforced, trailing slashes removed
package sanitizer

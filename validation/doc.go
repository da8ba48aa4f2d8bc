// Package validation checks the structure of login credentials before any store access.
//
// Validation is exhaustive: both fields are always checked and every violation is
// reported in one [Errors] value, so a caller can correct all of them in one round trip.
package validation

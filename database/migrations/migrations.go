// Package migrations holds the storefront schema. Each migration registers
// itself from init, so importing this package is enough for the CLI and for
// tests to see the full schema.
package migrations

// Package seeders fills an empty database with demo data.
//
// Seeders register themselves from init and run in registration order:
//
//	func init() {
//	    seeders.Register("users", seedUsers)
//	}
//
// Then run via CLI: storefront seed
package seeders

import (
	"fmt"
	"io"
	"sync"

	"gorm.io/gorm"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in one transaction, stopping on
// the first error. Progress lines go to out.
func RunAll(db *gorm.DB, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, e := range current {
			fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
			if err := e.fn(tx); err != nil {
				fmt.Fprintln(out, "FAILED")
				return fmt.Errorf("seeder %q: %w", e.name, err)
			}
			fmt.Fprintln(out, "done")
		}
		return nil
	})
}

package infra_badger_init

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Open opens a badger db at dir, or an in-memory one when dir is empty.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts.WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	return db, nil
}

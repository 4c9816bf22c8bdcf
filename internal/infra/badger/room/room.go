package infra_badger_room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/humanbelnik/moviematch/internal/model"
)

const keyPrefix = "room:"

func key(code string) []byte {
	return []byte(keyPrefix + code)
}

// Repository keeps one JSON document per room under "room:{code}".
type Repository struct {
	db     *badger.DB
	logger *slog.Logger
	// Zero keeps entries until deleted.
	retention time.Duration
}

type Option func(*Repository)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// WithRetention lets badger drop a room on its own once CreatedAt+d passes,
// covering rooms whose explicit delete never ran.
func WithRetention(d time.Duration) Option {
	return func(r *Repository) {
		r.retention = d
	}
}

func New(db *badger.DB, opts ...Option) *Repository {
	r := &Repository{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Save(ctx context.Context, room *model.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	entry := badger.NewEntry(key(room.InviteCode), data)
	if r.retention > 0 {
		entry.ExpiresAt = uint64(room.CreatedAt.Add(r.retention).Unix())
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

func (r *Repository) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(code))
	})
}

func (r *Repository) LoadAll(ctx context.Context) ([]*model.Room, error) {
	var rooms []*model.Room
	prefix := []byte(keyPrefix)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var room model.Room
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &room)
			})
			if err != nil {
				r.logger.Warn("skipping undecodable room",
					slog.String("key", string(item.Key())),
					slog.String("error", err.Error()),
				)
				continue
			}
			rooms = append(rooms, &room)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	return rooms, nil
}

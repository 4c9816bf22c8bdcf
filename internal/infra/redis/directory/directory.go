package infra_redis_directory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/samber/lo"
)

const DefaultTTL = 24 * time.Hour

// Driver lists joinable rooms. Each entry lives under its own key with a
// TTL, and a set of codes indexes them. Codes whose entry has expired are
// pruned from the set on List.
type Driver struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

type Option func(*Driver)

func WithTTL(ttl time.Duration) Option {
	return func(d *Driver) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

func New(
	client *redis.Client,
	key string,
	opts ...Option,
) *Driver {
	d := &Driver{
		client: client,
		key:    key,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Upsert(ctx context.Context, entry model.DirectoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = d.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Set(d.entryKey(entry.InviteCode), data, d.ttl)
		pipe.SAdd(d.setKey(), entry.InviteCode)
		return nil
	})
	return err
}

func (d *Driver) Remove(ctx context.Context, code string) error {
	_, err := d.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Del(d.entryKey(code))
		pipe.SRem(d.setKey(), code)
		return nil
	})
	return err
}

// List returns entries oldest first.
func (d *Driver) List(ctx context.Context) ([]model.DirectoryEntry, error) {
	codes, err := d.client.SMembers(d.setKey()).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.DirectoryEntry{}, nil
		}
		return nil, err
	}
	if len(codes) == 0 {
		return []model.DirectoryEntry{}, nil
	}

	values, err := d.client.MGet(lo.Map(codes, func(code string, _ int) string {
		return d.entryKey(code)
	})...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.DirectoryEntry, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, codes[i])
			continue
		}
		var entry model.DirectoryEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			stale = append(stale, codes[i])
			continue
		}
		entries = append(entries, entry)
	}

	if len(stale) > 0 {
		if err := d.client.SRem(d.setKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune stale codes: %w", err)
		}
	}

	slices.SortFunc(entries, func(a, b model.DirectoryEntry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.InviteCode, b.InviteCode)
	})
	return entries, nil
}

func (d *Driver) setKey() string {
	return d.getFullKey("rooms")
}

func (d *Driver) entryKey(code string) string {
	return d.getFullKey("room:" + code)
}

func (d *Driver) getFullKey(key string) string {
	if d.key != "" {
		return d.key + ":" + key
	}
	return key
}

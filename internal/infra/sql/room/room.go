package infra_sql_room

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

// Driver persists rooms as JSON documents keyed by invite code. The same
// statements run on postgres and sqlite.
type Driver struct {
	db     *sqlx.DB
	logger *slog.Logger
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func New(db *sqlx.DB, opts ...Option) *Driver {
	d := &Driver{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type roomDTO struct {
	Code      string `db:"code"`
	ID        string `db:"id"`
	CreatedAt int64  `db:"created_at"`
	Payload   string `db:"payload"`
}

func (d *Driver) InitSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init rooms schema: %w", err)
		}
	}
	return nil
}

func (d *Driver) Save(ctx context.Context, room *model.Room) error {
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room: %w", err)
	}

	query := d.db.Rebind(`
		INSERT INTO rooms (code, id, created_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			id = excluded.id,
			created_at = excluded.created_at,
			payload = excluded.payload
	`)

	_, err = d.db.ExecContext(ctx, query, room.InviteCode, room.ID, room.CreatedAt.UnixMilli(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// Delete is idempotent.
func (d *Driver) Delete(ctx context.Context, code string) error {
	query := d.db.Rebind(`DELETE FROM rooms WHERE code = ?`)

	if _, err := d.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// LoadAll skips rows whose payload no longer decodes.
func (d *Driver) LoadAll(ctx context.Context) ([]*model.Room, error) {
	var rows []roomDTO
	query := `SELECT code, id, created_at, payload FROM rooms ORDER BY created_at, code`

	if err := d.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	rooms := make([]*model.Room, 0, len(rows))
	for _, row := range rows {
		var room model.Room
		if err := json.Unmarshal([]byte(row.Payload), &room); err != nil {
			d.logger.Warn("skipping undecodable room",
				slog.String("room_code", row.Code),
				slog.String("error", err.Error()),
			)
			continue
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}

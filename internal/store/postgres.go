package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE pgx reports when an insert hits a unique
// constraint; room code collisions surface this way.
const uniqueViolation = "23505"

// Postgres is the pgx-backed Store implementation.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to the database behind url, applies the embedded
// migrations, and returns the store.
func NewPostgres(ctx context.Context, url string, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	p := &Postgres{pool: pool, log: log}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }

// CreateRoom inserts a room with a fresh random code, regenerating on code
// collision up to the retry budget.
func (p *Postgres) CreateRoom(ctx context.Context) (string, error) {
	for range codeAttempts {
		code, err := newRoomCode()
		if err != nil {
			return "", err
		}

		_, err = p.pool.Exec(ctx, `
			INSERT INTO rooms (room_code) VALUES ($1)
		`, code)
		if err == nil {
			return code, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			p.log.Warn("room code collision, retrying", "code", code)
			continue
		}
		return "", fmt.Errorf("insert room: %w", err)
	}

	return "", ErrCodeSpaceExhausted
}

// RoomByCode fetches a room by its code.
func (p *Postgres) RoomByCode(ctx context.Context, code string) (Room, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, room_code, created_at FROM rooms WHERE room_code = $1
	`, code)

	var r Room
	if err := row.Scan(&r.ID, &r.Code, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, fmt.Errorf("select room: %w", err)
	}
	return r, nil
}

// CreateMessage inserts a message and returns it with the assigned id and
// timestamp.
func (p *Postgres) CreateMessage(ctx context.Context, roomCode, sender, content string) (Message, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO messages (room_code, sender, content)
		VALUES ($1, $2, $3)
		RETURNING id, room_code, sender, content, timestamp
	`, roomCode, sender, content)

	var m Message
	if err := row.Scan(&m.ID, &m.RoomCode, &m.Sender, &m.Content, &m.Timestamp); err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// MessagesByRoom returns the most recent limit messages oldest first.
func (p *Postgres) MessagesByRoom(ctx context.Context, roomCode string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, room_code, sender, content, timestamp
		FROM (
			SELECT id, room_code, sender, content, timestamp
			FROM messages
			WHERE room_code = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id ASC
	`, roomCode, limit)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.RoomCode, &m.Sender, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

package chat

import (
	"context"
	"database/sql"
	"time"
)

// Message is one stored exchange in the chat history.
type Message struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, m *Message) error
	ListRecent(ctx context.Context, limit int) ([]Message, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, m *Message) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO chat_history (session_id, user_message, bot_response)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		m.SessionID, m.UserMessage, m.BotResponse,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *PostgresRepo) ListRecent(ctx context.Context, limit int) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, user_message, bot_response, created_at
		FROM chat_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserMessage, &m.BotResponse, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

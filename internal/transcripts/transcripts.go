package transcripts

import (
	"context"
	"database/sql"
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Transcription is one row in the transcriptions table. Raw and corrected
// text are both kept so a correction-rule change can be replayed offline.
type Transcription struct {
	ID                 int64
	YouTubeURL         string
	Engine             string
	Model              string
	RawText            string
	CorrectedText      string
	ProcessingDuration float64
	Status             string
	ErrorMessage       string
	SettingsID         int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Repository interface {
	Create(ctx context.Context, t *Transcription) (int64, error)
	Complete(ctx context.Context, id int64, rawText, correctedText string, duration float64) error
	Fail(ctx context.Context, id int64, errorMessage string) error
	GetByID(ctx context.Context, id int64) (*Transcription, error)
	ListRecent(ctx context.Context, limit int) ([]Transcription, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, t *Transcription) (int64, error) {
	settingsID := t.SettingsID
	if settingsID == 0 {
		settingsID = 1
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transcriptions (youtube_url, engine, model, status, settings_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		t.YouTubeURL, t.Engine, t.Model, StatusProcessing, settingsID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepo) Complete(ctx context.Context, id int64, rawText, correctedText string, duration float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transcriptions
		SET raw_text = $1, corrected_text = $2, processing_duration = $3,
		    status = $4, updated_at = NOW()
		WHERE id = $5`,
		rawText, correctedText, duration, StatusCompleted, id,
	)
	return err
}

func (r *PostgresRepo) Fail(ctx context.Context, id int64, errorMessage string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transcriptions
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3`,
		StatusError, errorMessage, id,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (*Transcription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, youtube_url, engine, model, COALESCE(raw_text, ''),
		       COALESCE(corrected_text, ''), COALESCE(processing_duration, 0),
		       status, COALESCE(error_message, ''), settings_id, created_at, updated_at
		FROM transcriptions
		WHERE id = $1`, id)

	var t Transcription
	err := row.Scan(&t.ID, &t.YouTubeURL, &t.Engine, &t.Model, &t.RawText,
		&t.CorrectedText, &t.ProcessingDuration, &t.Status, &t.ErrorMessage,
		&t.SettingsID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepo) ListRecent(ctx context.Context, limit int) ([]Transcription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, youtube_url, engine, model, COALESCE(raw_text, ''),
		       COALESCE(corrected_text, ''), COALESCE(processing_duration, 0),
		       status, COALESCE(error_message, ''), settings_id, created_at, updated_at
		FROM transcriptions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transcription
	for rows.Next() {
		var t Transcription
		if err := rows.Scan(&t.ID, &t.YouTubeURL, &t.Engine, &t.Model, &t.RawText,
			&t.CorrectedText, &t.ProcessingDuration, &t.Status, &t.ErrorMessage,
			&t.SettingsID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

package settings

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "gemini_api_key", "whisper_model", "custom_prompts"}).
		AddRow(1, "key-123", "base", "{}")
	mock.ExpectQuery("SELECT id, gemini_api_key, whisper_model, custom_prompts FROM settings").
		WillReturnRows(rows)

	repo := NewPostgresRepo(db)
	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-123", s.GeminiAPIKey)
	assert.Equal(t, "base", s.WhisperModel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepoUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE settings").
		WithArgs("new-key", "small", "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepo(db)
	err = repo.Update(context.Background(), &Settings{GeminiAPIKey: "new-key", WhisperModel: "small", CustomPrompts: "{}"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceUpdateMergesFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "gemini_api_key", "whisper_model", "custom_prompts"}).
		AddRow(1, "existing-key", "base", "")
	mock.ExpectQuery("SELECT id, gemini_api_key, whisper_model, custom_prompts FROM settings").
		WillReturnRows(rows)
	// Whisper model changes, the stored key survives.
	mock.ExpectExec("UPDATE settings").
		WithArgs("existing-key", "medium", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewService(NewPostgresRepo(db))
	err = svc.Update(context.Background(), &Settings{WhisperModel: "medium"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

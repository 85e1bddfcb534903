package transcripts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragbot/internal/testutils"
	"ragbot/internal/transcripts"
)

func TestTranscriptsRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	repo := transcripts.NewPostgresRepo(s.DB)
	ctx := context.Background()

	// 1. Create
	id, err := repo.Create(ctx, &transcripts.Transcription{
		YouTubeURL: "https://youtu.be/integration",
		Engine:     "whisper.cpp",
		Model:      "base",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	created, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, transcripts.StatusProcessing, created.Status)
	assert.Equal(t, int64(1), created.SettingsID)

	// 2. Complete
	err = repo.Complete(ctx, id, "raw transcript", "Raw transcript.", 4.2)
	require.NoError(t, err)

	done, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, transcripts.StatusCompleted, done.Status)
	assert.Equal(t, "raw transcript", done.RawText)
	assert.Equal(t, "Raw transcript.", done.CorrectedText)
	assert.InDelta(t, 4.2, done.ProcessingDuration, 0.001)

	// 3. Fail a second record
	id2, err := repo.Create(ctx, &transcripts.Transcription{
		YouTubeURL: "https://youtu.be/failing",
		Engine:     "whisper.cpp",
		Model:      "base",
	})
	require.NoError(t, err)

	err = repo.Fail(ctx, id2, "download failed")
	require.NoError(t, err)

	failed, err := repo.GetByID(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, transcripts.StatusError, failed.Status)
	assert.Equal(t, "download failed", failed.ErrorMessage)

	// 4. Recent list ordering
	list, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

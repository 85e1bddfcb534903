package settings

import (
	"context"
)

// Settings is the single-row application configuration callers can change at
// runtime: provider credentials and the transcription model. The row id is
// fixed; this deployment is single-user.
type Settings struct {
	ID            int    `json:"-"`
	GeminiAPIKey  string `json:"gemini_api_key"`
	WhisperModel  string `json:"whisper_model"`
	CustomPrompts string `json:"custom_prompts"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

// Update merges non-empty fields over the stored settings, so a caller can
// change the whisper model without re-sending the api key.
func (s *Service) Update(ctx context.Context, in *Settings) error {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}
	if in.GeminiAPIKey != "" {
		cur.GeminiAPIKey = in.GeminiAPIKey
	}
	if in.WhisperModel != "" {
		cur.WhisperModel = in.WhisperModel
	}
	if in.CustomPrompts != "" {
		cur.CustomPrompts = in.CustomPrompts
	}
	return s.repo.Update(ctx, cur)
}

package services

import (
	"context"

	"github.com/wondercomic/wondercomic-backend/internal/platform/apierr"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
	"github.com/wondercomic/wondercomic-backend/internal/repos"
	"github.com/wondercomic/wondercomic-backend/internal/types"
)

// StoryGenService runs the full generate-and-save pipeline: script, then
// cover and panel images strictly in order, then one atomic save. Any
// failure is terminal for the invocation; nothing partial is persisted.
type StoryGenService struct {
	client GeminiClient
	repo   repos.StoryRepo
	log    *logger.Logger
}

func NewStoryGenService(client GeminiClient, repo repos.StoryRepo, baseLog *logger.Logger) *StoryGenService {
	return &StoryGenService{
		client: client,
		repo:   repo,
		log:    baseLog.With("service", "StoryGenService"),
	}
}

func (s *StoryGenService) GenerateAndSave(ctx context.Context, profile types.KidProfileInput) (*types.Story, error) {
	script, err := s.client.GenerateScript(ctx, profile)
	if err != nil {
		s.log.Error("Script generation failed", "name", profile.Name, "error", err)
		return nil, apierr.GenerationFailed("Story generation failed", err)
	}

	cover, err := s.client.GeneratePanelImage(ctx, script.CoverImagePrompt, script.CharacterDescription, profile.ArtStyle)
	if err != nil {
		s.log.Error("Cover image generation failed", "title", script.Title, "error", err)
		return nil, apierr.GenerationFailed("Image generation failed", err)
	}

	panelImages := make([]string, len(script.Panels))
	for i, panel := range script.Panels {
		img, err := s.client.GeneratePanelImage(ctx, panel.ImagePrompt, script.CharacterDescription, profile.ArtStyle)
		if err != nil {
			s.log.Error("Panel image generation failed", "title", script.Title, "panel", i, "error", err)
			return nil, apierr.GenerationFailed("Image generation failed", err)
		}
		panelImages[i] = img
	}

	input := types.StoryCreateInput{
		Profile:              profile,
		Title:                script.Title,
		Foreword:             script.Foreword,
		CharacterDescription: script.CharacterDescription,
		CoverImagePrompt:     script.CoverImagePrompt,
		CoverImageBase64:     cover,
		Panels:               make([]types.PanelInput, len(script.Panels)),
	}
	for i, panel := range script.Panels {
		input.Panels[i] = types.PanelInput{
			PanelOrder:  i,
			Text:        panel.Text,
			ImagePrompt: panel.ImagePrompt,
			ImageBase64: panelImages[i],
		}
	}

	// Every generation call has already succeeded; a failure here is the
	// costly one and is never retried at this level.
	story, err := s.repo.CreateStory(ctx, input)
	if err != nil {
		s.log.Error("Story save failed after successful generation", "title", script.Title, "error", err)
		return nil, apierr.SaveFailed("Failed to save story", err)
	}

	s.log.Info("Story generated and saved", "story_id", story.ID, "title", story.Title, "panels", len(story.Panels))
	return story, nil
}

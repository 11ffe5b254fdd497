package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/wondercomic/wondercomic-backend/internal/config"
	"github.com/wondercomic/wondercomic-backend/internal/platform/apierr"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
	"github.com/wondercomic/wondercomic-backend/internal/types"
)

// GeminiClient is the only component that talks to the generation
// provider. All three operations share the same retry contract.
type GeminiClient interface {
	GenerateScript(ctx context.Context, profile types.KidProfileInput) (*types.StoryScript, error)
	GeneratePanelImage(ctx context.Context, scenePrompt, castGuide, style string) (string, error)
	EditPanelImage(ctx context.Context, imageBase64, originalPrompt, editPrompt, castGuide, style string) (string, error)
}

type geminiClient struct {
	client      *genai.Client
	scriptModel string
	imageModel  string
	policy      RetryPolicy
	log         *logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	return &geminiClient{
		client:      client,
		scriptModel: cfg.ScriptModel,
		imageModel:  cfg.ImageModel,
		policy:      RetryPolicy{MaxAttempts: cfg.GenMaxAttempts, BaseDelay: cfg.GenRetryBase},
		log:         log.With("service", "GeminiClient"),
	}, nil
}

// scriptSchema constrains the provider to the script shape; the reply is
// still deserialized strictly and validated before use.
var scriptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":                {Type: genai.TypeString, Description: "The title of the comic book story"},
		"foreword":             {Type: genai.TypeString, Description: "A short foreword, max 30 words"},
		"characterDescription": {Type: genai.TypeString, Description: "Detailed description of all characters including their appearance and outfits"},
		"coverImagePrompt":     {Type: genai.TypeString, Description: "Image prompt for the cover showing the hero and companion"},
		"panels": {
			Type:        genai.TypeArray,
			Description: "List of story panels",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":          {Type: genai.TypeString, Description: "Panel identifier, e.g. '1', '2', '3'"},
					"text":        {Type: genai.TypeString, Description: "The narrative text for this panel, 8-12 words"},
					"imagePrompt": {Type: genai.TypeString, Description: "Detailed image prompt for this panel with cinematic direction"},
				},
				Required: []string{"id", "text", "imagePrompt"},
			},
		},
	},
	Required: []string{"title", "foreword", "characterDescription", "coverImagePrompt", "panels"},
}

func (c *geminiClient) GenerateScript(ctx context.Context, profile types.KidProfileInput) (*types.StoryScript, error) {
	parts := []*genai.Part{}
	if profile.PhotoBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(stripDataURL(profile.PhotoBase64))
		if err != nil {
			return nil, apierr.Validation("reference photo is not valid base64")
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: raw}})
	}
	parts = append(parts, &genai.Part{Text: scriptPrompt(profile)})

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   scriptSchema,
	}

	resp, err := withRetry(ctx, c.log, c.policy, "generate_script", func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return c.client.Models.GenerateContent(ctx, c.scriptModel, contents, genCfg)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, apierr.GenerationFailed("no candidates in response - prompt may have been blocked", nil)
	}

	script, err := parseScript(resp.Text())
	if err != nil {
		return nil, apierr.GenerationFailed("provider returned a malformed script", err)
	}
	c.log.Info("Script generated", "title", script.Title, "panels", len(script.Panels))
	return script, nil
}

// parseScript deserializes the provider's JSON reply, failing closed on
// any shape mismatch instead of trusting the schema hint.
func parseScript(raw string) (*types.StoryScript, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var script types.StoryScript
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if script.Title == "" || script.CharacterDescription == "" || script.CoverImagePrompt == "" {
		return nil, fmt.Errorf("script is missing required fields")
	}
	if len(script.Panels) == 0 {
		return nil, fmt.Errorf("script has no panels")
	}
	for i, p := range script.Panels {
		if p.Text == "" || p.ImagePrompt == "" {
			return nil, fmt.Errorf("script panel %d is incomplete", i)
		}
	}
	return &script, nil
}

func (c *geminiClient) GeneratePanelImage(ctx context.Context, scenePrompt, castGuide, style string) (string, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: panelImagePrompt(scenePrompt, castGuide, style)}},
	}}
	return c.requestImage(ctx, "generate_panel_image", contents)
}

func (c *geminiClient) EditPanelImage(ctx context.Context, imageBase64, originalPrompt, editPrompt, castGuide, style string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stripDataURL(imageBase64))
	if err != nil {
		return "", apierr.Validation("image payload is not valid base64")
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: raw}},
			{Text: editImagePrompt(originalPrompt, editPrompt, castGuide, style)},
		},
	}}
	return c.requestImage(ctx, "edit_panel_image", contents)
}

func (c *geminiClient) requestImage(ctx context.Context, op string, contents []*genai.Content) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	resp, err := withRetry(ctx, c.log, c.policy, op, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return c.client.Models.GenerateContent(ctx, c.imageModel, contents, genCfg)
	})
	if err != nil {
		return "", err
	}
	return extractImage(resp)
}

// extractImage pulls the first inline image payload out of a provider
// response. A text-only reply usually means the prompt was refused, so
// an excerpt of that text is carried in the error for diagnosis.
func extractImage(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apierr.GenerationFailed("no candidates in response - prompt may have been blocked", nil)
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	if len(texts) > 0 {
		excerpt := texts[0]
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		return "", apierr.GenerationFailed(fmt.Sprintf("no image generated. Model response: %s", excerpt), nil)
	}
	return "", apierr.GenerationFailed("failed to generate image - no image data in response", nil)
}

func stripDataURL(encoded string) string {
	if idx := strings.Index(encoded, ","); idx >= 0 {
		return encoded[idx+1:]
	}
	return encoded
}

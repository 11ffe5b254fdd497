package types

// KidProfileInput seeds generation and is persisted alongside the story.
// PhotoBase64 is transient: it may steer script generation but is never
// stored.
type KidProfileInput struct {
	Name          string `json:"name" binding:"required"`
	Gender        string `json:"gender" binding:"required,oneof=boy girl neutral"`
	SkinTone      string `json:"skin_tone" binding:"required"`
	HairColor     string `json:"hair_color" binding:"required"`
	EyeColor      string `json:"eye_color" binding:"required"`
	FavoriteColor string `json:"favorite_color" binding:"required"`
	Dream         string `json:"dream"`
	Archetype     string `json:"archetype"`
	ArtStyle      string `json:"art_style"`
	PhotoBase64   string `json:"photo_base64"`
}

type PanelInput struct {
	PanelOrder  int    `json:"panel_order"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
	ImageBase64 string `json:"image_base64"`
}

type StoryCreateInput struct {
	Profile              KidProfileInput `json:"profile" binding:"required"`
	Title                string          `json:"title"`
	Foreword             string          `json:"foreword"`
	CharacterDescription string          `json:"character_description"`
	CoverImagePrompt     string          `json:"cover_image_prompt"`
	CoverImageBase64     string          `json:"cover_image_base64"`
	Panels               []PanelInput    `json:"panels"`
}

// StoryUpdateInput rewrites the unlock flag (defaulting to true when
// omitted) and optionally repoints cover/panel images.
type StoryUpdateInput struct {
	IsUnlocked       *bool        `json:"is_unlocked"`
	Panels           []PanelInput `json:"panels"`
	CoverImageBase64 string       `json:"cover_image_base64"`
}

func (u StoryUpdateInput) Unlocked() bool {
	if u.IsUnlocked == nil {
		return true
	}
	return *u.IsUnlocked
}

type UpdatePanelImageInput struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// ScriptPanel and StoryScript mirror the provider's structured-output
// schema, so field names follow the schema's camelCase.
type ScriptPanel struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	ImagePrompt string `json:"imagePrompt"`
}

type StoryScript struct {
	Title                string        `json:"title"`
	Foreword             string        `json:"foreword"`
	CharacterDescription string        `json:"characterDescription"`
	CoverImagePrompt     string        `json:"coverImagePrompt"`
	Panels               []ScriptPanel `json:"panels"`
}

type GenerateScriptRequest struct {
	Profile KidProfileInput `json:"profile" binding:"required"`
}

type GenerateAndSaveRequest struct {
	Profile KidProfileInput `json:"profile" binding:"required"`
}

type GenerateAndSaveResponse struct {
	Story *Story `json:"story"`
}

type GeneratePanelImageRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	CastGuide string `json:"cast_guide" binding:"required"`
	Style     string `json:"style"`
}

type GeneratePanelImageResponse struct {
	ImageBase64 string `json:"image_base64"`
}

type EditPanelImageRequest struct {
	ImageBase64    string `json:"image_base64" binding:"required"`
	OriginalPrompt string `json:"original_prompt" binding:"required"`
	EditPrompt     string `json:"edit_prompt" binding:"required"`
	CastGuide      string `json:"cast_guide"`
	Style          string `json:"style"`
}

type EditPanelImageResponse struct {
	ImageBase64 string `json:"image_base64"`
}

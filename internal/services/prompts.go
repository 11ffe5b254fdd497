package services

import (
	"fmt"
	"strings"

	"github.com/wondercomic/wondercomic-backend/internal/types"
)

// Named art styles callers can pick from. Unrecognized or empty names
// fall back to the default inked-comic directive.
var artStyles = map[string]string{
	"Watercolor":    "Soft dreamy watercolor with gentle washes, visible paper texture, no heavy outlines.",
	"Pencil Sketch": "Hand-drawn colored pencil sketch with visible strokes and soft pastel colors.",
	"Digital Pop":   "Vibrant modern digital vector art with clean lines, flat bold colors, high contrast.",
}

const defaultStylePrompt = "Bold black ink outlines, vibrant flat colors, clean cel-shading. No 3D, no gradients, no text in images."

func stylePrompt(style string) string {
	if s, ok := artStyles[style]; ok {
		return s
	}
	return defaultStylePrompt
}

func scriptPrompt(p types.KidProfileInput) string {
	heroDesc := fmt.Sprintf("A %s child with %s skin, %s hair, %s eyes", p.Gender, p.SkinTone, p.HairColor, p.EyeColor)
	if p.PhotoBase64 != "" {
		heroDesc = fmt.Sprintf("The child in the attached photo (%s)", p.Gender)
	}

	archetype := p.Archetype
	if archetype == "" {
		archetype = "adventure"
	}
	dream := p.Dream
	if dream == "" {
		dream = "discovering something amazing"
	}
	artStyle := p.ArtStyle
	if artStyle == "" {
		artStyle = "classic comic"
	}

	var b strings.Builder
	b.WriteString("Create a 10-panel children's comic story. Simple vocabulary, 6-10 words per panel.\n\n")
	fmt.Fprintf(&b, "HERO: %s, depicted as a 5-6 year old. Do NOT age up.\n", heroDesc)
	fmt.Fprintf(&b, "THEME: %s adventure about %s. Favorite color: %s. Art style: %s.\n", archetype, dream, p.FavoriteColor, artStyle)
	b.WriteString("STRUCTURE: Panels 1-3 setup, 4-7 conflict, 8-10 resolution.\n\n")
	b.WriteString("In characterDescription, describe the hero + a companion with physical traits and outfits for visual consistency.\n")
	b.WriteString("In coverImagePrompt, use a dynamic cinematic composition (no side-by-side posing).\n")
	b.WriteString("In each panel imagePrompt, use cinematic angles and show characters interacting — NEVER facing the camera.\n")
	fmt.Fprintf(&b, "Foreword: max 30 words. Use hero's name %q only in story text, not image prompts.", p.Name)
	return b.String()
}

func panelImagePrompt(scene, castGuide, style string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Children's comic panel. %s\n", stylePrompt(style))
	fmt.Fprintf(&b, "Characters: %s. Hero is a 5-6 year old child — do NOT age up.\n", castGuide)
	fmt.Fprintf(&b, "Scene: %s.\n", scene)
	b.WriteString("Cinematic angles, characters interact with each other/world — NEVER face the camera. Full-bleed, borderless.")
	return b.String()
}

func editImagePrompt(originalPrompt, editPrompt, castGuide, style string) string {
	castNote := ""
	if strings.TrimSpace(castGuide) != "" {
		castNote = fmt.Sprintf(" Maintain character consistency: %s.", castGuide)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Edit this comic panel. Original scene: %s\n", originalPrompt)
	fmt.Fprintf(&b, "Requested edit: %s\n", editPrompt)
	fmt.Fprintf(&b, "%s%s\n", stylePrompt(style), castNote)
	b.WriteString("Preserve composition and style. Characters must NOT face the camera.")
	return b.String()
}

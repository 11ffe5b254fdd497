package types

import (
	"time"
)

// DefaultUserID is stored on profiles and stories until a real account
// system exists.
const DefaultUserID = "local-user"

type KidProfile struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string    `gorm:"column:user_id;not null;default:'local-user'" json:"-"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Gender        string    `gorm:"column:gender;not null;check:gender IN ('boy','girl','neutral')" json:"gender"`
	SkinTone      string    `gorm:"column:skin_tone;not null" json:"skin_tone"`
	HairColor     string    `gorm:"column:hair_color;not null" json:"hair_color"`
	EyeColor      string    `gorm:"column:eye_color;not null" json:"eye_color"`
	FavoriteColor string    `gorm:"column:favorite_color;not null" json:"favorite_color"`
	Dream         string    `gorm:"column:dream" json:"dream,omitempty"`
	Archetype     string    `gorm:"column:archetype" json:"archetype,omitempty"`
	ArtStyle      string    `gorm:"column:art_style" json:"art_style,omitempty"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (KidProfile) TableName() string { return "kid_profiles" }

type Story struct {
	ID                   int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID               string      `gorm:"column:user_id;not null;default:'local-user'" json:"-"`
	KidProfileID         int64       `gorm:"column:kid_profile_id;not null;index" json:"-"`
	Profile              *KidProfile `gorm:"constraint:OnDelete:CASCADE;foreignKey:KidProfileID;references:ID" json:"profile,omitempty"`
	Title                string      `gorm:"column:title" json:"title"`
	Foreword             string      `gorm:"column:foreword" json:"foreword"`
	CharacterDescription string      `gorm:"column:character_description" json:"character_description"`
	CoverImagePrompt     string      `gorm:"column:cover_image_prompt" json:"cover_image_prompt"`
	CoverImagePath       *string     `gorm:"column:cover_image_path" json:"cover_image_url"`
	IsUnlocked           bool        `gorm:"column:is_unlocked;not null;default:true" json:"is_unlocked"`
	CreatedAt            time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
	Panels               []Panel     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StoryID;references:ID" json:"panels"`
}

func (Story) TableName() string { return "stories" }

// Panel is one frame of the comic. PanelOrder is the sort key callers use
// to target a single panel; it is unique per story.
type Panel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoryID     int64     `gorm:"column:story_id;not null;uniqueIndex:idx_panels_story_order" json:"-"`
	PanelOrder  int       `gorm:"column:panel_order;not null;uniqueIndex:idx_panels_story_order" json:"panel_order"`
	Text        string    `gorm:"column:text;not null" json:"text"`
	ImagePrompt string    `gorm:"column:image_prompt" json:"image_prompt"`
	ImagePath   *string   `gorm:"column:image_path" json:"image_url"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"-"`
}

func (Panel) TableName() string { return "panels" }

// StorySummary is the list-view projection: story header plus profile,
// without panel detail.
type StorySummary struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	CoverImageURL *string     `json:"cover_image_url"`
	IsUnlocked    bool        `json:"is_unlocked"`
	CreatedAt     time.Time   `json:"created_at"`
	Profile       *KidProfile `json:"profile"`
}

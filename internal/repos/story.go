package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wondercomic/wondercomic-backend/internal/imagestore"
	"github.com/wondercomic/wondercomic-backend/internal/platform/apierr"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
	"github.com/wondercomic/wondercomic-backend/internal/types"
)

// StoryRepo is transactional CRUD over the profile + story + panels
// aggregate. Image payloads are decoded and written through the image
// store as rows are written; rows only ever reference files that exist.
type StoryRepo interface {
	CreateStory(ctx context.Context, input types.StoryCreateInput) (*types.Story, error)
	GetStory(ctx context.Context, id int64) (*types.Story, error)
	ListStories(ctx context.Context) ([]types.StorySummary, error)
	DeleteStory(ctx context.Context, id int64) error
	UpdateStoryPanels(ctx context.Context, id int64, input types.StoryUpdateInput) (*types.Story, error)
	UpdatePanelImage(ctx context.Context, storyID int64, panelOrder int, imageBase64 string) error
}

type storyRepo struct {
	db     *gorm.DB
	images *imagestore.Store
	log    *logger.Logger
}

func NewStoryRepo(db *gorm.DB, images *imagestore.Store, baseLog *logger.Logger) StoryRepo {
	return &storyRepo{db: db, images: images, log: baseLog.With("repo", "StoryRepo")}
}

func (r *storyRepo) CreateStory(ctx context.Context, input types.StoryCreateInput) (*types.Story, error) {
	var storyID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := &types.KidProfile{
			UserID:        types.DefaultUserID,
			Name:          input.Profile.Name,
			Gender:        input.Profile.Gender,
			SkinTone:      input.Profile.SkinTone,
			HairColor:     input.Profile.HairColor,
			EyeColor:      input.Profile.EyeColor,
			FavoriteColor: input.Profile.FavoriteColor,
			Dream:         input.Profile.Dream,
			Archetype:     input.Profile.Archetype,
			ArtStyle:      input.Profile.ArtStyle,
		}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("create kid profile: %w", err)
		}

		story := &types.Story{
			UserID:               types.DefaultUserID,
			KidProfileID:         profile.ID,
			Title:                input.Title,
			Foreword:             input.Foreword,
			CharacterDescription: input.CharacterDescription,
			CoverImagePrompt:     input.CoverImagePrompt,
			IsUnlocked:           true,
		}
		if name, ok := r.images.Save(input.CoverImageBase64, "cover"); ok {
			story.CoverImagePath = &name
		}
		if err := tx.Create(story).Error; err != nil {
			return fmt.Errorf("create story: %w", err)
		}
		storyID = story.ID

		for _, in := range input.Panels {
			panel := &types.Panel{
				StoryID:     story.ID,
				PanelOrder:  in.PanelOrder,
				Text:        in.Text,
				ImagePrompt: in.ImagePrompt,
			}
			if name, ok := r.images.Save(in.ImageBase64, fmt.Sprintf("panel_%d", story.ID)); ok {
				panel.ImagePath = &name
			}
			if err := tx.Create(panel).Error; err != nil {
				return fmt.Errorf("create panel %d: %w", in.PanelOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("Story created", "story_id", storyID, "panels", len(input.Panels))
	return r.GetStory(ctx, storyID)
}

func (r *storyRepo) GetStory(ctx context.Context, id int64) (*types.Story, error) {
	var story types.Story
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Panels", func(db *gorm.DB) *gorm.DB {
			return db.Order("panel_order ASC")
		}).
		First(&story, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound("Story not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get story %d: %w", id, err)
	}
	if story.Panels == nil {
		story.Panels = []types.Panel{}
	}
	return &story, nil
}

func (r *storyRepo) ListStories(ctx context.Context) ([]types.StorySummary, error) {
	var stories []types.Story
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Order("created_at DESC, id DESC").
		Find(&stories).Error
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	summaries := make([]types.StorySummary, 0, len(stories))
	for _, s := range stories {
		summaries = append(summaries, types.StorySummary{
			ID:            s.ID,
			Title:         s.Title,
			CoverImageURL: s.CoverImagePath,
			IsUnlocked:    s.IsUnlocked,
			CreatedAt:     s.CreatedAt,
			Profile:       s.Profile,
		})
	}
	return summaries, nil
}

// DeleteStory removes the story row (panels go with it via cascade) and
// the owning profile, then unlinks every referenced image file. Rows are
// committed before files are touched: a crash in between can orphan
// files but never leaves a row pointing at a deleted file.
func (r *storyRepo) DeleteStory(ctx context.Context, id int64) error {
	var orphaned []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var story types.Story
		if err := tx.Preload("Panels").First(&story, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("Story not found")
			}
			return fmt.Errorf("load story %d: %w", id, err)
		}

		if story.CoverImagePath != nil {
			orphaned = append(orphaned, *story.CoverImagePath)
		}
		for _, p := range story.Panels {
			if p.ImagePath != nil {
				orphaned = append(orphaned, *p.ImagePath)
			}
		}

		res := tx.Delete(&types.Story{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete story %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apierr.NotFound("Story not found")
		}
		if err := tx.Delete(&types.KidProfile{}, story.KidProfileID).Error; err != nil {
			return fmt.Errorf("delete kid profile %d: %w", story.KidProfileID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range orphaned {
		r.images.Delete(name)
	}
	r.log.Info("Story deleted", "story_id", id, "images_removed", len(orphaned))
	return nil
}

func (r *storyRepo) UpdateStoryPanels(ctx context.Context, id int64, input types.StoryUpdateInput) (*types.Story, error) {
	var replaced []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var story types.Story
		if err := tx.First(&story, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("Story not found")
			}
			return fmt.Errorf("load story %d: %w", id, err)
		}

		updates := map[string]interface{}{
			"is_unlocked": input.Unlocked(),
			"updated_at":  time.Now().UTC(),
		}
		if name, ok := r.images.Save(input.CoverImageBase64, "cover"); ok {
			// The previous cover file is kept on purpose; see DESIGN.md.
			updates["cover_image_path"] = name
		}
		if err := tx.Model(&types.Story{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update story %d: %w", id, err)
		}

		for _, in := range input.Panels {
			if in.ImageBase64 == "" {
				continue
			}
			var panel types.Panel
			err := tx.Where("story_id = ? AND panel_order = ?", id, in.PanelOrder).First(&panel).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("load panel (%d,%d): %w", id, in.PanelOrder, err)
			}
			name, ok := r.images.Save(in.ImageBase64, fmt.Sprintf("panel_%d", id))
			if !ok {
				continue
			}
			if panel.ImagePath != nil {
				replaced = append(replaced, *panel.ImagePath)
			}
			if err := tx.Model(&types.Panel{}).
				Where("story_id = ? AND panel_order = ?", id, in.PanelOrder).
				Update("image_path", name).Error; err != nil {
				return fmt.Errorf("update panel (%d,%d): %w", id, in.PanelOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range replaced {
		r.images.Delete(name)
	}
	return r.GetStory(ctx, id)
}

func (r *storyRepo) UpdatePanelImage(ctx context.Context, storyID int64, panelOrder int, imageBase64 string) error {
	var replaced string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var panel types.Panel
		err := tx.Where("story_id = ? AND panel_order = ?", storyID, panelOrder).First(&panel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("Panel not found")
		}
		if err != nil {
			return fmt.Errorf("load panel (%d,%d): %w", storyID, panelOrder, err)
		}

		name, ok := r.images.Save(imageBase64, fmt.Sprintf("panel_%d", storyID))
		if !ok {
			return apierr.Validation("image payload could not be decoded")
		}
		if panel.ImagePath != nil {
			replaced = *panel.ImagePath
		}

		if err := tx.Model(&types.Panel{}).
			Where("story_id = ? AND panel_order = ?", storyID, panelOrder).
			Update("image_path", name).Error; err != nil {
			return fmt.Errorf("update panel (%d,%d): %w", storyID, panelOrder, err)
		}
		if err := tx.Model(&types.Story{}).Where("id = ?", storyID).
			Update("updated_at", time.Now().UTC()).Error; err != nil {
			return fmt.Errorf("touch story %d: %w", storyID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.images.Delete(replaced)
	return nil
}

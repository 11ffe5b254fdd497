package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wondercomic/wondercomic-backend/internal/platform/apierr"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
	"github.com/wondercomic/wondercomic-backend/internal/services"
	"github.com/wondercomic/wondercomic-backend/internal/types"
)

type GenerateHandler struct {
	storyGen *services.StoryGenService
	client   services.GeminiClient
	log      *logger.Logger
	debug    bool
}

func NewGenerateHandler(storyGen *services.StoryGenService, client services.GeminiClient, baseLog *logger.Logger, debug bool) *GenerateHandler {
	return &GenerateHandler{
		storyGen: storyGen,
		client:   client,
		log:      baseLog.With("handler", "GenerateHandler"),
		debug:    debug,
	}
}

// GenerateAndSave runs the full pipeline: script, cover and panel
// images, then one persisted story aggregate.
func (h *GenerateHandler) GenerateAndSave(c *gin.Context) {
	var req types.GenerateAndSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.debug, apierr.Validation(err.Error()))
		return
	}

	story, err := h.storyGen.GenerateAndSave(c.Request.Context(), req.Profile)
	if err != nil {
		h.log.Error("Generate-and-save failed", "name", req.Profile.Name, "error", err)
		RespondError(c, h.debug, err)
		return
	}
	RespondOK(c, types.GenerateAndSaveResponse{Story: story})
}

func (h *GenerateHandler) GenerateScript(c *gin.Context) {
	var req types.GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.debug, apierr.Validation(err.Error()))
		return
	}

	script, err := h.client.GenerateScript(c.Request.Context(), req.Profile)
	if err != nil {
		h.log.Error("Script generation failed", "name", req.Profile.Name, "error", err)
		RespondError(c, h.debug, apierr.GenerationFailed("Story generation failed", err))
		return
	}
	RespondOK(c, script)
}

func (h *GenerateHandler) GeneratePanelImage(c *gin.Context) {
	var req types.GeneratePanelImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.debug, apierr.Validation(err.Error()))
		return
	}

	image, err := h.client.GeneratePanelImage(c.Request.Context(), req.Prompt, req.CastGuide, req.Style)
	if err != nil {
		h.log.Error("Panel image generation failed", "error", err)
		RespondError(c, h.debug, apierr.GenerationFailed("Image generation failed", err))
		return
	}
	RespondOK(c, types.GeneratePanelImageResponse{ImageBase64: image})
}

func (h *GenerateHandler) EditPanelImage(c *gin.Context) {
	var req types.EditPanelImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, h.debug, apierr.Validation(err.Error()))
		return
	}

	image, err := h.client.EditPanelImage(c.Request.Context(), req.ImageBase64, req.OriginalPrompt, req.EditPrompt, req.CastGuide, req.Style)
	if err != nil {
		h.log.Error("Image edit failed", "error", err)
		RespondError(c, h.debug, apierr.GenerationFailed("Image editing failed", err))
		return
	}
	RespondOK(c, types.EditPanelImageResponse{ImageBase64: image})
}

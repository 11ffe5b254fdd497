package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wondercomic/wondercomic-backend/internal/platform/apierr"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
	"github.com/wondercomic/wondercomic-backend/internal/repos"
	"github.com/wondercomic/wondercomic-backend/internal/types"
)

type StoryHandler struct {
	repo  repos.StoryRepo
	log   *logger.Logger
	debug bool
}

func NewStoryHandler(repo repos.StoryRepo, baseLog *logger.Logger, debug bool) *StoryHandler {
	return &StoryHandler{repo: repo, log: baseLog.With("handler", "StoryHandler"), debug: debug}
}

func (h *StoryHandler) Create(c *gin.Context) {
	var input types.StoryCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, h.debug, apierr.Validation(err.Error()))
		return
	}

	story, err := h.repo.CreateStory(c.Request.Context(), input)
	if err != nil {
		h.log.Error("Create story failed", "error", err)
		RespondError(c, h.debug, err)
		return
	}
	RespondOK(c, story)
}

func (h *StoryHandler) List(c *gin.Context) {
	summaries, err := h.repo.ListStories(c.Request.Context())
	if err != nil {
		h.log.Error("List stories failed", "error", err)
		RespondError(c, h.debug, err)
		return
	}
	RespondOK(c, summaries)
}

func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}

	story, err := h.repo.GetStory(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.debug, err)
		return
	}
	RespondOK(c, story)
}

func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}

	var input types.StoryUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, h.debug, apierr.Validation(err.Error()))
		return
	}

	story, err := h.repo.UpdateStoryPanels(c.Request.Context(), id, input)
	if err != nil {
		RespondError(c, h.debug, err)
		return
	}
	RespondOK(c, story)
}

func (h *StoryHandler) UpdatePanelImage(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}
	order, err := strconv.Atoi(c.Param("order"))
	if err != nil {
		RespondError(c, h.debug, apierr.Validation("panel order must be an integer"))
		return
	}

	var input types.UpdatePanelImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, h.debug, apierr.Validation(err.Error()))
		return
	}

	if err := h.repo.UpdatePanelImage(c.Request.Context(), id, order, input.ImageBase64); err != nil {
		RespondError(c, h.debug, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) Delete(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteStory(c.Request.Context(), id); err != nil {
		RespondError(c, h.debug, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) storyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, h.debug, apierr.Validation("story id must be an integer"))
		return 0, false
	}
	return id, true
}

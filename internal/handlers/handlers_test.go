package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/wondercomic/wondercomic-backend/internal/db"
	"github.com/wondercomic/wondercomic-backend/internal/handlers"
	"github.com/wondercomic/wondercomic-backend/internal/imagestore"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
	"github.com/wondercomic/wondercomic-backend/internal/repos"
	"github.com/wondercomic/wondercomic-backend/internal/server"
	"github.com/wondercomic/wondercomic-backend/internal/services"
	"github.com/wondercomic/wondercomic-backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGemini struct {
	script   *types.StoryScript
	image    string
	imageErr error
}

func (s *stubGemini) GenerateScript(ctx context.Context, profile types.KidProfileInput) (*types.StoryScript, error) {
	return s.script, nil
}

func (s *stubGemini) GeneratePanelImage(ctx context.Context, scenePrompt, castGuide, style string) (string, error) {
	if s.imageErr != nil {
		return "", s.imageErr
	}
	return s.image, nil
}

func (s *stubGemini) EditPanelImage(ctx context.Context, imageBase64, originalPrompt, editPrompt, castGuide, style string) (string, error) {
	if s.imageErr != nil {
		return "", s.imageErr
	}
	return s.image, nil
}

type fixture struct {
	router *gin.Engine
	sqlite *db.SQLiteService
	repo   repos.StoryRepo
	stub   *stubGemini
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)

	dir := t.TempDir()
	sqlite, err := db.NewSQLiteService(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	require.NoError(t, sqlite.AutoMigrateAll())
	t.Cleanup(func() { _ = sqlite.Close() })

	images, err := imagestore.New(filepath.Join(dir, "images"), log)
	require.NoError(t, err)

	repo := repos.NewStoryRepo(sqlite.DB(), images, log)
	stub := &stubGemini{
		script: testScript(10),
		image:  base64.StdEncoding.EncodeToString([]byte("test image bytes")),
	}
	storyGen := services.NewStoryGenService(stub, repo, log)

	router := server.NewRouter(server.RouterConfig{
		StoryHandler:    handlers.NewStoryHandler(repo, log, false),
		GenerateHandler: handlers.NewGenerateHandler(storyGen, stub, log, false),
		HealthHandler:   handlers.NewHealthHandler(sqlite, log),
		ImagesDir:       images.Dir(),
	})
	return &fixture{router: router, sqlite: sqlite, repo: repo, stub: stub}
}

func testScript(panelCount int) *types.StoryScript {
	script := &types.StoryScript{
		Title:                "Leo and the Clockwork Whale",
		Foreword:             "Every tide hides a secret.",
		CharacterDescription: "Leo: brown skin, curly black hair, green eyes.",
		CoverImagePrompt:     "Leo rides a brass whale over moonlit waves",
	}
	for i := 0; i < panelCount; i++ {
		script.Panels = append(script.Panels, types.ScriptPanel{
			ID:          fmt.Sprintf("%d", i+1),
			Text:        fmt.Sprintf("Beat %d.", i+1),
			ImagePrompt: fmt.Sprintf("whale scene %d", i+1),
		})
	}
	return script
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) handlers.ErrorEnvelope {
	t.Helper()
	var envelope handlers.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func leoCreateInput() types.StoryCreateInput {
	return types.StoryCreateInput{
		Profile: types.KidProfileInput{
			Name:          "Leo",
			Gender:        "boy",
			SkinTone:      "brown",
			HairColor:     "black",
			EyeColor:      "green",
			FavoriteColor: "teal",
		},
		Title:            "Leo and the Clockwork Whale",
		CoverImagePrompt: "Leo rides a brass whale",
		Panels: []types.PanelInput{
			{PanelOrder: 0, Text: "Leo finds a gear on the beach.", ImagePrompt: "beach at dawn"},
			{PanelOrder: 1, Text: "The gear begins to tick.", ImagePrompt: "close-up of gear"},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string            `json:"status"`
		Version string            `json:"version"`
		Checks  map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "1.0.0", body.Version)
	require.Equal(t, "ok", body.Checks["database"])
}

func TestHealthEndpointReportsDatabaseOutage(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sqlite.Close())

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "unhealthy", body.Status)
	require.Equal(t, "unavailable", body.Checks["database"])
}

func TestCreateStoryRejectsInvalidBody(t *testing.T) {
	f := newFixture(t)

	// Profile is required and gender is constrained to three values.
	rec := f.do(t, http.MethodPost, "/api/stories", gin.H{
		"profile": gin.H{"name": "Leo", "gender": "robot"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", decodeErr(t, rec).Error.Code)
}

func TestCreateAndFetchStory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/stories", leoCreateInput())
	require.Equal(t, http.StatusOK, rec.Code)

	var created types.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.True(t, created.IsUnlocked)
	require.Len(t, created.Panels, 2)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/stories/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched types.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, created.ID, fetched.ID)
	require.NotNil(t, fetched.Profile)
	require.Equal(t, "Leo", fetched.Profile.Name)
	require.Equal(t, 0, fetched.Panels[0].PanelOrder)
	require.Equal(t, 1, fetched.Panels[1].PanelOrder)
}

func TestGetStoryNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/stories/9999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	envelope := decodeErr(t, rec)
	require.Equal(t, "not_found", envelope.Error.Code)
	require.Equal(t, "Story not found", envelope.Error.Message)
}

func TestGetStoryRejectsNonNumericID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/stories/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", decodeErr(t, rec).Error.Code)
}

func TestUpdatePanelImage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/stories", leoCreateInput())
	require.Equal(t, http.StatusOK, rec.Code)
	var created types.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	payload := gin.H{"image_base64": base64.StdEncoding.EncodeToString([]byte("replacement"))}

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/stories/%d/panels/1", created.ID), payload)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/stories/%d/panels/42", created.ID), payload)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Panel not found", decodeErr(t, rec).Error.Message)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/stories/%d", created.ID), nil)
	var fetched types.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.NotNil(t, fetched.Panels[1].ImagePath)
	require.Nil(t, fetched.Panels[0].ImagePath)
}

func TestDeleteStoryThenGone(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/stories", leoCreateInput())
	require.Equal(t, http.StatusOK, rec.Code)
	var created types.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/stories/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/stories/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/stories/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListStories(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		input := leoCreateInput()
		input.Title = fmt.Sprintf("Story %d", i)
		rec := f.do(t, http.MethodPost, "/api/stories", input)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/stories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []types.StorySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	require.NotNil(t, summaries[0].Profile)
}

func TestGenerateStoryEndToEnd(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/stories/generate", types.GenerateAndSaveRequest{
		Profile: types.KidProfileInput{
			Name:          "Leo",
			Gender:        "boy",
			SkinTone:      "brown",
			HairColor:     "black",
			EyeColor:      "green",
			FavoriteColor: "teal",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.GenerateAndSaveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Story)
	require.Equal(t, "Leo and the Clockwork Whale", resp.Story.Title)
	require.NotNil(t, resp.Story.CoverImagePath)
	require.Len(t, resp.Story.Panels, 10)
	for i, panel := range resp.Story.Panels {
		require.Equal(t, i, panel.PanelOrder)
		require.NotNil(t, panel.ImagePath)
	}
}

func TestGenerateScriptEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/generate/story-script", types.GenerateScriptRequest{
		Profile: types.KidProfileInput{
			Name:          "Leo",
			Gender:        "boy",
			SkinTone:      "brown",
			HairColor:     "black",
			EyeColor:      "green",
			FavoriteColor: "teal",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var script types.StoryScript
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &script))
	require.Equal(t, "Leo and the Clockwork Whale", script.Title)
	require.Len(t, script.Panels, 10)
}

func TestGeneratePanelImageEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/generate/panel-image", types.GeneratePanelImageRequest{
		Prompt:    "a whale leaping over a lighthouse",
		CastGuide: "Leo: brown skin, curly black hair",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.GeneratePanelImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, f.stub.image, resp.ImageBase64)
}

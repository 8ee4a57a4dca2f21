package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechtsdoc/internal/profile"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "rechtsdoc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := profile.Demo()
	id, err := store.SaveProfile(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	loaded, err := store.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Demo GmbH", loaded.CompanyName)
	assert.Equal(t, id, loaded.ID)
	assert.True(t, loaded.MarketingPixels["Meta"])

	_, err = store.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatchProfile_ShallowMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveProfile(ctx, profile.Demo())
	require.NoError(t, err)

	patched, err := store.PatchProfile(ctx, id, map[string]any{
		"companyName":     "Neue GmbH",
		"marketingPixels": map[string]any{"TikTok": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Neue GmbH", patched.CompanyName)
	assert.True(t, patched.MarketingPixels["TikTok"])
	assert.True(t, patched.MarketingPixels["Meta"])

	// The merge is persisted, not just returned.
	reloaded, err := store.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Neue GmbH", reloaded.CompanyName)
	assert.True(t, reloaded.MarketingPixels["Meta"])
}

func TestSaveDocument_AssignsVersions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	content, _ := json.Marshal(map[string]any{"title": "Impressum", "sections": []any{}})
	first, err := store.SaveDocument(ctx, &DocumentRecord{
		ProfileID:   "p1",
		Type:        "impressum",
		Title:       "Impressum",
		Content:     content,
		HTMLContent: "<article></article>",
		TextContent: "Impressum",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := store.SaveDocument(ctx, &DocumentRecord{
		ProfileID: "p1", Type: "impressum", Title: "Impressum", Content: content,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	// A different type starts its own version sequence.
	other, err := store.SaveDocument(ctx, &DocumentRecord{
		ProfileID: "p1", Type: "datenschutz", Title: "Datenschutzerklärung", Content: content,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, other.Version)

	loaded, err := store.GetDocument(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "impressum", loaded.Type)
	assert.JSONEq(t, string(content), string(loaded.Content))

	docs, err := store.ListDocuments(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogGeneration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.LogGeneration(ctx, GenerationLogEntry{
		ProfileID:    "p1",
		DocumentType: "impressum",
		Model:        "gpt-4-turbo-preview",
		TokensUsed:   1234,
		Status:       "success",
	})
	require.NoError(t, err)

	err = store.LogGeneration(ctx, GenerationLogEntry{
		DocumentType: "datenschutz",
		Status:       "error",
		Error:        "generation transport error",
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM generation_log`).Scan(&count))
	assert.Equal(t, 2, count)
}

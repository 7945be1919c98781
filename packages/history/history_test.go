package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *runner.RunResult {
	return &runner.RunResult{
		SpecFile:  "site.domspec.yaml",
		StartedAt: time.Now().UTC(),
		Duration:  1500 * time.Millisecond,
		Pages: []*runner.PageResult{
			{
				Name:   "homepage",
				Target: "https://example.com",
				Checks: []*runner.CheckResult{
					{Description: `css ".banner"`, Passed: true, Duration: 20 * time.Millisecond},
					{Description: `text "Welcome"`, Passed: false, Message: "expected to find text \"Welcome\" at least 1 time but found 0 matches"},
				},
			},
		},
	}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "site.domspec.yaml", e.SpecFile)
	assert.Equal(t, 2, e.Total)
	assert.Equal(t, 1, e.Failed)
	assert.Equal(t, 1500*time.Millisecond, e.Duration)
}

func TestStore_Results(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, sampleResult())
	require.NoError(t, err)

	results, err := store.Results(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, results, `"homepage"`)

	_, err = store.Results(ctx, "missing-id")
	assert.Error(t, err)
}

func TestStore_Extract(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, sampleResult())
	require.NoError(t, err)

	name, err := store.Extract(ctx, id, "pages.0.name")
	require.NoError(t, err)
	assert.Equal(t, "homepage", name)

	failing, err := store.Extract(ctx, id, "pages.0.checks.#(passed==false)#.description")
	require.NoError(t, err)
	assert.Contains(t, failing, `text \"Welcome\"`)

	_, err = store.Extract(ctx, id, "pages.9.name")
	assert.Error(t, err)
}

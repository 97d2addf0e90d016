package syncer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/gather/internal/filter"
	"github.com/harrison/gather/internal/models"
	"github.com/harrison/gather/internal/scanner"
	"github.com/harrison/gather/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  *workspace.Store
	engine *Engine
	src    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := workspace.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &testEnv{
		store:  store,
		engine: New(store, nil),
		src:    t.TempDir(),
	}
}

func (env *testEnv) write(t *testing.T, rel, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(env.src, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

// collectDemo reproduces the canonical first collection: a.js (100 bytes)
// and sub/b.js (50 bytes) under one source root, .js filter.
func (env *testEnv) collectDemo(t *testing.T) *models.Project {
	t.Helper()
	mtime := time.Now().Add(-time.Hour)
	env.write(t, "a.js", string(make([]byte, 100)), mtime)
	env.write(t, filepath.Join("sub", "b.js"), string(make([]byte, 50)), mtime)

	p, err := env.store.Create("demo", time.Now())
	require.NoError(t, err)

	f := filter.New([]string{".js"}, nil, nil)
	res, err := env.engine.Collect(p, []scanner.Root{{Path: env.src, Kind: scanner.RootDirectory}}, f, Options{})
	require.NoError(t, err)
	require.Equal(t, StatePersisted, res.State)
	return p
}

func TestFirstCollection(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	require.Len(t, p.Files, 2)

	aKey := filepath.Join(env.src, "a.js")
	bKey := filepath.Join(env.src, "sub", "b.js")

	a := p.Files[aKey]
	require.NotNil(t, a)
	assert.Equal(t, "a.js", a.NewPath)
	assert.Equal(t, int64(100), a.Size)

	b := p.Files[bKey]
	require.NotNil(t, b)
	assert.Equal(t, "sub_b.js", b.NewPath)
	assert.Equal(t, int64(50), b.Size)

	// Both files physically present under their flattened names.
	assert.FileExists(t, filepath.Join(env.store.ProjectDir("demo"), "a.js"))
	assert.FileExists(t, filepath.Join(env.store.ProjectDir("demo"), "sub_b.js"))

	// Structure lists both under their original directories.
	assert.Contains(t, p.DirectoryStructure, env.src+":")
	assert.Contains(t, p.DirectoryStructure, filepath.Join(env.src, "sub")+":")

	// The directory root was registered.
	assert.Equal(t, []string{env.src}, p.SourceDirectories)
}

func TestUnchangedFullSyncCopiesNothing(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	before := map[string]models.FileRecord{}
	for k, rec := range p.Files {
		before[k] = *rec
	}

	f := filter.New([]string{".js"}, nil, nil)
	res, err := env.engine.Update(p, PolicyFull, f, Options{})
	require.NoError(t, err)

	assert.Equal(t, StateAborted, res.State, "zero actionable changes aborts the pass")
	assert.Empty(t, res.Changes.New)
	assert.Empty(t, res.Changes.Modified)
	assert.Len(t, res.Changes.Unchanged, 2)
	assert.Empty(t, res.Copied)
	assert.False(t, res.Saved)

	for k, rec := range p.Files {
		assert.Equal(t, before[k], *rec, "records must be untouched")
	}
}

func TestFullSyncPicksUpNewFiles(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	env.write(t, "fresh.js", "123", time.Now())

	f := filter.New([]string{".js"}, nil, nil)
	res, err := env.engine.Update(p, PolicyFull, f, Options{})
	require.NoError(t, err)

	require.Equal(t, StatePersisted, res.State)
	assert.Len(t, res.Changes.New, 1)
	assert.Len(t, res.Copied, 1)
	assert.FileExists(t, filepath.Join(env.store.ProjectDir("demo"), "fresh.js"))
}

func TestRefreshDetectsModification(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	// a.js grows to 120 bytes and its mtime advances.
	aKey := filepath.Join(env.src, "a.js")
	env.write(t, "a.js", string(make([]byte, 120)), time.Now())

	res, err := env.engine.Update(p, PolicyRefresh, nil, Options{})
	require.NoError(t, err)

	require.Equal(t, StatePersisted, res.State)
	assert.Equal(t, []string{aKey}, res.Changes.Modified)
	assert.Equal(t, []string{aKey}, res.Copied)
	assert.Equal(t, int64(120), p.Files[aKey].Size)
	assert.Equal(t, "a.js", p.Files[aKey].NewPath, "overwrite, not rename")

	copied, err := os.ReadFile(filepath.Join(env.store.ProjectDir("demo"), "a.js"))
	require.NoError(t, err)
	assert.Len(t, copied, 120)
}

func TestRefreshReportsMissingWithoutDeleting(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	bKey := filepath.Join(env.src, "sub", "b.js")
	require.NoError(t, os.Remove(bKey))

	res, err := env.engine.Update(p, PolicyRefresh, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, StateAborted, res.State)
	assert.True(t, res.FallbackSuggested, "nothing modified, full sync should be offered")
	assert.Equal(t, []string{bKey}, res.Changes.Missing)
	assert.NotNil(t, p.Files[bKey], "missing records are never deleted automatically")
	assert.Empty(t, res.Copied)
}

func TestRefreshDoesNotSeeNewFiles(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	env.write(t, "brand-new.js", "x", time.Now())

	res, err := env.engine.Update(p, PolicyRefresh, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Changes.New, "refresh never rescans for new files")
}

func TestConfirmationDeclineAborts(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	env.write(t, "a.js", string(make([]byte, 200)), time.Now())

	declined := false
	res, err := env.engine.Update(p, PolicyRefresh, nil, Options{
		Confirm: func(cs *models.ChangeSet) bool {
			declined = true
			return false
		},
	})
	require.NoError(t, err)

	assert.True(t, declined)
	assert.Equal(t, StateAborted, res.State)
	assert.Empty(t, res.Copied)
	assert.Equal(t, int64(100), p.Files[filepath.Join(env.src, "a.js")].Size,
		"declined pass must not mutate records")
}

func TestSelectiveCopiesOnlyChosen(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	aKey := filepath.Join(env.src, "a.js")
	bKey := filepath.Join(env.src, "sub", "b.js")
	env.write(t, "a.js", string(make([]byte, 120)), time.Now())
	env.write(t, filepath.Join("sub", "b.js"), string(make([]byte, 70)), time.Now())

	res, err := env.engine.Update(p, PolicySelective, nil, Options{
		Pick: func(entries []PickEntry) []string {
			require.Len(t, entries, 2)
			return []string{aKey}
		},
	})
	require.NoError(t, err)

	require.Equal(t, StatePersisted, res.State)
	assert.Equal(t, []string{aKey}, res.Copied)
	assert.Equal(t, int64(120), p.Files[aKey].Size)
	assert.Equal(t, int64(50), p.Files[bKey].Size, "unchosen records stay put")
}

func TestSelectiveSkipsChosenMissing(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	aKey := filepath.Join(env.src, "a.js")
	bKey := filepath.Join(env.src, "sub", "b.js")
	env.write(t, "a.js", string(make([]byte, 120)), time.Now())
	require.NoError(t, os.Remove(bKey))

	res, err := env.engine.Update(p, PolicySelective, nil, Options{
		Pick: func(entries []PickEntry) []string {
			return []string{aKey, bKey}
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{aKey}, res.Copied)
	assert.Equal(t, []string{bKey}, res.SkippedMissing)
	assert.NotNil(t, p.Files[bKey])
}

func TestSelectiveNothingPickedAborts(t *testing.T) {
	env := newTestEnv(t)
	p := env.collectDemo(t)

	env.write(t, "a.js", string(make([]byte, 120)), time.Now())

	res, err := env.engine.Update(p, PolicySelective, nil, Options{
		Pick: func(entries []PickEntry) []string { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, StateAborted, res.State)
	assert.False(t, res.Saved)
}

func TestExcludedDirectoryNeverCollected(t *testing.T) {
	env := newTestEnv(t)
	mtime := time.Now().Add(-time.Hour)
	env.write(t, "app.js", "x", mtime)
	env.write(t, filepath.Join("node_modules", "pkg", "index.js"), "x", mtime)

	p, err := env.store.Create("demo", time.Now())
	require.NoError(t, err)

	f := filter.New([]string{".js"}, nil, []string{"node_modules"})
	res, err := env.engine.Collect(p, []scanner.Root{{Path: env.src, Kind: scanner.RootDirectory}}, f, Options{})
	require.NoError(t, err)

	require.Equal(t, StatePersisted, res.State)
	assert.Len(t, p.Files, 1)
	for key := range p.Files {
		assert.NotContains(t, key, "node_modules")
	}
}

func TestCollisionDisambiguation(t *testing.T) {
	env := newTestEnv(t)
	mtime := time.Now().Add(-time.Hour)
	env.write(t, filepath.Join("a", "b_c.js"), "first", mtime)
	env.write(t, filepath.Join("a_b", "c.js"), "second", mtime)

	p, err := env.store.Create("demo", time.Now())
	require.NoError(t, err)

	f := filter.New([]string{".js"}, nil, nil)
	res, err := env.engine.Collect(p, []scanner.Root{{Path: env.src, Kind: scanner.RootDirectory}}, f, Options{Disambiguate: true})
	require.NoError(t, err)
	require.Equal(t, StatePersisted, res.State)

	names := make(map[string]bool)
	for _, rec := range p.Files {
		names[rec.NewPath] = true
	}
	assert.Len(t, names, 2, "colliding originals must get distinct storage names")

	for _, rec := range p.Files {
		assert.FileExists(t, filepath.Join(env.store.ProjectDir("demo"), rec.NewPath))
	}
}

func TestCollectAbortsWithNothingToDo(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.store.Create("demo", time.Now())
	require.NoError(t, err)

	f := filter.New([]string{".js"}, nil, nil)
	res, err := env.engine.Collect(p, []scanner.Root{{Path: env.src, Kind: scanner.RootDirectory}}, f, Options{})
	require.NoError(t, err)
	assert.Equal(t, StateAborted, res.State)
}

func TestPassIDsAreUnique(t *testing.T) {
	first := newResult()
	second := newResult()
	assert.NotEqual(t, first.PassID, second.PassID)
	assert.Len(t, first.passTag(), 8)
}

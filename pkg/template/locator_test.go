package template

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamegrove/pkg/fsys"
	"gamegrove/pkg/testutil"
)

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"2d", "3d", " 2D ", "3D"} {
		c, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Contains(t, Categories(), c)
	}

	for _, in := range []string{"", "4d", "2d-game", "two"} {
		_, err := ParseCategory(in)
		assert.ErrorIs(t, err, ErrInvalidCategory, in)
	}
}

func TestCategory_DirName(t *testing.T) {
	assert.Equal(t, "2d-game-boilerplate", Category2D.DirName())
	assert.Equal(t, "3d-game-boilerplate", Category3D.DirName())
}

func sourceContext() Context {
	return Context{
		WorkingDir:    "/home/dev/gamegrove/src-tauri",
		ProjectRoot:   "/home/dev/gamegrove",
		ExecutableDir: "/home/dev/gamegrove/src-tauri/target/debug",
	}
}

func TestLocator_CandidatesFromSource(t *testing.T) {
	loc := NewLocator(fsys.Memory(), sourceContext().SearchRoots())

	assert.Equal(t, []string{
		"/home/dev/gamegrove/src-tauri/templates/2d-game-boilerplate",
		"/home/dev/gamegrove/templates/2d-game-boilerplate",
		"/home/dev/gamegrove/src-tauri/target/debug/templates/2d-game-boilerplate",
		"/home/dev/gamegrove/src-tauri/target/templates/2d-game-boilerplate",
		// the remaining ancestors repeat earlier roots
	}, loc.Candidates(Category2D))
}

func TestLocator_CandidatesFromBundle(t *testing.T) {
	ctx := Context{
		ResourceDir:   "/Applications/Game Grove.app/Contents/Resources",
		WorkingDir:    "/",
		ExecutableDir: "/Applications/Game Grove.app/Contents/MacOS",
	}
	loc := NewLocator(fsys.Memory(), ctx.SearchRoots())

	got := loc.Candidates(Category3D)
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, "/Applications/Game Grove.app/Contents/Resources/templates/3d-game-boilerplate", got[0])
	assert.Equal(t, "/Applications/Game Grove.app/Contents/Resources/templates/3d-game-boilerplate/", got[1])
	assert.Equal(t, "/Applications/Game Grove.app/Contents/Resources/_up_/src/templates/3d-game-boilerplate", got[2])
	assert.Equal(t, "/templates/3d-game-boilerplate", got[3])
}

func TestLocator_FirstMatchWins(t *testing.T) {
	mem := fsys.Memory()
	ctx := sourceContext()
	ctx.ResourceDir = "/opt/gamegrove/resources"

	testutil.WriteTree(t, mem, "/home/dev/gamegrove/templates/2d-game-boilerplate", testutil.GameTemplate())
	testutil.WriteTree(t, mem, "/opt/gamegrove/resources/_up_/src/templates/2d-game-boilerplate", testutil.GameTemplate())

	loc := NewLocator(mem, ctx.SearchRoots())
	path, err := loc.Locate(Category2D)
	require.NoError(t, err)
	assert.Equal(t, "/opt/gamegrove/resources/_up_/src/templates/2d-game-boilerplate", path)
}

func TestLocator_SkipsFilesWithTemplateName(t *testing.T) {
	mem := fsys.Memory()
	require.NoError(t, mem.MkdirAll("/home/dev/gamegrove/src-tauri/templates", 0755))
	require.NoError(t, afero.WriteFile(mem, "/home/dev/gamegrove/src-tauri/templates/2d-game-boilerplate", []byte("not a dir"), 0644))
	testutil.WriteTree(t, mem, "/home/dev/gamegrove/templates/2d-game-boilerplate", testutil.GameTemplate())

	loc := NewLocator(mem, sourceContext().SearchRoots())
	path, err := loc.Locate(Category2D)
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/gamegrove/templates/2d-game-boilerplate", path)
}

func TestLocator_NotFoundListsEveryCandidate(t *testing.T) {
	loc := NewLocator(fsys.Memory(), sourceContext().SearchRoots())

	_, err := loc.Locate(Category3D)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, Category3D, nf.Category)
	assert.Equal(t, loc.Candidates(Category3D), nf.CheckedPaths)
	for _, p := range nf.CheckedPaths {
		assert.Contains(t, err.Error(), p)
	}
}

func TestLocator_InvalidCategory(t *testing.T) {
	loc := NewLocator(fsys.Memory(), sourceContext().SearchRoots())

	_, err := loc.Locate(Category("4d"))
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.NotErrorIs(t, err, ErrTemplateNotFound)
}

func TestLocator_NormalizesCategory(t *testing.T) {
	mem := fsys.Memory()
	testutil.WriteTree(t, mem, "/w/templates/2d-game-boilerplate", testutil.GameTemplate())
	loc := NewLocator(mem, Context{WorkingDir: "/w"}.SearchRoots())

	for _, c := range []Category{"2d", "2D", " 2d "} {
		path, err := loc.Locate(c)
		require.NoError(t, err, "%q", c)
		assert.Equal(t, "/w/templates/2d-game-boilerplate", path)
		assert.Equal(t, loc.Candidates(Category2D), loc.Candidates(c))
	}

	_, err := loc.Locate("3D")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, Category3D, nf.Category)
	assert.Contains(t, nf.CheckedPaths, "/w/templates/3d-game-boilerplate")
}

func TestLocator_Deterministic(t *testing.T) {
	mem := fsys.Memory()
	testutil.WriteTree(t, mem, "/home/dev/gamegrove/src-tauri/target/templates/3d-game-boilerplate", testutil.GameTemplate())
	loc := NewLocator(mem, sourceContext().SearchRoots())

	first, err := loc.Locate(Category3D)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := loc.Locate(Category3D)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, loc.Candidates(Category3D), NewLocator(mem, sourceContext().SearchRoots()).Candidates(Category3D))
	}
}

func TestLocator_ListAvailable(t *testing.T) {
	mem := fsys.Memory()
	testutil.WriteTree(t, mem, "/home/dev/gamegrove/templates/2d-game-boilerplate", testutil.GameTemplate())
	loc := NewLocator(mem, sourceContext().SearchRoots())

	infos := loc.ListAvailable()
	require.Len(t, infos, 2)
	assert.Equal(t, Category2D, infos[0].Category)
	assert.NoError(t, infos[0].Err)
	assert.Equal(t, "/home/dev/gamegrove/templates/2d-game-boilerplate", infos[0].Path)
	assert.Equal(t, Category3D, infos[1].Category)
	assert.ErrorIs(t, infos[1].Err, ErrTemplateNotFound)
}

func TestContext_SearchRoots(t *testing.T) {
	ctx := Context{
		WorkingDir:    "/work",
		ExecutableDir: "/a/b/c/d/bin",
		ExtraRoots:    []string{"/shared/grove"},
	}

	roots := ctx.SearchRoots()
	want := []SearchRoot{
		{Dir: "/work", Kind: RootWorkingDir},
		{Dir: "/work", Kind: RootProject},
		{Dir: "/a/b/c/d/bin", Kind: RootExecutable},
		{Dir: "/a/b/c/d", Kind: RootExecutable},
		{Dir: "/a/b/c", Kind: RootExecutable},
		{Dir: "/a/b", Kind: RootExecutable},
		{Dir: "/shared/grove", Kind: RootConfigured},
	}
	assert.Equal(t, want, roots)
}

func TestContext_SearchRootsStopAtFilesystemRoot(t *testing.T) {
	ctx := Context{WorkingDir: "/w", ExecutableDir: "/bin"}
	roots := ctx.SearchRoots()
	assert.Equal(t, []SearchRoot{
		{Dir: "/w", Kind: RootWorkingDir},
		{Dir: "/w", Kind: RootProject},
		{Dir: "/bin", Kind: RootExecutable},
		{Dir: "/", Kind: RootExecutable},
	}, roots)
}

func TestFindProjectRoot(t *testing.T) {
	mem := fsys.Memory()
	require.NoError(t, mem.MkdirAll("/repo/src-tauri/src", 0755))
	require.NoError(t, afero.WriteFile(mem, "/repo/package.json", []byte("{}"), 0644))
	require.NoError(t, afero.WriteFile(mem, "/repo/src-tauri/.gamegrove.yaml", []byte(""), 0644))

	assert.Equal(t, "/repo/src-tauri", FindProjectRoot(mem, "/repo/src-tauri/src", nil))
	assert.Equal(t, "/repo", FindProjectRoot(mem, "/repo/src-tauri/src", []string{"package.json"}))
	assert.Equal(t, "/elsewhere/deep", FindProjectRoot(mem, "/elsewhere/deep", []string{"package.json"}))
}

func TestBundledResourceDir(t *testing.T) {
	mem := fsys.Memory()
	app := filepath.FromSlash("/Applications/Game Grove.app/Contents")
	require.NoError(t, mem.MkdirAll(filepath.Join(app, "MacOS"), 0755))
	require.NoError(t, mem.MkdirAll(filepath.Join(app, "Resources"), 0755))

	assert.Equal(t, filepath.Join(app, "Resources"), bundledResourceDir(mem, filepath.Join(app, "MacOS")))
	assert.Equal(t, "", bundledResourceDir(mem, "/usr/local/bin"))
	assert.Equal(t, "", bundledResourceDir(mem, ""))
}

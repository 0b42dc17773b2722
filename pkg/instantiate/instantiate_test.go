// Test Type: Unit Test
// Description: Tests for template tree instantiation

package instantiate_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/arthur-debert/lumina-project/pkg/classify"
	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/filesystem"
	"github.com/arthur-debert/lumina-project/pkg/instantiate"
	"github.com/arthur-debert/lumina-project/pkg/testutil"
	"github.com/arthur-debert/lumina-project/pkg/tokens"
	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngWithToken = "\x89PNG\r\n\x1a\n$PROJECT_NAME\x00\x01${PROJECT_NAME}"

func blankTemplate() map[string]string {
	return map[string]string{
		"template.json":                            `{"name": "Blank"}`,
		"${PROJECT_NAME}.lproject":                 `{"ProjectName": "${PROJECT_NAME}"}`,
		"Source/${PROJECT_NAME}/${PROJECT_NAME}.h": "class F${PROJECT_NAME} {};",
		"Source/${PROJECT_NAME}/API.h":             "#define $PROJECT_NAME_UPPER_API",
		"Game/Content/icon.png":                    pngWithToken,
		"Game/Content/template.json":               `{"keep": "$PROJECT_NAME"}`,
		"Game/Empty/":                              "",
	}
}

func TestInstantiateBlankScenario(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/Blank", blankTemplate())

	var seen []types.Event
	in := instantiate.New(fs, nil)
	result, err := in.Instantiate(context.Background(), "/tpl/Blank", "/work/Foo",
		tokens.ProjectTable("Foo"), instantiate.Options{OnEvent: func(e types.Event) { seen = append(seen, e) }})
	require.NoError(t, err)

	tree := testutil.ReadTree(t, fs, "/work/Foo")
	assert.Equal(t, map[string]string{
		"Foo.lproject":               `{"ProjectName": "Foo"}`,
		"Game/":                      "",
		"Game/Content/":              "",
		"Game/Content/icon.png":      pngWithToken,
		"Game/Content/template.json": `{"keep": "Foo"}`,
		"Game/Empty/":                "",
		"Source/":                    "",
		"Source/Foo/":                "",
		"Source/Foo/API.h":           "#define FOO_API",
		"Source/Foo/Foo.h":           "class FFoo {};",
	}, tree)

	assert.Equal(t, "/work/Foo", result.Destination)
	assert.Equal(t, 6, result.Directories)
	assert.Equal(t, 4, result.TextFiles)
	assert.Equal(t, 1, result.BinaryFiles)
	assert.Equal(t, 0, result.Fallbacks)
	assert.Equal(t, 1, result.Excluded)
	assert.Empty(t, result.Warnings())
	assert.Equal(t, result.Events, seen)
}

func TestInstantiateEventOrder(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{
		"b.txt":         "b",
		"a/z.txt":       "z",
		"a/y.png":       "y",
		"template.json": "{}",
	})

	result, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("P"), instantiate.Options{})
	require.NoError(t, err)

	var sources []string
	for i, e := range result.Events {
		assert.Equal(t, i+1, e.Seq)
		sources = append(sources, e.Source)
	}
	assert.Equal(t, []string{".", "a", "a/y.png", "a/z.txt", "b.txt", "template.json"}, sources)
	assert.Equal(t, types.OutcomeExcluded, result.Events[5].Outcome)
}

func TestInstantiateBinaryUntouched(t *testing.T) {
	fs := testutil.NewTestFS()
	data := []byte{0x00, 0xFF, '$', 'P', 'R', 'O', 'J', 'E', 'C', 'T', '_', 'N', 'A', 'M', 'E', 0x10}
	require.NoError(t, fs.MkdirAll("/tpl/T", 0755))
	require.NoError(t, fs.WriteFile("/tpl/T/blob.bin", data, 0644))

	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("P"), instantiate.Options{})
	require.NoError(t, err)

	got, err := fs.ReadFile("/out/P/blob.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestInstantiateDecodeFallback(t *testing.T) {
	fs := testutil.NewTestFS()
	broken := "\xC3\x28 $PROJECT_NAME"
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{"Legacy.h": broken})

	result, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("P"), instantiate.Options{})
	require.NoError(t, err)

	got, err := fs.ReadFile("/out/P/Legacy.h")
	require.NoError(t, err)
	assert.Equal(t, broken, string(got))

	assert.Equal(t, 1, result.Fallbacks)
	warnings := result.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, types.EventWarning, warnings[0].Kind)
	assert.Equal(t, string(errors.ErrDecodeFailure), warnings[0].Code)
	assert.Equal(t, "Legacy.h", warnings[0].Source)
}

func TestInstantiateUTF16Text(t *testing.T) {
	fs := testutil.NewTestFS()
	src, err := classify.Encode("name=$PROJECT_NAME", classify.UTF16LE)
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/tpl/T", 0755))
	require.NoError(t, fs.WriteFile("/tpl/T/settings.ini", src, 0644))

	_, err = instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("Foo"), instantiate.Options{})
	require.NoError(t, err)

	got, err := fs.ReadFile("/out/P/settings.ini")
	require.NoError(t, err)
	want, err := classify.Encode("name=Foo", classify.UTF16LE)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInstantiateExclude(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{
		"keep.txt":         "k",
		"scratch.tmp":      "x",
		"deep/more.tmp":    "x",
		"Build/output.txt": "x",
	})

	result, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("P"),
		instantiate.Options{Exclude: []string{"**/*.tmp", "Build"}})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"deep/": "", "keep.txt": "k"}, testutil.ReadTree(t, fs, "/out/P"))
	assert.Equal(t, 3, result.Excluded)
}

func TestInstantiateInvalidExcludePattern(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{"a.txt": ""})

	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("P"),
		instantiate.Options{Exclude: []string{"[a"}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, statErr := fs.Stat("/out/P")
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstantiateMissingTemplate(t *testing.T) {
	fs := testutil.NewTestFS()

	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/Nope", "/out/P", tokens.ProjectTable("P"), instantiate.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateNotFound))
}

func TestInstantiateDestinationExists(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{"a.txt": "$PROJECT_NAME"})
	testutil.WriteTree(t, fs, "/out/P", map[string]string{"mine.txt": "keep"})

	result, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("P"), instantiate.Options{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationExists))
	assert.Equal(t, "/out/P", errors.Path(err))
	assert.Equal(t, map[string]string{"mine.txt": "keep"}, testutil.ReadTree(t, fs, "/out/P"))
}

func TestInstantiateDestinationExistsOnDisk(t *testing.T) {
	base := t.TempDir()
	fs := filesystem.NewOS()
	tpl := filepath.Join(base, "tpl")
	dest := filepath.Join(base, "Foo")
	testutil.WriteTree(t, fs, tpl, map[string]string{"a.txt": "$PROJECT_NAME", "sub/b.txt": "b"})
	testutil.WriteTree(t, fs, dest, map[string]string{"existing.txt": "x"})

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(dest, old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dest, "existing.txt"), old, old))

	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), tpl, dest, tokens.ProjectTable("Foo"), instantiate.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationExists))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
	info, err = os.Stat(filepath.Join(dest, "existing.txt"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
}

func TestInstantiatePreservesFileMode(t *testing.T) {
	base := t.TempDir()
	fs := filesystem.NewOS()
	tpl := filepath.Join(base, "tpl")
	require.NoError(t, os.MkdirAll(tpl, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tpl, "GenerateProject.py"), []byte("print('$PROJECT_NAME')"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tpl, "notes.txt"), []byte("n"), 0600))

	dest := filepath.Join(base, "nested", "Foo")
	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), tpl, dest, tokens.ProjectTable("Foo"), instantiate.Options{})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dest, "GenerateProject.py"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(dest, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(filepath.Join(dest, "GenerateProject.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('Foo')", string(data))
}

func TestInstantiateIdempotent(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/Blank", blankTemplate())
	table := tokens.ProjectTable("Foo")
	in := instantiate.New(fs, nil)

	first, err := in.Instantiate(context.Background(), "/tpl/Blank", "/out/One", table, instantiate.Options{})
	require.NoError(t, err)
	second, err := in.Instantiate(context.Background(), "/tpl/Blank", "/out/Two", table, instantiate.Options{})
	require.NoError(t, err)

	assert.Equal(t, testutil.ReadTree(t, fs, "/out/One"), testutil.ReadTree(t, fs, "/out/Two"))
	assert.Equal(t, len(first.Events), len(second.Events))

	// Output holds no token spellings, so substituting it again changes nothing.
	for rel, content := range testutil.ReadTree(t, fs, "/out/One") {
		if filepath.Ext(rel) == ".png" {
			continue
		}
		assert.Equal(t, content, table.Substitute(content), rel)
	}
}

func TestInstantiateRejectsBadSegment(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{"$PROJECT_NAME/a.txt": ""})

	table, err := tokens.New(types.Token{Name: "PROJECT_NAME", Value: "a/b"})
	require.NoError(t, err)

	_, err = instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", table, instantiate.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Equal(t, "$PROJECT_NAME", errors.Path(err))
}

func TestInstantiateCollision(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{
		"$PROJECT_NAME.h":   "one",
		"${PROJECT_NAME}.h": "two",
	})

	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P", tokens.ProjectTable("P"), instantiate.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIOFailure))
	assert.Equal(t, "/out/P/P.h", errors.Path(err))
}

func TestInstantiateStaged(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/Blank", blankTemplate())

	result, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/Blank", "/out/Foo",
		tokens.ProjectTable("Foo"), instantiate.Options{Stage: true})
	require.NoError(t, err)

	entries, err := fs.ReadDir("/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Foo", entries[0].Name())

	assert.Contains(t, testutil.ReadTree(t, fs, "/out/Foo"), "Source/Foo/Foo.h")
	for _, e := range result.Events {
		if e.Target != "" {
			assert.Contains(t, e.Target, "/out/Foo")
		}
	}
}

func TestInstantiateStagedFailureCleansUp(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{
		"$PROJECT_NAME.h":   "one",
		"${PROJECT_NAME}.h": "two",
	})
	require.NoError(t, fs.MkdirAll("/out", 0755))

	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), "/tpl/T", "/out/P",
		tokens.ProjectTable("P"), instantiate.Options{Stage: true})
	require.Error(t, err)

	entries, err := fs.ReadDir("/out")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInstantiateCancelled(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/T", map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := instantiate.New(fs, nil).Instantiate(ctx, "/tpl/T", "/out/P", tokens.ProjectTable("P"), instantiate.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
	require.NotNil(t, result)
	assert.Equal(t, 0, result.TextFiles)
}

func TestCountMatchesEvents(t *testing.T) {
	fs := testutil.NewTestFS()
	testutil.WriteTree(t, fs, "/tpl/Blank", blankTemplate())
	testutil.WriteTree(t, fs, "/tpl/Blank", map[string]string{"Saved/Logs/run.log": "x"})
	opts := instantiate.Options{Exclude: []string{"Saved"}}

	in := instantiate.New(fs, nil)
	count, err := in.Count("/tpl/Blank", opts)
	require.NoError(t, err)

	result, err := in.Instantiate(context.Background(), "/tpl/Blank", "/work/Foo", tokens.ProjectTable("Foo"), opts)
	require.NoError(t, err)
	assert.Equal(t, len(result.Events), count)
}

// appearingFS creates the destination as an empty directory right before the
// staged tree is renamed onto it.
type appearingFS struct {
	types.FS
	destination string
}

func (a appearingFS) Rename(oldpath, newpath string) error {
	if newpath == a.destination {
		if err := a.FS.Mkdir(newpath, 0755); err != nil {
			return err
		}
	}
	return a.FS.Rename(oldpath, newpath)
}

func TestInstantiateStagedNeverReplacesDestination(t *testing.T) {
	base := t.TempDir()
	fs := filesystem.NewOS()
	tpl := filepath.Join(base, "tpl", "T")
	testutil.WriteTree(t, fs, tpl, map[string]string{"${PROJECT_NAME}.h": "class ${PROJECT_NAME};"})
	out := filepath.Join(base, "out")
	dest := filepath.Join(out, "P")

	_, err := instantiate.New(appearingFS{FS: fs, destination: dest}, nil).Instantiate(context.Background(), tpl, dest,
		tokens.ProjectTable("P"), instantiate.Options{Stage: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationExists))
	assert.Equal(t, dest, errors.Path(err))

	// The directory that appeared is left alone and the staging tree is gone
	kept, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, kept)
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "P", entries[0].Name())
}

func TestInstantiateSymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base := t.TempDir()
	fs := filesystem.NewOS()
	tpl := filepath.Join(base, "tpl", "T")
	testutil.WriteTree(t, fs, tpl, map[string]string{"a.txt": "a", "Sub/b.txt": "b"})
	require.NoError(t, os.Symlink(".", filepath.Join(tpl, "loop")))
	require.NoError(t, os.Symlink("..", filepath.Join(tpl, "Sub", "up")))
	dest := filepath.Join(base, "out", "P")

	in := instantiate.New(fs, nil)
	_, err := in.Count(tpl, instantiate.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIOFailure))

	result, err := in.Instantiate(context.Background(), tpl, dest, tokens.ProjectTable("P"), instantiate.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIOFailure))
	assert.Contains(t, err.Error(), "Sub/up links back")
	assert.Equal(t, filepath.Join(tpl, "Sub", "up"), errors.Path(err))

	// Nothing was created for the looping entries
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Directories)
	assert.NoDirExists(t, filepath.Join(dest, "loop"))
	assert.NoDirExists(t, filepath.Join(dest, "Sub", "up"))
}

func TestInstantiateSymlinkedDirectoryIsCopied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	base := t.TempDir()
	fs := filesystem.NewOS()
	shared := filepath.Join(base, "shared")
	testutil.WriteTree(t, fs, shared, map[string]string{"c.txt": "$PROJECT_NAME"})
	tpl := filepath.Join(base, "tpl", "T")
	testutil.WriteTree(t, fs, tpl, map[string]string{"a.txt": "a"})
	require.NoError(t, os.Symlink(shared, filepath.Join(tpl, "One")))
	require.NoError(t, os.Symlink(shared, filepath.Join(tpl, "Two")))
	dest := filepath.Join(base, "out", "P")

	_, err := instantiate.New(fs, nil).Instantiate(context.Background(), tpl, dest, tokens.ProjectTable("P"), instantiate.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a.txt":     "a",
		"One/":      "",
		"One/c.txt": "P",
		"Two/":      "",
		"Two/c.txt": "P",
	}, testutil.ReadTree(t, fs, dest))
}

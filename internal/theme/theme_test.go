package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

func TestParse_RejectsUnknownType(t *testing.T) {
	_, err := Parse([]byte("[types.loud]\nbackground = \"#000\"\n"))
	assert.ErrorIs(t, err, model.ErrInvalidType)

	_, err = Parse([]byte("name = "))
	assert.Error(t, err)
}

func TestTheme_For(t *testing.T) {
	th := NewDefaultTheme()

	warn := th.For(model.TypeWarn)
	assert.Equal(t, "#fd9725", warn.Background)
	assert.Equal(t, th.Base.Foreground, warn.Foreground, "unset fields inherit base")

	info := th.For(model.TypeInfo)
	assert.Equal(t, th.Base.Background, info.Background)
}

func TestTheme_Overlay(t *testing.T) {
	base := NewDefaultTheme()
	child := &Theme{
		Name:  "child",
		Base:  Colors{Background: "#000000"},
		Types: map[string]TypeStyle{"WARN": {Icon: "?"}},
	}

	out := child.Overlay(base)
	assert.Equal(t, "child", out.Name)
	assert.Equal(t, "#000000", out.Base.Background)
	assert.Equal(t, base.Base.Foreground, out.Base.Foreground)

	warn := out.For(model.TypeWarn)
	assert.Equal(t, "?", warn.Icon)
	assert.Equal(t, "#fd9725", warn.Background, "type colors survive an icon-only override")

	// base is untouched
	assert.Equal(t, "!", base.For(model.TypeWarn).Icon)
}

func TestStyles_Render(t *testing.T) {
	s := NewDefaultTheme().Styles()

	out := s.Toast(model.TypeSuccess, 30).Render("saved")
	assert.Contains(t, out, "saved")
	assert.NotEmpty(t, s.Icon(model.TypeSuccess))
	assert.Contains(t, s.Action(model.TypeInfo, true).Render("UNDO"), "UNDO")
	assert.Contains(t, s.Dismiss(model.TypeInfo).Render("x"), "x")
	assert.Contains(t, s.Muted().Render("+2 more"), "+2 more")
}

func TestLoader_Resolution(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir, nil)

	// Bundled theme inherits default
	require.NoError(t, l.LoadTheme("light"))
	assert.Equal(t, "light", l.CurrentName())
	assert.Equal(t, "#f5f5f5", l.Current().Base.Background)
	assert.Equal(t, "#fd9725", l.Current().For(model.TypeWarn).Background)
	assert.Empty(t, l.Path())

	// User theme overrides bundled one with the same name
	user := "[base]\nbackground = \"#123456\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light.toml"), []byte(user), 0644))
	require.NoError(t, l.LoadTheme("light"))
	assert.Equal(t, "#123456", l.Current().Base.Background)
	assert.Equal(t, filepath.Join(dir, "light.toml"), l.Path())

	// Unknown name falls back to default
	err := l.LoadTheme("missing")
	assert.Error(t, err)
	assert.Equal(t, DefaultThemeName, l.CurrentName())
	assert.True(t, l.Current().IsDefault)
}

func TestLoader_InheritanceCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.toml"), []byte(`inherits = "b"`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.toml"), []byte(`inherits = "a"`), 0644))

	l := NewLoader(dir, nil)
	err := l.LoadTheme("a")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "cycle"))
}

func TestLoader_ListThemes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.toml"), []byte(`name = "mine"`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	names := NewLoader(dir, nil).ListThemes()
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "mine")
	assert.NotContains(t, names, "notes")
}

func TestTheme_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[base]\nforeground = \"#111111\"\n"), 0644))

	th, err := NewTheme("mine", path)
	require.NoError(t, err)

	changed, err := th.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("[base]\nforeground = \"#222222\"\n"), 0644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	changed, err = th.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "#222222", th.Base.Foreground)

	// Bundled themes never reload
	changed, err = NewDefaultTheme().Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

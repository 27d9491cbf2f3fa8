package keymap

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAction(t *testing.T) {
	tests := []struct {
		name string
		exe  string
		want string
	}{
		{"plain path", "/usr/bin/backlight", `System.Exec("/usr/bin/backlight toggle")`},
		{"spaced path", "/storage/my tools/backlight", `System.Exec("'/storage/my tools/backlight' toggle")`},
		{"single quote", "/storage/bob's/backlight", `System.Exec("'/storage/bob'\\''s/backlight' toggle")`},
		{"double quote", `/storage/a"b/backlight`, `System.Exec("'/storage/a\"b/backlight' toggle")`},
		{"empty", "", `System.Exec("'' toggle")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultAction(tt.exe))
		})
	}
}

func TestRender_SpacedPath(t *testing.T) {
	action := DefaultAction("/storage/my tools/backlight")
	data, err := Render(Mapping{Button: "blue", Action: action})
	require.NoError(t, err)

	var parsed struct {
		Blue string `xml:"global>remote>blue"`
	}
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, action, parsed.Blue)
}

func TestRender(t *testing.T) {
	data, err := Render(Mapping{Button: "Red", Action: DefaultAction("/usr/bin/backlight")})
	require.NoError(t, err)

	doc := string(data)
	assert.Contains(t, doc, "<keymap>")
	assert.Contains(t, doc, "<global>")
	assert.Contains(t, doc, "<remote>")
	assert.Contains(t, doc, "<red>System.Exec(&#34;/usr/bin/backlight toggle&#34;)</red>")

	// the document parses back to the same action
	var parsed struct {
		Red string `xml:"global>remote>red"`
	}
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, `System.Exec("/usr/bin/backlight toggle")`, parsed.Red)
}

func TestRender_Invalid(t *testing.T) {
	_, err := Render(Mapping{Button: "purple", Action: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrKeymap))

	_, err = Render(Mapping{Button: "red", Action: " "})
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "userdata", "keymaps")

	path, err := Write(dir, Mapping{Button: "blue", Action: DefaultAction("backlight")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<blue>")

	// a second write replaces the first and leaves no temp files
	_, err = Write(dir, Mapping{Button: "green", Action: DefaultAction("backlight")})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<green>")
	assert.NotContains(t, string(data), "<blue>")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_DirectoryIsAFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "keymaps")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Write(blocker, Mapping{Button: "red", Action: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrKeymap))
}

func TestValidButton(t *testing.T) {
	assert.True(t, ValidButton("red"))
	assert.True(t, ValidButton("YELLOW"))
	assert.False(t, ValidButton("fire"))
	assert.Contains(t, ButtonNames(), "red")
	assert.True(t, len(ButtonNames()) > 10)
}

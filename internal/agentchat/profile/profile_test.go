package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFind(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writeProfile(t, low, "support.toml", `instructions = "low"`)
	highPath := writeProfile(t, high, "support.toml", `instructions = "high"`)
	lowOnly := writeProfile(t, low, "sales.toml", `instructions = "sales"`)

	dirs := []string{low, high}

	path, err := Find("support", dirs)
	require.NoError(t, err)
	assert.Equal(t, highPath, path, "later directories take precedence")

	path, err = Find("sales.toml", dirs)
	require.NoError(t, err)
	assert.Equal(t, lowOnly, path)

	path, err = Find(lowOnly, nil)
	require.NoError(t, err)
	assert.Equal(t, lowOnly, path)

	_, err = Find("missing", dirs)
	assert.Error(t, err)

	_, err = Find(filepath.Join(low, "missing.toml"), dirs)
	assert.Error(t, err)

	_, err = Find("", dirs)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "support.toml", `
instructions = "You help customers of {{company}}."
knowledge = "{{company}} is open {{hours}}."
rag_corpus = "projects/p/locations/l/ragCorpora/c"
`)

	p, err := Resolve("support", []string{dir}, []string{"company:Acme", `hours:9\:00-17\:00`})
	require.NoError(t, err)

	assert.Equal(t, &Profile{
		Instructions: "You help customers of Acme.",
		Knowledge:    "Acme is open 9:00-17:00.",
		RagCorpus:    "projects/p/locations/l/ragCorpora/c",
	}, p)
}

func TestResolveInvalid(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "broken.toml", `instructions = `)
	writeProfile(t, dir, "ok.toml", `instructions = "hi"`)

	_, err := Resolve("broken", []string{dir}, nil)
	assert.Error(t, err)

	_, err = Resolve("ok", []string{dir}, []string{"no-separator"})
	assert.Error(t, err)
}

func TestRenderLeavesOriginalUntouched(t *testing.T) {
	p := &Profile{Instructions: "Hello {{name}}"}

	rendered := p.Render(map[string]string{"name": "Ann"})

	assert.Equal(t, "Hello Ann", rendered.Instructions)
	assert.Equal(t, "Hello {{name}}", p.Instructions)
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "simple pairs",
			args: []string{"a:1", "b: two "},
			want: map[string]string{"a": "1", "b": "two"},
		},
		{
			name: "value with colon",
			args: []string{"url:http://example.com"},
			want: map[string]string{"url": "http://example.com"},
		},
		{
			name: "quoted and escaped",
			args: []string{`"q:say \"hi\" now"`, `t:10\:30`},
			want: map[string]string{"q": `say "hi" now`, "t": "10:30"},
		},
		{
			name: "no args",
			args: nil,
			want: map[string]string{},
		},
		{
			name:    "missing separator",
			args:    []string{"novalue"},
			wantErr: true,
		},
		{
			name:    "empty key",
			args:    []string{":value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package vault_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/vault"
)

func TestVault_Load(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"Inbox/Weekly sync.md": "---\ntags: [meeting, \"#2024\"]\n---\n# Weekly sync\n\nDiscussed #project/alpha.\n",
		"Inbox/inline.md":      "Some text #idea and `#notatag` and #123.\n\n```\n#alsonot\n```\n\nsnake #my_tag\n",
		"Inbox/string-tags.md": "---\ntags: work, home\ntag: single\n---\nbody\n",
		"Inbox/disabled.md":    "---\nAutoNoteMover: disable\ntags: [meeting]\n---\n",
		"Inbox/disabled2.md":   "---\nnotemover: Disable\n---\n",
		"Inbox/broken.md":      "---\ntags: [unclosed\n---\n#inline\n",
		"root.md":              "#top\n",
		"Inbox/image.png":      "png",
	}

	tcs := map[string]struct {
		path     string
		nested   bool
		want     engine.Document
		wantErr  error
		checkErr bool
	}{
		"frontmatter and inline": {
			path: "Inbox/Weekly sync.md",
			want: engine.Document{
				Path:      "Inbox/Weekly sync.md",
				Name:      "Weekly sync.md",
				BaseName:  "Weekly sync",
				Extension: "md",
				Container: "Inbox",
				Tags:      []string{"#meeting", "#2024", "#project/alpha"},
			},
		},
		"nested expansion": {
			path:   "Inbox/Weekly sync.md",
			nested: true,
			want: engine.Document{
				Path:      "Inbox/Weekly sync.md",
				Name:      "Weekly sync.md",
				BaseName:  "Weekly sync",
				Extension: "md",
				Container: "Inbox",
				Tags:      []string{"#meeting", "#2024", "#project", "#project/alpha"},
			},
		},
		"inline only skips code and numbers": {
			path: "Inbox/inline.md",
			want: engine.Document{
				Path:      "Inbox/inline.md",
				Name:      "inline.md",
				BaseName:  "inline",
				Extension: "md",
				Container: "Inbox",
				Tags:      []string{"#idea", "#my_tag"},
			},
		},
		"string tags": {
			path: "Inbox/string-tags.md",
			want: engine.Document{
				Path:      "Inbox/string-tags.md",
				Name:      "string-tags.md",
				BaseName:  "string-tags",
				Extension: "md",
				Container: "Inbox",
				Tags:      []string{"#work", "#home", "#single"},
			},
		},
		"disable flag legacy key": {
			path: "Inbox/disabled.md",
			want: engine.Document{
				Path:      "Inbox/disabled.md",
				Name:      "disabled.md",
				BaseName:  "disabled",
				Extension: "md",
				Container: "Inbox",
				Tags:      []string{"#meeting"},
				Disabled:  true,
			},
		},
		"disable flag case insensitive": {
			path: "Inbox/disabled2.md",
			want: engine.Document{
				Path:      "Inbox/disabled2.md",
				Name:      "disabled2.md",
				BaseName:  "disabled2",
				Extension: "md",
				Container: "Inbox",
				Disabled:  true,
			},
		},
		"broken frontmatter keeps inline tags": {
			path: "Inbox/broken.md",
			want: engine.Document{
				Path:      "Inbox/broken.md",
				Name:      "broken.md",
				BaseName:  "broken",
				Extension: "md",
				Container: "Inbox",
				Tags:      []string{"#inline"},
			},
		},
		"root document": {
			path: "/root.md",
			want: engine.Document{
				Path:      "root.md",
				Name:      "root.md",
				BaseName:  "root",
				Extension: "md",
				Container: "/",
				Tags:      []string{"#top"},
			},
		},
		"not a document": {
			path:    "Inbox/image.png",
			wantErr: vault.ErrNotDocument,
		},
		"escape": {
			path:    "../outside.md",
			wantErr: vault.ErrPathEscape,
		},
		"missing": {
			path:     "Inbox/missing.md",
			checkErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v := newVault(t, files, vault.WithNestedTags(tc.nested))

			got, err := v.Load(tc.path)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			if tc.checkErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVault_Move(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		files       map[string]string
		doc         string
		destination string
		wantErr     error
		wantPath    string
	}{
		"moves into existing folder": {
			files:       map[string]string{"Inbox/a.md": "a", "Meetings/": ""},
			doc:         "Inbox/a.md",
			destination: "Meetings",
			wantPath:    "Meetings/a.md",
		},
		"moves to root": {
			files:       map[string]string{"Inbox/a.md": "a"},
			doc:         "Inbox/a.md",
			destination: "/",
			wantPath:    "a.md",
		},
		"same path is a no-op": {
			files:       map[string]string{"Meetings/a.md": "a"},
			doc:         "Meetings/a.md",
			destination: "Meetings/",
			wantPath:    "Meetings/a.md",
		},
		"missing destination": {
			files:       map[string]string{"Inbox/a.md": "a"},
			doc:         "Inbox/a.md",
			destination: "Nowhere",
			wantErr:     vault.ErrDestinationNotFound,
		},
		"destination is a file": {
			files:       map[string]string{"Inbox/a.md": "a", "Meetings": "file"},
			doc:         "Inbox/a.md",
			destination: "Meetings",
			wantErr:     vault.ErrDestinationNotFound,
		},
		"target exists": {
			files:       map[string]string{"Inbox/a.md": "a", "Meetings/a.md": "other"},
			doc:         "Inbox/a.md",
			destination: "Meetings",
			wantErr:     vault.ErrDestinationExists,
		},
		"reserved destination": {
			files:       map[string]string{"Inbox/a.md": "a", ".obsidian/": ""},
			doc:         "Inbox/a.md",
			destination: ".obsidian",
			wantErr:     vault.ErrReserved,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v := newVault(t, tc.files)

			doc, err := v.Load(tc.doc)
			require.NoError(t, err)

			err = v.Move(t.Context(), doc, tc.destination)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				_, statErr := os.Stat(filepath.Join(v.Dir(), filepath.FromSlash(tc.doc)))
				require.NoError(t, statErr, "source must remain in place")

				return
			}

			require.NoError(t, err)

			_, err = os.Stat(filepath.Join(v.Dir(), filepath.FromSlash(tc.wantPath)))
			require.NoError(t, err)
		})
	}
}

func TestVault_Move_Cancelled(t *testing.T) {
	t.Parallel()

	v := newVault(t, map[string]string{"Inbox/a.md": "a", "Meetings/": ""})

	doc, err := v.Load("Inbox/a.md")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.ErrorIs(t, v.Move(ctx, doc, "Meetings"), context.Canceled)
}

func TestVault_Listing(t *testing.T) {
	t.Parallel()

	v := newVault(t, map[string]string{
		"a.md":                  "",
		"b.txt":                 "",
		"Inbox/c.md":            "",
		"Inbox/Deep/d.md":       "",
		"Archive/":              "",
		".obsidian/plugin.md":   "",
		".obsidian/themes/x.md": "",
	})

	docs, err := v.ListDocuments("/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, docs)

	subs, err := v.ListSubcontainers("/")
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive", "Inbox"}, subs)

	folders, err := v.Folders()
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "Archive", "Inbox", "Inbox/Deep"}, folders)

	reserved, err := v.ListDocuments(".obsidian")
	require.NoError(t, err)
	assert.Empty(t, reserved)
}

func TestVault_Rel(t *testing.T) {
	t.Parallel()

	v := newVault(t, map[string]string{"Inbox/": ""})

	rel, err := v.Rel(filepath.Join(v.Dir(), "Inbox", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "Inbox/a.md", rel)

	_, err = v.Rel(filepath.Dir(v.Dir()))
	require.ErrorIs(t, err, vault.ErrPathEscape)

	assert.True(t, v.IsReserved(".obsidian/workspace.json"))
	assert.False(t, v.IsReserved("Inbox/a.md"))
}

package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/vault/paths"
)

// DefaultConfigDir is the reserved configuration container.
const DefaultConfigDir = ".obsidian"

// Extension is the document file extension, without the dot.
const Extension = "md"

var (
	// ErrDestinationNotFound is returned when moving into a missing container.
	ErrDestinationNotFound = errors.New("destination folder does not exist")
	// ErrDestinationExists is returned when a different file already occupies
	// the target path of a move.
	ErrDestinationExists = errors.New("destination file already exists")
	// ErrPathEscape is returned for paths that leave the vault.
	ErrPathEscape = errors.New("path escapes vault")
	// ErrReserved is returned for paths inside the configuration container.
	ErrReserved = errors.New("path is inside the configuration folder")
	// ErrNotDocument is returned when loading a path that is not a document.
	ErrNotDocument = errors.New("not a markdown document")

	// Compile-time interface checks.
	_ engine.Host = (*Vault)(nil)
)

// Opt configures a [Vault].
type Opt func(*Vault)

// WithConfigDir sets the reserved configuration container. An empty value
// disables the reservation.
func WithConfigDir(dir string) Opt {
	return func(v *Vault) {
		v.configDir = strings.TrimSpace(dir)
	}
}

// WithNestedTags enables nested tag expansion: "#a/b" also reports "#a".
func WithNestedTags(enabled bool) Opt {
	return func(v *Vault) {
		v.nestedTags = enabled
	}
}

// Vault is a directory of markdown notes.
type Vault struct {
	root       *os.Root
	fsys       fs.FS
	dir        string
	configDir  string
	nestedTags bool
}

// Open opens the vault rooted at dir.
func Open(dir string, opts ...Opt) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	v := &Vault{
		root:      root,
		fsys:      root.FS(),
		dir:       abs,
		configDir: DefaultConfigDir,
	}
	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// Close releases the vault root.
func (v *Vault) Close() error {
	err := v.root.Close()
	if err != nil {
		return fmt.Errorf("close vault: %w", err)
	}

	return nil
}

// Dir returns the absolute vault directory.
func (v *Vault) Dir() string {
	return v.dir
}

// ConfigDir returns the normalized reserved container, or "" when none is set.
func (v *Vault) ConfigDir() string {
	if v.configDir == "" || paths.Normalize(v.configDir) == paths.Root {
		return ""
	}

	return paths.Normalize(v.configDir)
}

// IsReserved reports whether p lies in the configuration container.
func (v *Vault) IsReserved(p string) bool {
	cfg := v.ConfigDir()
	return cfg != "" && paths.Within(p, cfg)
}

// Rel converts an absolute file system path inside the vault into a
// normalized vault path.
func (v *Vault) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(v.dir, abs)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s: %w", abs, ErrPathEscape)
	}

	return paths.Normalize(rel), nil
}

// IsDocument reports whether p names a markdown document.
func IsDocument(p string) bool {
	return strings.EqualFold(strings.TrimPrefix(path.Ext(p), "."), Extension)
}

// Load reads the document at the vault path p.
func (v *Vault) Load(p string) (engine.Document, error) {
	p = paths.Normalize(p)

	name, err := v.fsName(p)
	if err != nil {
		return engine.Document{}, err
	}
	if !IsDocument(p) {
		return engine.Document{}, fmt.Errorf("%s: %w", p, ErrNotDocument)
	}

	content, err := fs.ReadFile(v.fsys, name)
	if err != nil {
		return engine.Document{}, fmt.Errorf("read %s: %w", p, err)
	}

	header, body := splitFrontmatter(content)

	fm, err := parseFrontmatter(header)
	if err != nil {
		// Notes with broken frontmatter are still classified by their inline
		// tags and title.
		slog.Debug("ignore invalid frontmatter",
			slog.String("path", p),
			slog.Any("err", err),
		)

		fm = frontmatter{}
	}

	base := path.Base(p)

	return engine.Document{
		Path:      p,
		Name:      base,
		BaseName:  strings.TrimSuffix(base, path.Ext(base)),
		Extension: strings.TrimPrefix(path.Ext(base), "."),
		Container: paths.Container(p),
		Tags:      collectTags(v.nestedTags, fm.tags(), inlineTags(body)),
		Disabled:  fm.disabled(),
	}, nil
}

// Move moves doc into the destination container, keeping its file name.
// Moving a document onto its own path is a no-op.
func (v *Vault) Move(ctx context.Context, doc engine.Document, destination string) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("move %s: %w", doc.Path, err)
	}

	destination = paths.Normalize(destination)
	if v.IsReserved(destination) {
		return fmt.Errorf("%s: %w", destination, ErrReserved)
	}

	destName, err := v.fsName(destination)
	if err != nil {
		return err
	}

	info, err := fs.Stat(v.fsys, destName)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", destination, ErrDestinationNotFound)
	}

	src := paths.Normalize(doc.Path)
	target := paths.Join(destination, path.Base(src))
	if target == src {
		return nil
	}

	srcName, err := v.fsName(src)
	if err != nil {
		return err
	}

	targetName, err := v.fsName(target)
	if err != nil {
		return err
	}

	_, err = fs.Stat(v.fsys, targetName)
	if err == nil {
		return fmt.Errorf("%s: %w", target, ErrDestinationExists)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	err = v.root.Rename(filepath.FromSlash(srcName), filepath.FromSlash(targetName))
	if err != nil {
		return fmt.Errorf("rename %s to %s: %w", src, target, err)
	}

	slog.Debug("renamed document",
		slog.String("from", src),
		slog.String("to", target),
	)

	return nil
}

// ListDocuments returns the documents directly inside container, sorted by
// path.
func (v *Vault) ListDocuments(container string) ([]string, error) {
	return v.list(container, func(e fs.DirEntry) bool {
		return e.Type().IsRegular() && IsDocument(e.Name())
	})
}

// ListSubcontainers returns the containers directly inside container,
// excluding the configuration container, sorted by path.
func (v *Vault) ListSubcontainers(container string) ([]string, error) {
	return v.list(container, func(e fs.DirEntry) bool {
		return e.IsDir()
	})
}

func (v *Vault) list(container string, keep func(fs.DirEntry) bool) ([]string, error) {
	container = paths.Normalize(container)
	if v.IsReserved(container) {
		return nil, nil
	}

	name, err := v.fsName(container)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(v.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", container, err)
	}

	var out []string

	for _, e := range entries {
		if !keep(e) {
			continue
		}

		p := paths.Join(container, e.Name())
		if v.IsReserved(p) {
			continue
		}

		out = append(out, p)
	}

	slices.Sort(out)

	return out, nil
}

// Folders returns every container of the vault, including the root and
// excluding the configuration container, sorted by path.
func (v *Vault) Folders() ([]string, error) {
	out := []string{paths.Root}

	err := fs.WalkDir(v.fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || name == "." {
			return nil
		}

		p := paths.Normalize(name)
		if v.IsReserved(p) {
			return fs.SkipDir
		}

		out = append(out, p)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	slices.Sort(out)

	return out, nil
}

// fsName converts a normalized vault path into an [fs.FS] name.
func (v *Vault) fsName(p string) (string, error) {
	if p == paths.Root {
		return ".", nil
	}
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("%s: %w", p, ErrPathEscape)
	}

	return p, nil
}

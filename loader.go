package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// resourceExts is the lookup order for a language's resource file.
var resourceExts = []string{".yaml", ".yml", ".json", ".toml"}

// Loader fetches the translation tree of one language.
type Loader interface {
	Load(ctx context.Context, lang string) (Tree, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, lang string) (Tree, error)

func (f LoaderFunc) Load(ctx context.Context, lang string) (Tree, error) {
	return f(ctx, lang)
}

// Static returns a Loader that always yields tree.
func Static(tree Tree) Loader {
	return LoaderFunc(func(context.Context, string) (Tree, error) {
		return tree, nil
	})
}

// Registry dispatches to one Loader per language code.
type Registry map[string]Loader

func (r Registry) Load(ctx context.Context, lang string) (Tree, error) {
	l, ok := r[lang]
	if !ok || l == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return l.Load(ctx, lang)
}

// FSLoader reads "<lang>.yaml", "<lang>.yml", "<lang>.json" or
// "<lang>.toml" from the root of a file system, e.g.
//
//	locales/en.yaml
//	locales/de.toml
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader returns a loader over fsys. Use fs.Sub or os.DirFS to point
// it at a locale directory.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

func (l *FSLoader) Load(ctx context.Context, lang string) (Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ext := range resourceExts {
		name := lang + ext
		data, err := fs.ReadFile(l.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", name, err)
		}
		return DecodeFile(name, data)
	}
	return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, lang)
}

// DiscoverLanguages lists the language codes that have a resource file at
// the root of fsys, sorted.
func DiscoverLanguages(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var langs []string
	for _, e := range entries {
		if e.IsDir() || !IsResourceFile(e.Name()) {
			continue
		}
		lang := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

// IsResourceFile reports whether name has a supported resource extension.
func IsResourceFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range resourceExts {
		if ext == e {
			return true
		}
	}
	return false
}

// DecodeFile decodes a resource file, choosing the format by extension.
func DecodeFile(name string, data []byte) (Tree, error) {
	var doc map[string]any
	var err error

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %s: unknown format", ErrInvalidResource, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %s", ErrInvalidResource, name, err)
	}

	tree, err := DecodeTree(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tree, nil
}

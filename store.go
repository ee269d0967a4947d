package i18n

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

// entry is a cached load result. A nil tree records a failed load.
type entry struct {
	tree Tree
	err  error
}

// Store is a read-through cache of translation trees keyed by language.
// Trees are loaded on first use and kept for the lifetime of the Store.
type Store struct {
	mu    sync.RWMutex
	trees map[string]*entry

	group  singleflight.Group
	loader Loader
	// canonical code -> code as registered, which is what the loader is asked for
	supported   map[string]string
	logger      *zap.Logger
	retryFailed bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used to report load failures.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRetry makes the store forget failed loads so the next Get tries again.
func WithRetry() StoreOption {
	return func(s *Store) {
		s.retryFailed = true
	}
}

// NewStore creates a store for the given supported languages. Codes are
// canonicalized for matching, but the loader is always called with the code
// as it was registered here (a "pt-br.yaml" file stays loadable as "pt-br").
// When two codes canonicalize alike the first one wins. An unparsable code is
// an error.
func NewStore(loader Loader, langs []string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		trees:     make(map[string]*entry),
		loader:    loader,
		supported: make(map[string]string, len(langs)),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, l := range langs {
		code, err := Canonical(l)
		if err != nil {
			return nil, err
		}
		if _, dup := s.supported[code]; !dup {
			s.supported[code] = l
		}
	}
	return s, nil
}

// Canonical returns the BCP 47 canonical form of a language code.
func Canonical(lang string) (string, error) {
	if lang == "" {
		return "", ErrEmptyLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", errors.Join(ErrInvalidLanguage, err)
	}
	return tag.String(), nil
}

// Supported reports whether lang is one of the store's languages.
func (s *Store) Supported(lang string) bool {
	code, err := Canonical(lang)
	if err != nil {
		return false
	}
	_, ok := s.supported[code]
	return ok
}

// Languages returns the supported language codes, sorted.
func (s *Store) Languages() []string {
	langs := make([]string, 0, len(s.supported))
	for l := range s.supported {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Get returns the tree for lang, loading it on first use. Unsupported
// languages and failed loads report false; failures are logged and, unless
// WithRetry is set, remembered.
func (s *Store) Get(ctx context.Context, lang string) (Tree, bool) {
	code, err := Canonical(lang)
	if err != nil {
		return nil, false
	}
	if _, ok := s.supported[code]; !ok {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.trees[code]
	s.mu.RUnlock()
	if ok {
		return e.tree, e.tree != nil
	}

	e = s.share(ctx, code)
	if e.tree == nil && interrupted(e.err) && ctx.Err() == nil {
		// The shared load ran under another caller's context, which ended.
		e = s.share(ctx, code)
	}
	return e.tree, e.tree != nil
}

// share runs one load per code at a time; concurrent callers wait for it.
func (s *Store) share(ctx context.Context, code string) *entry {
	v, _, _ := s.group.Do(code, func() (any, error) {
		return s.load(ctx, code), nil
	})
	return v.(*entry)
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Store) load(ctx context.Context, code string) *entry {
	s.mu.RLock()
	cached, ok := s.trees[code]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	registered := s.supported[code]
	tree, err := s.loader.Load(ctx, registered)
	if err == nil && tree == nil {
		tree = Tree{}
	}
	e := &entry{tree: tree, err: err}
	if err != nil {
		e.tree = nil
		if interrupted(err) {
			s.logger.Debug("i18n: translation load interrupted",
				zap.String("lang", registered),
				zap.Error(err),
			)
			return e
		}
		s.logger.Error("i18n: failed to load translations",
			zap.String("lang", registered),
			zap.Error(err),
		)
		if s.retryFailed {
			return e
		}
	}

	s.mu.Lock()
	s.trees[code] = e
	s.mu.Unlock()
	return e
}

// Err returns the error recorded for a failed load of lang, if any.
func (s *Store) Err(lang string) error {
	code, err := Canonical(lang)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.trees[code]; ok {
		return e.err
	}
	return nil
}

package i18n

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultLang is used when Config.DefaultLang is empty.
const DefaultLang = "en"

// Config defines the languages a Bundle serves.
type Config struct {
	// Default language, e.g. "en". Always supported and always the last
	// entry of every fallback chain.
	DefaultLang string

	// Supported languages. Codes outside this list are never loaded.
	Languages []string

	// Fallbacks replaces a requested language with an explicit chain,
	// e.g. "pt-BR": {"pt-BR", "pt"}. The default language is still appended.
	// Keys match any spelling of the same tag ("pt_br", "PT-BR").
	Fallbacks map[string][]string
}

// Bundle owns the translation store and resolves keys against it.
type Bundle struct {
	config      Config
	store       *Store
	logger      *zap.Logger
	preferences Preferences
	storeOpts   []StoreOption
}

// Option configures a Bundle.
type Option func(*Bundle)

// WithLogger sets the logger for load failures and missing keys.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bundle) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRetryFailedLoads retries a language whose previous load failed
// instead of remembering the failure.
func WithRetryFailedLoads() Option {
	return func(b *Bundle) {
		b.storeOpts = append(b.storeOpts, WithRetry())
	}
}

// WithPreferences sets the source used by LocaleFromContext.
func WithPreferences(p Preferences) Option {
	return func(b *Bundle) {
		if p != nil {
			b.preferences = p
		}
	}
}

// New creates a Bundle that loads trees through loader on first use.
func New(cfg Config, loader Loader, opts ...Option) (*Bundle, error) {
	if loader == nil {
		return nil, fmt.Errorf("i18n: loader is required")
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = DefaultLang
	}

	b := &Bundle{
		logger:      zap.NewNop(),
		preferences: LanguagesFromContext,
	}
	for _, opt := range opts {
		opt(b)
	}

	def, err := Canonical(cfg.DefaultLang)
	if err != nil {
		return nil, fmt.Errorf("default language %q: %w", cfg.DefaultLang, err)
	}
	cfg.DefaultLang = def
	cfg.Languages = append([]string{def}, cfg.Languages...)

	if len(cfg.Fallbacks) > 0 {
		fallbacks := make(map[string][]string, len(cfg.Fallbacks))
		for lang, fb := range cfg.Fallbacks {
			code, err := Canonical(lang)
			if err != nil {
				return nil, fmt.Errorf("fallbacks for %q: %w", lang, err)
			}
			fallbacks[code] = fb
		}
		cfg.Fallbacks = fallbacks
	}

	storeOpts := append([]StoreOption{WithStoreLogger(b.logger)}, b.storeOpts...)
	b.store, err = NewStore(loader, cfg.Languages, storeOpts...)
	if err != nil {
		return nil, err
	}
	cfg.Languages = b.store.Languages()
	b.config = cfg

	return b, nil
}

// MustNew is New that panics on error, for package-level setup.
func MustNew(cfg Config, loader Loader, opts ...Option) *Bundle {
	b, err := New(cfg, loader, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// DefaultLanguage returns the canonical default language code.
func (b *Bundle) DefaultLanguage() string {
	return b.config.DefaultLang
}

// Languages returns the supported languages, sorted.
func (b *Bundle) Languages() []string {
	return b.config.Languages
}

// Store exposes the underlying translation cache.
func (b *Bundle) Store() *Store {
	return b.store
}

// Locale returns a view bound to a fallback chain built from langs:
// configured Fallbacks first, then the default language.
func (b *Bundle) Locale(langs ...string) *Locale {
	var expanded []string
	for _, l := range langs {
		code, err := Canonical(l)
		if err != nil {
			code = l
		}
		if fb, ok := b.config.Fallbacks[code]; ok && len(fb) > 0 {
			expanded = append(expanded, fb...)
			continue
		}
		expanded = append(expanded, l)
	}
	return &Locale{
		bundle: b,
		langs:  chain(b.config.DefaultLang, expanded...),
	}
}

// LocaleFromContext builds a Locale from the configured Preferences.
func (b *Bundle) LocaleFromContext(ctx context.Context) *Locale {
	return b.Locale(b.preferences(ctx)...)
}

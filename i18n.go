package i18n

import (
	"context"

	"go.uber.org/zap"
)

// Locale is a translation entry point bound to a language fallback chain.
type Locale struct {
	bundle *Bundle
	langs  []string
}

// Languages returns the fallback chain, most preferred first.
func (l *Locale) Languages() []string {
	return l.langs
}

// T resolves a dotted key without a count; plural entries use their
// multi form. Example: T(ctx, "user.greeting", M{"name": "Tom"}).
func (l *Locale) T(ctx context.Context, key string, args M) (string, bool) {
	return l.bundle.Resolve(ctx, l.langs, ParseKey(key), 0, args)
}

// Tn resolves a dotted key, choosing the single form when n is 1.
func (l *Locale) Tn(ctx context.Context, key string, n int, args M) (string, bool) {
	return l.bundle.Resolve(ctx, l.langs, ParseKey(key), n, args)
}

// Lookup resolves a key given as segments.
func (l *Locale) Lookup(ctx context.Context, key Key, n int, args M) (string, bool) {
	return l.bundle.Resolve(ctx, l.langs, key, n, args)
}

// Text is T that returns the key itself when nothing is found.
func (l *Locale) Text(ctx context.Context, key string, args M) string {
	if s, ok := l.T(ctx, key, args); ok {
		return s
	}
	return key
}

// Resolve tries each language in langs, then the default language, and
// returns the first non-empty string found for key. count selects the
// single form of a plural entry when it is 1 and the multi form otherwise.
// A miss in every language is logged once and reported as false.
func (b *Bundle) Resolve(ctx context.Context, langs []string, key Key, count int, args M) (string, bool) {
	candidates := chain(b.config.DefaultLang, langs...)

	for _, lang := range candidates {
		tree, ok := b.store.Get(ctx, lang)
		if !ok {
			continue
		}
		s, ok := tree.Text(key, count)
		if !ok || s == "" {
			continue
		}
		return Render(s, args), true
	}

	b.logger.Error("i18n: missing translation",
		zap.String("key", key.String()),
		zap.Int("count", count),
		zap.Strings("languages", candidates),
	)
	return "", false
}

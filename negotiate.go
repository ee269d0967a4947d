package i18n

import "context"

// Preferences supplies the caller's preferred languages, most preferred
// first. It is how a request's language signal (header, cookie, user
// setting) reaches the resolver; the default reads WithLanguages.
type Preferences func(ctx context.Context) []string

type languagesKey struct{}

// WithLanguages returns a context carrying preferred languages.
func WithLanguages(ctx context.Context, langs ...string) context.Context {
	return context.WithValue(ctx, languagesKey{}, append([]string(nil), langs...))
}

// LanguagesFromContext returns the languages stored by WithLanguages.
func LanguagesFromContext(ctx context.Context) []string {
	langs, _ := ctx.Value(languagesKey{}).([]string)
	return langs
}

// chain orders candidates for a lookup: duplicates and empty codes are
// dropped and def is appended when missing, so the list is never empty.
func chain(def string, langs ...string) []string {
	out := make([]string, 0, len(langs)+1)
	seen := make(map[string]struct{}, len(langs)+1)
	all := append(append(make([]string, 0, len(langs)+1), langs...), def)
	for _, l := range all {
		if l == "" {
			continue
		}
		key := l
		if c, err := Canonical(l); err == nil {
			key = c
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

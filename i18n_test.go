package i18n

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/known-socially/i18n/locales"
)

func newEmbeddedBundle(t *testing.T) (*Bundle, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.ErrorLevel)
	b, err := New(Config{DefaultLang: "en"}, NewFSLoader(locales.FS), WithLogger(zap.New(core)))
	require.NoError(t, err)
	return b, logs
}

func newFixtureBundle(t *testing.T, opts ...Option) (*Bundle, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.ErrorLevel)
	b, err := New(Config{
		DefaultLang: "en",
		Languages:   []string{"de", "fr", "it"},
		Fallbacks:   map[string][]string{"de-AT": {"de-AT", "de"}},
	}, NewFSLoader(os.DirFS("testdata/locales")), append(opts, WithLogger(zap.New(core)))...)
	require.NoError(t, err)
	return b, logs
}

func TestNew(t *testing.T) {
	t.Run("New_Defaults", func(t *testing.T) {
		b, err := New(Config{}, Static(Tree{}))
		require.NoError(t, err)
		assert.Equal(t, "en", b.DefaultLanguage())
		assert.Equal(t, []string{"en"}, b.Languages())
	})
	t.Run("New_DefaultAlwaysSupported", func(t *testing.T) {
		b, err := New(Config{DefaultLang: "de", Languages: []string{"fr"}}, Static(Tree{}))
		require.NoError(t, err)
		assert.Equal(t, []string{"de", "fr"}, b.Languages())
		assert.True(t, b.Store().Supported("de"))
	})
	t.Run("New_InvalidDefault", func(t *testing.T) {
		_, err := New(Config{DefaultLang: "???"}, Static(Tree{}))
		require.ErrorIs(t, err, ErrInvalidLanguage)
	})
	t.Run("New_InvalidLanguage", func(t *testing.T) {
		_, err := New(Config{Languages: []string{"en", "bad code"}}, Static(Tree{}))
		require.ErrorIs(t, err, ErrInvalidLanguage)
	})
	t.Run("New_InvalidFallbackKey", func(t *testing.T) {
		_, err := New(Config{Fallbacks: map[string][]string{"bad code": {"de"}}}, Static(Tree{}))
		require.ErrorIs(t, err, ErrInvalidLanguage)
	})
	t.Run("New_NilLoader", func(t *testing.T) {
		_, err := New(Config{}, nil)
		require.Error(t, err)
	})
	t.Run("MustNew_Panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNew(Config{DefaultLang: "???"}, Static(Tree{})) })
	})
}

func TestBundle_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Bundle_Resolve_PluralSingleWithPositionalArg", func(t *testing.T) {
		b, _ := newEmbeddedBundle(t)
		s, ok := b.Resolve(ctx, []string{"en"}, ParseKey("test.withCount"), 1, Args(5))
		require.True(t, ok)
		assert.Equal(t, "There is 5 thing", s)
	})
	t.Run("Bundle_Resolve_PluralMulti", func(t *testing.T) {
		b, _ := newEmbeddedBundle(t)
		for _, n := range []int{0, 2, 10} {
			s, ok := b.Resolve(ctx, []string{"en"}, ParseKey("test.withCount"), n, Args(n))
			require.True(t, ok)
			assert.Contains(t, s, "There are ")
			assert.Contains(t, s, " things")
		}
	})
	t.Run("Bundle_Resolve_NoCountSelectsMulti", func(t *testing.T) {
		b, _ := newEmbeddedBundle(t)
		s, ok := b.Locale("en").T(ctx, "test.withCount", nil)
		require.True(t, ok)
		assert.Equal(t, "There are {0} things", s)
	})
	t.Run("Bundle_Resolve_PlainString", func(t *testing.T) {
		b, _ := newEmbeddedBundle(t)
		s, ok := b.Locale("en").T(ctx, "home.welcome", M{})
		require.True(t, ok)
		assert.Equal(t, "Welcome", s)
	})
	t.Run("Bundle_Resolve_SegmentedKey", func(t *testing.T) {
		b, _ := newEmbeddedBundle(t)
		s, ok := b.Resolve(ctx, []string{"en"}, Key{"search", "select", "name"}, 1, nil)
		require.True(t, ok)
		assert.Equal(t, "Name/Alias", s)
	})
	t.Run("Bundle_Resolve_MissingLogsOnce", func(t *testing.T) {
		b, logs := newEmbeddedBundle(t)
		s, ok := b.Resolve(ctx, []string{"en"}, ParseKey("does.not.exist"), 1, M{})
		assert.False(t, ok)
		assert.Empty(t, s)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "does.not.exist", fields["key"])
		assert.EqualValues(t, 1, fields["count"])
	})
	t.Run("Bundle_Resolve_InnerNodeIsMiss", func(t *testing.T) {
		b, logs := newEmbeddedBundle(t)
		_, ok := b.Resolve(ctx, nil, ParseKey("home"), 1, nil)
		assert.False(t, ok)
		assert.Equal(t, 1, logs.Len())
	})
	t.Run("Bundle_Resolve_UnsupportedFallsBack", func(t *testing.T) {
		b, logs := newEmbeddedBundle(t)
		want, ok := b.Resolve(ctx, []string{"en"}, ParseKey("test.withCount"), 3, Args(3))
		require.True(t, ok)
		got, ok := b.Resolve(ctx, []string{"xx-unsupported", "en"}, ParseKey("test.withCount"), 3, Args(3))
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Zero(t, logs.Len())
	})
	t.Run("Bundle_Resolve_EmptyListUsesDefault", func(t *testing.T) {
		b, _ := newEmbeddedBundle(t)
		s, ok := b.Resolve(ctx, nil, ParseKey("home.features"), 0, nil)
		require.True(t, ok)
		assert.Equal(t, "Features", s)
	})
	t.Run("Bundle_Resolve_FirstLanguageWins", func(t *testing.T) {
		b, _ := newFixtureBundle(t)
		s, ok := b.Resolve(ctx, []string{"de", "fr"}, ParseKey("greeting"), 0, M{"name": "Tom"})
		require.True(t, ok)
		assert.Equal(t, "Hallo, Tom!", s)

		s, ok = b.Resolve(ctx, []string{"fr", "de"}, ParseKey("inbox.messages"), 1, M{"count": 1})
		require.True(t, ok)
		assert.Equal(t, "Vous avez 1 message", s)
	})
	t.Run("Bundle_Resolve_KeyMissFallsThrough", func(t *testing.T) {
		b, logs := newFixtureBundle(t)
		s, ok := b.Resolve(ctx, []string{"de"}, ParseKey("only_en"), 0, nil)
		require.True(t, ok)
		assert.Equal(t, "English only", s)
		assert.Zero(t, logs.Len())
	})
	t.Run("Bundle_Resolve_EmptyStringIsMiss", func(t *testing.T) {
		b, logs := newFixtureBundle(t)
		_, ok := b.Resolve(ctx, []string{"de"}, ParseKey("empty"), 0, nil)
		assert.False(t, ok)
		assert.Equal(t, 1, logs.Len())
	})
	t.Run("Bundle_Resolve_BrokenResourceSkipped", func(t *testing.T) {
		b, logs := newFixtureBundle(t)
		s, ok := b.Resolve(ctx, []string{"it"}, ParseKey("greeting"), 0, M{"name": "Ada"})
		require.True(t, ok)
		assert.Equal(t, "Hello, Ada!", s)

		_, ok = b.Resolve(ctx, []string{"it"}, ParseKey("greeting"), 0, M{"name": "Ada"})
		require.True(t, ok)

		require.Equal(t, 1, logs.Len(), "load failure is logged once and cached")
		assert.Equal(t, "it", logs.All()[0].ContextMap()["lang"])
		assert.ErrorIs(t, b.Store().Err("it"), ErrInvalidResource)
	})
	t.Run("Bundle_Resolve_LoadFailureAndMissLogTwice", func(t *testing.T) {
		b, logs := newFixtureBundle(t)
		_, ok := b.Resolve(ctx, []string{"it"}, ParseKey("nope"), 0, nil)
		assert.False(t, ok)

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, "i18n: failed to load translations", logs.All()[0].Message)
		assert.Equal(t, "i18n: missing translation", logs.All()[1].Message)

		_, ok = b.Resolve(ctx, []string{"it"}, ParseKey("nope"), 0, nil)
		assert.False(t, ok)
		assert.Equal(t, 3, logs.Len(), "a cached load failure is not logged again")
	})
	t.Run("Bundle_Resolve_RetryFailedLoads", func(t *testing.T) {
		b, logs := newFixtureBundle(t, WithRetryFailedLoads())
		for i := 0; i < 2; i++ {
			_, ok := b.Resolve(ctx, []string{"it"}, ParseKey("greeting"), 0, nil)
			require.True(t, ok)
		}
		assert.Equal(t, 2, logs.Len())
	})
}

func TestBundle_Locale(t *testing.T) {
	ctx := context.Background()
	b, _ := newFixtureBundle(t)

	t.Run("Bundle_Locale_DefaultOnly", func(t *testing.T) {
		assert.Equal(t, []string{"en"}, b.Locale().Languages())
	})
	t.Run("Bundle_Locale_AppendsDefault", func(t *testing.T) {
		assert.Equal(t, []string{"de", "fr", "en"}, b.Locale("de", "fr").Languages())
	})
	t.Run("Bundle_Locale_DeduplicatesDefault", func(t *testing.T) {
		assert.Equal(t, []string{"en", "de"}, b.Locale("en", "de", "EN").Languages())
	})
	t.Run("Bundle_Locale_ConfiguredFallbacks", func(t *testing.T) {
		l := b.Locale("de-AT")
		assert.Equal(t, []string{"de-AT", "de", "en"}, l.Languages())

		s, ok := l.Tn(ctx, "inbox.messages", 2, M{"count": 2})
		require.True(t, ok)
		assert.Equal(t, "Du hast 2 Nachrichten", s)
	})
	t.Run("Bundle_Locale_FallbacksMatchAnySpelling", func(t *testing.T) {
		assert.Equal(t, []string{"de-AT", "de", "en"}, b.Locale("DE-at").Languages())
		assert.Equal(t, []string{"de-AT", "de", "en"}, b.Locale("de_at").Languages())
	})
	t.Run("Bundle_Locale_Lookup", func(t *testing.T) {
		s, ok := b.Locale("fr").Lookup(ctx, Key{"inbox", "messages"}, 5, M{"count": 5})
		require.True(t, ok)
		assert.Equal(t, "Vous avez 5 messages", s)
	})
	t.Run("Bundle_Locale_TextReturnsKeyOnMiss", func(t *testing.T) {
		assert.Equal(t, "nope.nothing", b.Locale("de").Text(ctx, "nope.nothing", nil))
		assert.Equal(t, "Hallo, Eva!", b.Locale("de").Text(ctx, "greeting", M{"name": "Eva"}))
	})
}

func TestBundle_LocaleFromContext(t *testing.T) {
	t.Run("Bundle_LocaleFromContext_Default", func(t *testing.T) {
		b, _ := newFixtureBundle(t)
		ctx := WithLanguages(context.Background(), "fr", "de")
		assert.Equal(t, []string{"fr", "de", "en"}, b.LocaleFromContext(ctx).Languages())
		assert.Equal(t, []string{"en"}, b.LocaleFromContext(context.Background()).Languages())
	})
	t.Run("Bundle_LocaleFromContext_CustomPreferences", func(t *testing.T) {
		b, _ := newFixtureBundle(t, WithPreferences(func(context.Context) []string {
			return []string{"de"}
		}))
		s, ok := b.LocaleFromContext(context.Background()).T(context.Background(), "greeting", M{"name": "Jo"})
		require.True(t, ok)
		assert.Equal(t, "Hallo, Jo!", s)
	})
}

func TestBundle_NonCanonicalResources(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"en.yaml":    {Data: []byte("hi: Hello\n")},
		"pt-br.yaml": {Data: []byte("hi: Olá\n")},
		"zh_CN.yaml": {Data: []byte("hi: 你好\n")},
	}
	langs, err := DiscoverLanguages(fsys)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.ErrorLevel)
	b, err := New(Config{Languages: langs}, NewFSLoader(fsys), WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "pt-BR", "zh-CN"}, b.Languages())

	t.Run("Bundle_NonCanonicalResources_LoadsFileSpelling", func(t *testing.T) {
		s, ok := b.Locale("pt-br").T(ctx, "hi", nil)
		require.True(t, ok)
		assert.Equal(t, "Olá", s)
		require.NoError(t, b.Store().Err("pt-br"))
	})
	t.Run("Bundle_NonCanonicalResources_CanonicalRequest", func(t *testing.T) {
		s, ok := b.Locale("zh-CN").T(ctx, "hi", nil)
		require.True(t, ok)
		assert.Equal(t, "你好", s)

		s, ok = b.Locale("PT-BR").T(ctx, "hi", nil)
		require.True(t, ok)
		assert.Equal(t, "Olá", s)
	})
	assert.Zero(t, logs.Len())
}

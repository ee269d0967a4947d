// Command i18nget resolves one translation key and prints the result.
//
//	i18nget -key test.withCount -count 1 -arg 0=5
//	i18nget -lang de,en -key greeting -arg name=Tom
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/known-socially/i18n"
	"github.com/known-socially/i18n/cmd/internal/cliconfig"
)

// argFlags collects repeated -arg name=value pairs.
type argFlags i18n.M

func (a argFlags) String() string {
	return fmt.Sprint(map[string]any(a))
}

func (a argFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	a[name] = value
	return nil
}

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred work, such as flushing the logger,
// happens before the process exits.
func run() int {
	cfg, err := cliconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	args := argFlags{}
	flag.StringVar(&cfg.Dir, "d", cfg.Dir, "directory of locale files (default: embedded locales)")
	key := flag.String("key", "", "dotted translation key")
	count := flag.Int("count", 0, "count used to pick the singular (1) or plural form")
	langs := flag.String("lang", "", "comma separated preferred languages")
	flag.Var(args, "arg", "placeholder argument name=value (repeatable)")
	flag.Parse()

	if *key == "" {
		flag.Usage()
		return 2
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer logger.Sync()

	bundle, err := cfg.Bundle(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	var preferred []string
	if *langs != "" {
		preferred = strings.Split(*langs, ",")
	}

	s, ok := bundle.Locale(preferred...).Tn(context.Background(), *key, *count, i18n.M(args))
	if !ok {
		return 1
	}
	fmt.Println(s)
	return 0
}

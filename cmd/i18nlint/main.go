package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/known-socially/i18n/cmd/i18nlint/checker"
	"github.com/known-socially/i18n/cmd/internal/cliconfig"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := cliconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	flag.StringVar(&cfg.Dir, "d", cfg.Dir, "directory of locale files (default: embedded locales)")
	flag.StringVar(&cfg.DefaultLang, "ref", cfg.DefaultLang, "reference language")
	failOnError := flag.Bool("fail", false, "exit with code 1 if any issue found")
	flag.Parse()

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer logger.Sync()

	res, err := checker.CheckLocales(cfg.FS(), cfg.DefaultLang)
	if err != nil {
		logger.Error("i18nlint: check failed", zap.String("dir", cfg.Dir), zap.Error(err))
		return 1
	}

	printResult(res)

	if *failOnError && res.HasIssues() {
		return 1
	}
	return 0
}

func printResult(res *checker.Result) {
	fmt.Println("=== I18N CHECK RESULT ===")
	fmt.Println("Reference:", res.Reference)
	fmt.Println("Languages:", res.Languages)
	fmt.Println("Total keys:", len(res.AllKeys))

	for _, lang := range res.Languages {
		fmt.Printf("\n--- [%s] ---\n", lang)

		if err, ok := res.LoadErrors[lang]; ok {
			fmt.Println("Load error:", err)
			continue
		}

		printKeys("Missing keys", res.MissingKeys[lang])
		printKeys("Redundant keys", res.RedundantKeys[lang])
		printKeys("Shape mismatches", res.ShapeMismatches[lang])

		errs := res.SyntaxErrors[lang]
		if len(errs) == 0 {
			fmt.Println("Syntax errors: None")
			continue
		}
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("Syntax errors:")
		for _, k := range keys {
			fmt.Printf("  - %s: %v\n", k, errs[k])
		}
	}
}

func printKeys(title string, keys []string) {
	if len(keys) == 0 {
		fmt.Printf("%s: None\n", title)
		return
	}
	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Println("  -", k)
	}
}

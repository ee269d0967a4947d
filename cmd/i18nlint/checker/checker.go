package checker

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/known-socially/i18n"
)

type Result struct {
	Reference       string
	Languages       []string
	AllKeys         []string // keys of the reference language
	MissingKeys     map[string][]string
	RedundantKeys   map[string][]string
	ShapeMismatches map[string][]string         // plural in one language, plain text in the other
	SyntaxErrors    map[string]map[string]error // lang -> key -> err
	LoadErrors      map[string]error
}

// HasIssues reports whether any check failed.
func (r *Result) HasIssues() bool {
	for _, m := range []map[string][]string{r.MissingKeys, r.RedundantKeys, r.ShapeMismatches} {
		for _, keys := range m {
			if len(keys) > 0 {
				return true
			}
		}
	}
	for _, errs := range r.SyntaxErrors {
		if len(errs) > 0 {
			return true
		}
	}
	return len(r.LoadErrors) > 0
}

// CheckLocales compares every resource in fsys against the reference
// language:
//  1. key alignment (missing / redundant)
//  2. plural vs plain text shape
//  3. template syntax via i18n.ValidateTemplate
func CheckLocales(fsys fs.FS, reference string) (*Result, error) {
	langs, err := i18n.DiscoverLanguages(fsys)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Reference:       reference,
		Languages:       langs,
		MissingKeys:     make(map[string][]string),
		RedundantKeys:   make(map[string][]string),
		ShapeMismatches: make(map[string][]string),
		SyntaxErrors:    make(map[string]map[string]error),
		LoadErrors:      make(map[string]error),
	}

	loader := i18n.NewFSLoader(fsys)
	shapes := make(map[string]map[string]string, len(langs))
	for _, lang := range langs {
		tree, err := loader.Load(context.Background(), lang)
		if err != nil {
			res.LoadErrors[lang] = err
			continue
		}
		shapes[lang] = scan(tree, func(key string, err error) {
			if res.SyntaxErrors[lang] == nil {
				res.SyntaxErrors[lang] = make(map[string]error)
			}
			res.SyntaxErrors[lang][key] = err
		})
	}

	ref, ok := shapes[reference]
	if !ok {
		if err, failed := res.LoadErrors[reference]; failed {
			return res, fmt.Errorf("reference language %q: %w", reference, err)
		}
		return nil, fmt.Errorf("reference language %q: %w", reference, i18n.ErrResourceNotFound)
	}
	for k := range ref {
		res.AllKeys = append(res.AllKeys, k)
	}
	sort.Strings(res.AllKeys)

	for lang, keys := range shapes {
		if lang == reference {
			continue
		}
		for _, k := range res.AllKeys {
			shape, ok := keys[k]
			switch {
			case !ok:
				res.MissingKeys[lang] = append(res.MissingKeys[lang], k)
			case shape != ref[k]:
				res.ShapeMismatches[lang] = append(res.ShapeMismatches[lang], k)
			}
		}
		for k := range keys {
			if _, ok := ref[k]; !ok {
				res.RedundantKeys[lang] = append(res.RedundantKeys[lang], k)
			}
		}
		sort.Strings(res.RedundantKeys[lang])
	}

	return res, nil
}

// scan flattens tree into key -> "text" | "plural" and validates every
// template it holds.
func scan(tree i18n.Tree, onSyntax func(key string, err error)) map[string]string {
	shapes := make(map[string]string)
	tree.Walk(func(key i18n.Key, v i18n.Value) {
		k := key.String()
		switch e := v.(type) {
		case i18n.Text:
			shapes[k] = "text"
			if err := i18n.ValidateTemplate(string(e)); err != nil {
				onSyntax(k, err)
			}
		case i18n.Plural:
			shapes[k] = "plural"
			for _, form := range []string{e.Single, e.Multi} {
				if err := i18n.ValidateTemplate(form); err != nil {
					onSyntax(k, err)
					break
				}
			}
		}
	})
	return shapes
}

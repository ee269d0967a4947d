// Package locales embeds the translation resources shipped with the module.
package locales

import "embed"

// FS holds one resource per language at its root, e.g. "en.yaml".
//
//go:embed *.yaml
var FS embed.FS

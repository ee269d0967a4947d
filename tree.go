package i18n

import (
	"fmt"
	"sort"
	"strings"
)

// Value is one node of a translation tree: Text, Plural or a nested Tree.
type Value interface {
	value()
}

// Text is a literal translated string.
type Text string

// Plural is a two-form entry chosen by count.
type Plural struct {
	Single string `yaml:"single" json:"single" toml:"single"`
	Multi  string `yaml:"multi" json:"multi" toml:"multi"`
}

// Tree is a nested mapping of translation keys. A loaded Tree is never
// modified, so it may be shared by any number of readers.
type Tree map[string]Value

func (Text) value()   {}
func (Plural) value() {}
func (Tree) value()   {}

// Select returns Single when count is exactly 1 and Multi otherwise.
func (p Plural) Select(count int) string {
	if count == 1 {
		return p.Single
	}
	return p.Multi
}

// Key is a path into a Tree, one element per nesting level.
type Key []string

// ParseKey splits a dotted key such as "home.welcome".
func ParseKey(s string) Key {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func (k Key) String() string {
	return strings.Join(k, ".")
}

// Lookup walks the tree one segment at a time. It reports false as soon
// as a segment is missing or the path runs through a leaf.
func (t Tree) Lookup(key Key) (Value, bool) {
	if len(key) == 0 {
		return nil, false
	}
	node := t
	for i, seg := range key {
		v, ok := node[seg]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(key)-1 {
			return v, true
		}
		next, ok := v.(Tree)
		if !ok {
			return nil, false
		}
		node = next
	}
	return nil, false
}

// Text resolves key to a string, selecting the plural form by count.
// A key that names an inner node is not a string and reports false.
func (t Tree) Text(key Key, count int) (string, bool) {
	v, ok := t.Lookup(key)
	if !ok {
		return "", false
	}
	switch e := v.(type) {
	case Text:
		return string(e), true
	case Plural:
		return e.Select(count), true
	default:
		return "", false
	}
}

// Walk visits every leaf in key order.
func (t Tree) Walk(fn func(key Key, v Value)) {
	t.walk(nil, fn)
}

func (t Tree) walk(prefix Key, fn func(key Key, v Value)) {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := append(append(Key{}, prefix...), name)
		if sub, ok := t[name].(Tree); ok {
			sub.walk(key, fn)
			continue
		}
		fn(key, t[name])
	}
}

// DecodeTree converts a generic decoded document (YAML, JSON, TOML) into a
// Tree. Mappings holding only "single" and/or "multi" strings become Plural
// entries; other mappings nest.
func DecodeTree(doc map[string]any) (Tree, error) {
	return decodeNode(doc, nil)
}

func decodeNode(doc map[string]any, prefix Key) (Tree, error) {
	tree := make(Tree, len(doc))
	for name, raw := range doc {
		key := append(append(Key{}, prefix...), name)
		v, err := decodeValue(raw, key)
		if err != nil {
			return nil, err
		}
		tree[name] = v
	}
	return tree, nil
}

func decodeValue(raw any, key Key) (Value, error) {
	switch v := raw.(type) {
	case string:
		return Text(v), nil
	case map[string]any:
		if p, ok := asPlural(v); ok {
			return p, nil
		}
		return decodeNode(v, key)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return decodeValue(m, key)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[fmt.Sprint(k)] = s
		}
		return decodeValue(m, key)
	default:
		return nil, fmt.Errorf("%w: %q has unsupported value of type %T", ErrInvalidResource, key.String(), raw)
	}
}

func asPlural(m map[string]any) (Plural, bool) {
	if len(m) == 0 || len(m) > 2 {
		return Plural{}, false
	}
	var p Plural
	for k, raw := range m {
		s, ok := raw.(string)
		if !ok {
			return Plural{}, false
		}
		switch k {
		case "single":
			p.Single = s
		case "multi":
			p.Multi = s
		default:
			return Plural{}, false
		}
	}
	return p, true
}

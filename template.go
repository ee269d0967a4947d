package i18n

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// M holds interpolation arguments keyed by placeholder name.
type M map[string]any

// Args builds positional arguments: Args(a, b) fills {0} and {1}.
func Args(values ...any) M {
	m := make(M, len(values))
	for i, v := range values {
		m[strconv.Itoa(i)] = v
	}
	return m
}

///////////////////////////////////////////////////////////////////////////////
// AST
///////////////////////////////////////////////////////////////////////////////

// Node is one segment of a parsed template.
type Node interface {
	// Eval renders the node strictly: missing values and formatter
	// failures are errors.
	Eval(args M) (string, error)
}

// TextNode is literal text.
type TextNode struct {
	Text string
}

func (t *TextNode) Eval(M) (string, error) {
	return t.Text, nil
}

// Formatter is one "name:arg" step of a placeholder pipeline.
type Formatter struct {
	Name string
	Arg  string
}

// Conditional is the "op:value?then:else" tail of a placeholder.
type Conditional struct {
	Op        string // eq, ne, gt, lt
	TestValue string
	TrueExpr  string
	FalseExpr string
}

// PlaceholderNode is {path | formatter:arg | ...}.
type PlaceholderNode struct {
	Raw        string // source text including braces
	Path       string
	Formatters []Formatter
	Cond       *Conditional
}

func (p *PlaceholderNode) Eval(args M) (string, error) {
	value, ok := valueAt(args, p.Path)
	if !ok {
		return "", fmt.Errorf("value not found: %s", p.Path)
	}

	var err error
	for _, f := range p.Formatters {
		value, err = applyFormatter(value, f.Name, f.Arg)
		if err != nil {
			return "", err
		}
	}

	if p.Cond != nil {
		ok, err := compare(value, p.Cond.Op, p.Cond.TestValue)
		if err != nil {
			return "", err
		}
		if ok {
			return Render(p.Cond.TrueExpr, args), nil
		}
		return Render(p.Cond.FalseExpr, args), nil
	}

	return fmt.Sprint(value), nil
}

// Template is a parsed template.
type Template []Node

// Eval renders strictly, failing on the first unresolved placeholder.
func (t Template) Eval(args M) (string, error) {
	var b strings.Builder
	for _, n := range t {
		s, err := n.Eval(args)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Render fills each placeholder path at its first occurrence only. Later
// occurrences, placeholders without a matching argument and placeholders
// whose formatters fail are written back verbatim.
func (t Template) Render(args M) string {
	var b strings.Builder
	used := make(map[string]struct{})
	for _, n := range t {
		ph, ok := n.(*PlaceholderNode)
		if !ok {
			s, _ := n.Eval(args)
			b.WriteString(s)
			continue
		}
		if _, done := used[ph.Path]; done {
			b.WriteString(ph.Raw)
			continue
		}
		s, err := ph.Eval(args)
		if err != nil {
			b.WriteString(ph.Raw)
			continue
		}
		used[ph.Path] = struct{}{}
		b.WriteString(s)
	}
	return b.String()
}

///////////////////////////////////////////////////////////////////////////////
// CACHE
///////////////////////////////////////////////////////////////////////////////

var templates = struct {
	sync.RWMutex
	m map[string]Template
}{m: make(map[string]Template)}

// Render interpolates args into tpl. Parsed templates are cached.
func Render(tpl string, args M) string {
	if len(args) == 0 || !strings.ContainsRune(tpl, '{') {
		return tpl
	}

	templates.RLock()
	t, ok := templates.m[tpl]
	templates.RUnlock()

	if !ok {
		t = ParseTemplate(tpl)
		templates.Lock()
		templates.m[tpl] = t
		templates.Unlock()
	}
	return t.Render(args)
}

///////////////////////////////////////////////////////////////////////////////
// PARSER
///////////////////////////////////////////////////////////////////////////////

// ParseTemplate parses tpl leniently: an unclosed '{' and a malformed
// placeholder are kept as text. Braces may nest inside a placeholder.
func ParseTemplate(tpl string) Template {
	t, _ := parseTemplate(tpl, false)
	return t
}

func parseTemplate(tpl string, strict bool) (Template, error) {
	runes := []rune(tpl)
	n := len(runes)

	var nodes Template
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, &TextNode{Text: buf.String()})
			buf.Reset()
		}
	}

	for i := 0; i < n; {
		if runes[i] != '{' {
			buf.WriteRune(runes[i])
			i++
			continue
		}

		depth := 1
		j := i + 1
		for j < n && depth > 0 {
			switch runes[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		if depth != 0 {
			buf.WriteRune('{')
			i++
			continue
		}

		raw := string(runes[i:j])
		i = j

		ph, err := parsePlaceholder(raw[1 : len(raw)-1])
		if err != nil {
			if strict {
				return nil, fmt.Errorf("%s: %w", raw, err)
			}
			buf.WriteString(raw)
			continue
		}
		ph.Raw = raw
		flush()
		nodes = append(nodes, ph)
	}
	flush()

	return nodes, nil
}

func parsePlaceholder(expr string) (*PlaceholderNode, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty placeholder")
	}

	parts := strings.Split(expr, "|")
	ph := &PlaceholderNode{Path: strings.TrimSpace(parts[0])}
	if ph.Path == "" {
		return nil, errors.New("placeholder has empty path")
	}

	for _, seg := range parts[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, errors.New("empty formatter segment")
		}

		if strings.Contains(seg, "?") {
			cond, err := parseConditional(seg)
			if err != nil {
				return nil, err
			}
			ph.Cond = cond
			continue
		}

		name, arg, _ := strings.Cut(seg, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty formatter name in %q", seg)
		}
		ph.Formatters = append(ph.Formatters, Formatter{Name: name, Arg: strings.TrimSpace(arg)})
	}

	return ph, nil
}

// parseConditional parses "eq:0?A:B".
func parseConditional(expr string) (*Conditional, error) {
	cond, branches, ok := strings.Cut(expr, "?")
	if !ok {
		return nil, fmt.Errorf("invalid conditional: %s", expr)
	}
	op, test, ok := strings.Cut(cond, ":")
	if !ok {
		return nil, fmt.Errorf("invalid condition: %s", cond)
	}
	yes, no, ok := strings.Cut(branches, ":")
	if !ok {
		return nil, fmt.Errorf("invalid conditional: %s", expr)
	}
	return &Conditional{
		Op:        strings.TrimSpace(op),
		TestValue: strings.TrimSpace(test),
		TrueExpr:  strings.TrimSpace(yes),
		FalseExpr: strings.TrimSpace(no),
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// VALUES
///////////////////////////////////////////////////////////////////////////////

// valueAt resolves a dotted path through maps and struct fields.
func valueAt(args M, path string) (any, bool) {
	var cur any = map[string]any(args)
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case M:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			r := reflect.ValueOf(c)
			if r.Kind() == reflect.Pointer {
				if r.IsNil() {
					return nil, false
				}
				r = r.Elem()
			}
			if r.Kind() != reflect.Struct {
				return nil, false
			}
			f := r.FieldByNameFunc(func(name string) bool {
				return strings.EqualFold(name, seg)
			})
			if !f.IsValid() || !f.CanInterface() {
				return nil, false
			}
			cur = f.Interface()
		}
	}
	return cur, true
}

func compare(v any, op, test string) (bool, error) {
	if s, ok := v.(string); ok {
		switch op {
		case "eq":
			return s == test, nil
		case "ne":
			return s != test, nil
		default:
			return false, fmt.Errorf("unsupported string op: %s", op)
		}
	}

	lv, err := toFloat(v)
	if err != nil {
		return false, fmt.Errorf("unsupported type for compare: %T", v)
	}
	rv, err := strconv.ParseFloat(test, 64)
	if err != nil {
		return false, err
	}

	switch op {
	case "eq":
		return lv == rv, nil
	case "ne":
		return lv != rv, nil
	case "gt":
		return lv > rv, nil
	case "lt":
		return lv < rv, nil
	default:
		return false, fmt.Errorf("unknown op: %s", op)
	}
}

///////////////////////////////////////////////////////////////////////////////
// VALIDATION
///////////////////////////////////////////////////////////////////////////////

// ValidateTemplate is the strict check used by the linter: braces must
// balance, every placeholder must parse, formatters must be registered and
// conditionals well formed.
func ValidateTemplate(tpl string) error {
	if err := checkBraces(tpl); err != nil {
		return err
	}

	t, err := parseTemplate(tpl, true)
	if err != nil {
		return err
	}

	for _, n := range t {
		ph, ok := n.(*PlaceholderNode)
		if !ok {
			continue
		}

		for _, f := range ph.Formatters {
			if !hasFormatter(f.Name) {
				return fmt.Errorf("unknown formatter: %s", f.Name)
			}
			if f.Name == "number" && f.Arg != "" {
				if _, err := strconv.Atoi(f.Arg); err != nil {
					return fmt.Errorf("invalid precision for number formatter: %q", f.Arg)
				}
			}
		}

		if ph.Cond != nil {
			switch ph.Cond.Op {
			case "eq", "ne", "gt", "lt":
			default:
				return fmt.Errorf("unknown conditional operator: %s", ph.Cond.Op)
			}
			if ph.Cond.TrueExpr == "" || ph.Cond.FalseExpr == "" {
				return errors.New("conditional branches must not be empty")
			}
		}
	}

	return nil
}

func checkBraces(tpl string) error {
	depth, firstOpen := 0, -1
	for i, r := range []rune(tpl) {
		switch r {
		case '{':
			if depth == 0 {
				firstOpen = i
			}
			depth++
		case '}':
			if depth == 0 {
				return fmt.Errorf("extra closing '}' at position %d", i)
			}
			depth--
		}
	}
	if depth != 0 {
		return fmt.Errorf("unclosed placeholder starting at position %d", firstOpen)
	}
	return nil
}

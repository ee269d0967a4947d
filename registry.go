package i18n

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatterFunc transforms a placeholder value. arg is the text after the
// colon in "{v | name:arg}", empty when absent.
type FormatterFunc func(input any, arg string) (any, error)

var formatters = struct {
	sync.RWMutex
	m map[string]FormatterFunc
}{m: make(map[string]FormatterFunc)}

// RegisterFormatter adds or replaces a named formatter.
func RegisterFormatter(name string, f FormatterFunc) {
	formatters.Lock()
	defer formatters.Unlock()
	formatters.m[name] = f
}

func hasFormatter(name string) bool {
	formatters.RLock()
	defer formatters.RUnlock()
	_, ok := formatters.m[name]
	return ok
}

func applyFormatter(v any, name, arg string) (any, error) {
	formatters.RLock()
	f, ok := formatters.m[name]
	formatters.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return f(v, arg)
}

var numberPrinter = message.NewPrinter(language.English)

func init() {
	RegisterFormatter("upper", func(v any, _ string) (any, error) {
		return strings.ToUpper(fmt.Sprint(v)), nil
	})
	RegisterFormatter("lower", func(v any, _ string) (any, error) {
		return strings.ToLower(fmt.Sprint(v)), nil
	})
	RegisterFormatter("title", func(v any, _ string) (any, error) {
		return cases.Title(language.Und).String(fmt.Sprint(v)), nil
	})
	RegisterFormatter("number", func(v any, arg string) (any, error) {
		return formatNumber(v, arg)
	})
	RegisterFormatter("currency", func(v any, arg string) (any, error) {
		return formatCurrency(v, arg)
	})
	RegisterFormatter("date", func(v any, arg string) (any, error) {
		return formatDate(v, arg)
	})
}

// formatNumber groups thousands; arg is the number of decimals (default 0).
func formatNumber(v any, precision string) (string, error) {
	f, err := toFloat(v)
	if err != nil {
		return "", fmt.Errorf("number formatter: %w", err)
	}
	p := 0
	if precision != "" {
		if p, err = strconv.Atoi(precision); err != nil || p < 0 {
			return "", fmt.Errorf("number formatter: invalid precision %q", precision)
		}
	}
	return numberPrinter.Sprintf("%."+strconv.Itoa(p)+"f", f), nil
}

// formatCurrency prefixes a two-decimal amount with arg (default "$").
func formatCurrency(v any, symbol string) (string, error) {
	if symbol == "" {
		symbol = "$"
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, sym := range []string{symbol, "$", "€", "£", "¥"} {
			s = strings.TrimPrefix(s, sym)
		}
		v = s
	}
	n, err := formatNumber(v, "2")
	if err != nil {
		return "", fmt.Errorf("currency formatter: %w", err)
	}
	return symbol + n, nil
}

// formatDate applies a Go time layout, default "2006-01-02". Strings must
// be RFC 3339.
func formatDate(v any, layout string) (string, error) {
	if layout == "" {
		layout = time.DateOnly
	}
	switch t := v.(type) {
	case time.Time:
		return t.Format(layout), nil
	case *time.Time:
		if t == nil {
			return "", fmt.Errorf("date formatter: nil time")
		}
		return t.Format(layout), nil
	case string:
		tt, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return "", fmt.Errorf("date formatter: %w", err)
		}
		return tt.Format(layout), nil
	default:
		return "", fmt.Errorf("date formatter: not a time: %T", v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("numeric value required, got %T", v)
	}
}

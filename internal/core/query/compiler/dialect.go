package compiler

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/satishbabariya/fluent-query-go/internal/core/query/domain"
)

// Dialect is the part of a backend the compiler needs. Every
// database.Backend satisfies it.
type Dialect interface {
	PlaceholderToken(ordinal int) string
	QuoteIdentifier(name string) string
	QuoteString(value string) string
}

// TruncateRenderer is implemented by dialects without TRUNCATE TABLE.
type TruncateRenderer interface {
	RenderTruncate(quotedTable string) string
}

// TimestampLayout is the inline rendering of timestamps, always in UTC.
const TimestampLayout = "2006-01-02 15:04:05.999999"

// resolve unwraps a driver.Valuer to the value it binds as. A nil pointer
// Valuer is NULL.
func resolve(v any) (any, error) {
	valuer, ok := v.(driver.Valuer)
	if !ok {
		return v, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	return valuer.Value()
}

// directiveFor picks the directive for a value's Go type. Valuers are
// classified by the value they bind as.
func directiveFor(v any) domain.Directive {
	if r, err := resolve(v); err == nil {
		v = r
	}
	if v == nil {
		return domain.DirectiveNull
	}

	switch v.(type) {
	case time.Time:
		return domain.DirectiveTimestamp
	case string, []byte, fmt.Stringer:
		return domain.DirectiveString
	case bool:
		return domain.DirectiveBool
	case float32, float64:
		return domain.DirectiveFloat
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return domain.DirectiveInteger
	}

	return domain.DirectiveString
}

// literal renders v inline for directive d.
func literal(dialect Dialect, d domain.Directive, v any) (string, error) {
	v, err := resolve(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDirectiveType, d, err)
	}
	if v == nil {
		return "NULL", nil
	}

	switch d {
	case domain.DirectiveString:
		switch s := v.(type) {
		case string:
			return dialect.QuoteString(s), nil
		case []byte:
			return dialect.QuoteString(string(s)), nil
		case fmt.Stringer:
			return dialect.QuoteString(s.String()), nil
		}

	case domain.DirectiveInteger:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(rv.Int(), 10), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), 10), nil
		}

	case domain.DirectiveFloat:
		var f float64
		switch n := v.(type) {
		case float32:
			f = float64(n)
		case float64:
			f = n
		default:
			if directiveFor(v) == domain.DirectiveInteger {
				return literal(dialect, domain.DirectiveInteger, v)
			}
			return "", fmt.Errorf("%w: %s with %T", ErrDirectiveType, d, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: %s with non-finite %v", ErrDirectiveType, d, f)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil

	case domain.DirectiveBool:
		if b, ok := v.(bool); ok {
			if b {
				return "TRUE", nil
			}
			return "FALSE", nil
		}

	case domain.DirectiveTimestamp:
		if t, ok := v.(time.Time); ok {
			return dialect.QuoteString(t.UTC().Format(TimestampLayout)), nil
		}

	case domain.DirectiveNull:
		return literal(dialect, directiveFor(v), v)
	}

	return "", fmt.Errorf("%w: %s with %T", ErrDirectiveType, d, v)
}

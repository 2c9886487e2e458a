package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// field decodes one named member into the entity being built.
type field[T any] struct {
	required bool
	decode   func(raw []byte, dst *T) error
}

// fields maps member names to decoders. Members absent from the table are
// ignored; explicit null is treated as absent.
type fields[T any] map[string]field[T]

var errMissing = errors.New("required member missing")

// decodeObject applies table to the JSON object in raw. Members are visited
// in sorted name order, so errors and overrides are deterministic. The
// members the table does not know are returned.
func decodeObject[T any](raw []byte, table fields[T], dst *T) (Document, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	for _, name := range slices.Sorted(maps.Keys(table)) {
		f := table[name]
		v, ok := doc[name]
		if !ok || isNull(v) {
			if f.required {
				return nil, &DecodeError{Path: name, Err: errMissing}
			}
			continue
		}
		if err := f.decode(v, dst); err != nil {
			return nil, at(name, err)
		}
	}

	var extra Document
	for name, v := range doc {
		if _, known := table[name]; known {
			continue
		}
		if extra == nil {
			extra = Document{}
		}
		extra[name] = v
	}
	return extra, nil
}

// decodeWith adapts a table into an element decoder for list.
func decodeWith[E any](table fields[E]) func([]byte) (E, error) {
	return func(raw []byte) (E, error) {
		var e E
		_, err := decodeObject(raw, table, &e)
		return e, err
	}
}

func required[T any](f field[T]) field[T] {
	f.required = true
	return f
}

func unmarshal(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unexpected value %s", truncate(raw))
	}
	return nil
}

func str[T any](ptr func(*T) *string) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		return unmarshal(raw, ptr(dst))
	}}
}

// integer accepts JSON numbers and numeric strings; several counters
// (contentLength, lengthSeconds, maxBitrate) arrive as strings.
func integer[T any, N ~int | ~int64](ptr func(*T) *N) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		n, err := parseInt(raw)
		if err != nil {
			return err
		}
		*ptr(dst) = N(n)
		return nil
	}}
}

// boolean accepts true/false, 0/1 and their string forms.
func boolean[T any](ptr func(*T) *bool) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		b, err := parseBool(raw)
		if err != nil {
			return err
		}
		*ptr(dst) = b
		return nil
	}}
}

// presence is true whenever the member exists with a non-null value.
func presence[T any](ptr func(*T) *bool) field[T] {
	return field[T]{decode: func(_ []byte, dst *T) error {
		*ptr(dst) = true
		return nil
	}}
}

// httpURL is a string member holding an absolute http(s) URL. Any other
// string is treated as absent, which leaves a format without that route to
// the media; only a non-string value is malformed.
func httpURL[T any](ptr func(*T) *string) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		var s string
		if err := unmarshal(raw, &s); err != nil {
			return err
		}
		if u, err := url.Parse(s); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return nil
		}
		*ptr(dst) = s
		return nil
	}}
}

func text[T any](ptr func(*T) *string) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		var t Text
		if _, err := decodeObject(raw, textFields, &t); err != nil {
			return err
		}
		*ptr(dst) = t.String()
		return nil
	}}
}

// object decodes a nested member into a freshly allocated value.
func object[T, U any](ptr func(*T) **U, table fields[U]) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		u := new(U)
		if _, err := decodeObject(raw, table, u); err != nil {
			return err
		}
		*ptr(dst) = u
		return nil
	}}
}

// embedded decodes a nested member into a value held inline.
func embedded[T, U any](ptr func(*T) *U, table fields[U]) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		_, err := decodeObject(raw, table, ptr(dst))
		return err
	}}
}

// nested descends into a wrapper object whose members land on the same entity.
func nested[T any](table fields[T]) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		_, err := decodeObject(raw, table, dst)
		return err
	}}
}

func list[T, E any](ptr func(*T) *[]E, elem func([]byte) (E, error)) field[T] {
	return field[T]{decode: func(raw []byte, dst *T) error {
		var items []json.RawMessage
		if err := unmarshal(raw, &items); err != nil {
			return err
		}
		out := make([]E, 0, len(items))
		for i, item := range items {
			if isNull(item) {
				continue
			}
			e, err := elem(item)
			if err != nil {
				return at(fmt.Sprintf("[%d]", i), err)
			}
			out = append(out, e)
		}
		*ptr(dst) = out
		return nil
	}}
}

func parseInt(raw []byte) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("unexpected value %s", truncate(raw))
	}
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %s", x)
		}
		return int64(f), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric string %q", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected number, got %s", truncate(raw))
	}
}

func parseBool(raw []byte) (bool, error) {
	switch strings.Trim(string(bytes.TrimSpace(raw)), `"`) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %s", truncate(raw))
	}
}

func truncate(raw []byte) string {
	const limit = 40
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}

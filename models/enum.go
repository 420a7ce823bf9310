package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrUnknownEnumValue возвращается при попытке разобрать неизвестный код статуса/результата.
// Молчаливого значения по умолчанию нет: неизвестная строка всегда ошибка.
var ErrUnknownEnumValue = errors.New("unknown enum value")

type enumParser[T ~string] func(string) (T, error)

func parseEnum[T ~string](kind string, v string, allowed ...T) (T, error) {
	for _, a := range allowed {
		if string(a) == v {
			return a, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownEnumValue, kind, v)
}

func scanEnum[T ~string](dst *T, src any, parse enumParser[T]) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		return fmt.Errorf("%w: NULL", ErrUnknownEnumValue)
	default:
		return fmt.Errorf("%w: unsupported source type %T", ErrUnknownEnumValue, src)
	}
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

func valueEnum[T ~string](v T, parse enumParser[T]) (driver.Value, error) {
	if _, err := parse(string(v)); err != nil {
		return nil, err
	}
	return string(v), nil
}

func unmarshalEnum[T ~string](dst *T, text []byte, parse enumParser[T]) error {
	parsed, err := parse(string(text))
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

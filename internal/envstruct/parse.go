// Package envstruct fills configuration structs from environment variables described by struct tags.
package envstruct

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var (
	ErrNotStructPointer = errors.New("v must be a pointer to a struct")
	ErrEnvNotSet        = errors.New("environment variable not set")
	ErrInvalidValue     = errors.New("invalid value")
)

// Populate sets every field of the struct pointed to by v that carries an `env:"NAME"` tag.
//
// lookupEnv has the signature of [os.LookupEnv]. When NAME is unset the `envDefault:"value"` tag is used, and a
// field with neither fails with ErrEnvNotSet. Fields may be string, int, bool or [time.Duration]. All field errors
// are reported together.
func Populate(v any, lookupEnv func(string) (string, bool)) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: got %T", ErrNotStructPointer, v)
	}
	s := ptr.Elem()

	var errs []error
	for _, field := range reflect.VisibleFields(s.Type()) {
		name, tagged := field.Tag.Lookup("env")
		if !tagged {
			continue
		}
		if !field.IsExported() {
			errs = append(errs, fmt.Errorf("%w: unexported field %s", ErrInvalidValue, field.Name))
			continue
		}
		raw, ok := lookupEnv(name)
		if !ok {
			if raw, ok = field.Tag.Lookup("envDefault"); !ok {
				errs = append(errs, fmt.Errorf("%w: %s", ErrEnvNotSet, name))
				continue
			}
		}
		if err := set(s.FieldByIndex(field.Index), raw); err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", name, field.Name, err))
		}
	}
	return errors.Join(errs...)
}

func set(field reflect.Value, raw string) error {
	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: duration %q", ErrInvalidValue, raw)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() { //nolint:exhaustive // everything else is unsupported
	case reflect.String:
		field.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: int %q", ErrInvalidValue, raw)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: bool %q", ErrInvalidValue, raw)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrInvalidValue, field.Kind())
	}
	return nil
}

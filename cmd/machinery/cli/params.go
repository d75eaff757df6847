// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagsFromParams creates a [pflag.FlagSet] with flags bound to the
// tagged fields of params. params must be a pointer to a struct; a bad
// params type panics.
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers pflag entries for each tagged field in params.
// params must be a pointer to a struct.
//
// # Struct tags
//
//   - flag:"name" or flag:"name,n": the long flag name and optional
//     single-character shorthand. Fields without a flag tag are skipped.
//   - desc:"help text": the flag's help description.
//   - default:"value": the default value, parsed according to the
//     field's Go type.
//   - choices:"a,b": string fields only. Parsing fails for any other
//     non-empty value, and the choices are appended to the help text.
//
// Supported field types are string, bool, [time.Duration] and []string.
// Embedded structs are bound recursively.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStructFields(value.Elem(), flagSet)
}

func bindStructFields(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStructFields(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		flagTag := field.Tag.Get("flag")
		if flagTag == "" {
			continue
		}
		name, shorthand, _ := strings.Cut(flagTag, ",")

		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}
		spec := flagSpec{
			name:         name,
			shorthand:    shorthand,
			description:  field.Tag.Get("desc"),
			defaultValue: field.Tag.Get("default"),
		}
		if choices := field.Tag.Get("choices"); choices != "" {
			spec.choices = strings.Split(choices, ",")
		}
		if err := bindField(fieldValue, flagSet, spec); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

type flagSpec struct {
	name         string
	shorthand    string
	description  string
	defaultValue string
	choices      []string
}

func bindField(fieldValue reflect.Value, flagSet *pflag.FlagSet, spec flagSpec) error {
	target := fieldValue.Addr().Interface()
	if len(spec.choices) > 0 {
		text, ok := target.(*string)
		if !ok {
			return fmt.Errorf("choices on non-string flag --%s", spec.name)
		}
		choice := &choiceValue{target: text, choices: spec.choices}
		if err := choice.Set(spec.defaultValue); err != nil {
			return fmt.Errorf("default for --%s: %w", spec.name, err)
		}
		description := spec.description + " (" + strings.Join(spec.choices, "|") + ")"
		flagSet.VarP(choice, spec.name, spec.shorthand, description)
		return nil
	}

	switch target := target.(type) {
	case *string:
		flagSet.StringVarP(target, spec.name, spec.shorthand, spec.defaultValue, spec.description)

	case *bool:
		defaultValue, err := parseDefault(spec.defaultValue, false, strconv.ParseBool)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", spec.name, err)
		}
		flagSet.BoolVarP(target, spec.name, spec.shorthand, defaultValue, spec.description)

	case *time.Duration:
		defaultValue, err := parseDefault(spec.defaultValue, 0, time.ParseDuration)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", spec.name, err)
		}
		flagSet.DurationVarP(target, spec.name, spec.shorthand, defaultValue, spec.description)

	case *[]string:
		var defaultValue []string
		if spec.defaultValue != "" {
			defaultValue = strings.Split(spec.defaultValue, ",")
		}
		flagSet.StringSliceVarP(target, spec.name, spec.shorthand, defaultValue, spec.description)

	default:
		return fmt.Errorf("unsupported type %s for flag --%s", fieldValue.Type(), spec.name)
	}

	return nil
}

// choiceValue is a string flag restricted to a fixed set. The empty
// string is always accepted and means "not set".
type choiceValue struct {
	target  *string
	choices []string
}

func (c *choiceValue) String() string {
	if c.target == nil {
		return ""
	}
	return *c.target
}

func (c *choiceValue) Set(value string) error {
	if value != "" && !slices.Contains(c.choices, value) {
		return fmt.Errorf("%q is not one of %s", value, strings.Join(c.choices, ", "))
	}
	*c.target = value
	return nil
}

func (c *choiceValue) Type() string { return "string" }

func parseDefault[T any](s string, zero T, parse func(string) (T, error)) (T, error) {
	if s == "" {
		return zero, nil
	}
	return parse(s)
}

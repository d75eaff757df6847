// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// FieldType is the value type a driver field accepts.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeBool   FieldType = "bool"
	TypeURL    FieldType = "url"
	TypeIP     FieldType = "ip"
	TypeFile   FieldType = "file"
)

// Choice is one permitted value of an enumerated field. Label is set
// when the value is not self-describing ("ams2" / "Amsterdam 2").
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Field describes one docker-machine option of a driver. Key is the
// option name with underscores; machine.FlagName derives the flag.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Help     string    `json:"help,omitempty"`
	Required bool      `json:"required,omitempty"`
	Default  any       `json:"default,omitempty"`
	Choices  []Choice  `json:"choices,omitempty"`
}

func (f *Field) check() error {
	switch f.Type {
	case TypeString, TypeInt, TypeBool, TypeURL, TypeIP, TypeFile:
	default:
		return fmt.Errorf("field %q: unknown type %q", f.Key, f.Type)
	}
	if f.Default != nil {
		if err := f.validate(f.Default); err != nil {
			return fmt.Errorf("field %q: default: %w", f.Key, err)
		}
	}
	return nil
}

// validate checks a non-blank value against the field's type and
// choices.
func (f *Field) validate(value any) error {
	switch f.Type {
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected true or false, got %v", value)
		}
		return nil
	case TypeInt:
		if !isInteger(value) {
			return fmt.Errorf("expected an integer, got %v", value)
		}
	case TypeURL:
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected a URL string, got %v", value)
		}
		parsed, err := url.Parse(text)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid URL %q", text)
		}
	case TypeIP:
		text, ok := value.(string)
		if !ok || net.ParseIP(text) == nil {
			return fmt.Errorf("invalid IP address %v", value)
		}
	case TypeString, TypeFile:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected a string, got %v", value)
		}
	}

	if len(f.Choices) > 0 {
		text := choiceText(value)
		for _, choice := range f.Choices {
			if choice.Value == text {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of the permitted values", text)
	}
	return nil
}

// ChoiceLabel returns the display label for value, falling back to
// the value itself.
func (f *Field) ChoiceLabel(value string) string {
	for _, choice := range f.Choices {
		if choice.Value == value && choice.Label != "" {
			return choice.Label
		}
	}
	return value
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int64:
		return true
	case float64:
		return v == float64(int64(v))
	case json.Number:
		_, err := strconv.ParseInt(v.String(), 10, 64)
		return err == nil
	default:
		return false
	}
}

func choiceText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

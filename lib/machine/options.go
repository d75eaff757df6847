// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Option is one key/value pair of an Options mapping.
type Option struct {
	Key   string
	Value any
}

// Options is a flat mapping from flag name to scalar value that
// remembers insertion order. Values are string, bool, json.Number,
// int, int64, float64 or nil.
//
// Options round-trips through JSON as an object with its keys in
// order, so flags rendered from a stored job are emitted in the order
// the operator wrote them.
type Options []Option

// Get returns the value stored under key.
func (o Options) Get(key string) (any, bool) {
	for _, option := range o {
		if option.Key == key {
			return option.Value, true
		}
	}
	return nil, false
}

// Bool reports whether key holds the boolean true.
func (o Options) Bool(key string) bool {
	value, _ := o.Get(key)
	enabled, ok := value.(bool)
	return ok && enabled
}

// Set replaces the value under key, or appends the pair if key is not
// present.
func (o *Options) Set(key string, value any) {
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = value
			return
		}
	}
	*o = append(*o, Option{Key: key, Value: value})
}

// Without returns a copy of o with the given keys removed. o itself
// is not modified.
func (o Options) Without(keys ...string) Options {
	result := make(Options, 0, len(o))
	for _, option := range o {
		excluded := false
		for _, key := range keys {
			if option.Key == key {
				excluded = true
				break
			}
		}
		if !excluded {
			result = append(result, option)
		}
	}
	return result
}

// Merge returns a copy of o with every pair of overrides applied via
// Set. Keys new to o are appended in overrides order.
func (o Options) Merge(overrides Options) Options {
	result := o.Clone()
	for _, option := range overrides {
		result.Set(option.Key, option.Value)
	}
	return result
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	result := make(Options, len(o))
	copy(result, o)
	return result
}

// Keys returns the keys in order.
func (o Options) Keys() []string {
	keys := make([]string, len(o))
	for i, option := range o {
		keys[i] = option.Key
	}
	return keys
}

// MarshalJSON encodes o as a JSON object preserving key order.
func (o Options) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for i, option := range o {
		if i > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(option.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(option.Value)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", option.Key, err)
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping keys in document order.
// Numbers are kept as json.Number so that their textual form survives
// unchanged into flag values. Nested objects and arrays are rejected.
func (o *Options) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		*o = nil
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options: expected JSON object, got %v", token)
	}

	result := Options{}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		key := token.(string)

		token, err = decoder.Token()
		if err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
		if _, ok := token.(json.Delim); ok {
			return fmt.Errorf("option %q: value must be a string, number, boolean or null", key)
		}
		result.Set(key, token)
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("options: trailing data after object")
	}

	*o = result
	return nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlagName converts an option key to its command-line flag:
// "--" followed by the key with every underscore replaced by a hyphen.
func FlagName(key string) string {
	return "--" + strings.ReplaceAll(key, "_", "-")
}

// FlagArgs renders options as command-line flags in order.
//
//	true          --key
//	false         (nothing)
//	nil, ""       (nothing)
//	anything else --key=value
func FlagArgs(options Options) []string {
	args := make([]string, 0, len(options))
	for _, option := range options {
		if arg, ok := flagArg(option.Key, option.Value); ok {
			args = append(args, arg)
		}
	}
	return args
}

func flagArg(key string, value any) (string, bool) {
	name := FlagName(key)
	switch v := value.(type) {
	case nil:
		return "", false
	case bool:
		return name, v
	case string:
		if v == "" {
			return "", false
		}
		return name + "=" + v, true
	default:
		return name + "=" + formatValue(v), true
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

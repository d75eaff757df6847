// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"
)

func TestBindFlagsTypesAndDefaults(t *testing.T) {
	type params struct {
		JSONOutput
		Name     string        `flag:"name,n" desc:"name" default:"worker"`
		Force    bool          `flag:"force" desc:"force" default:"true"`
		Category string        `flag:"category" desc:"category" choices:"cloud,local" default:"local"`
		Interval time.Duration `flag:"interval" desc:"poll interval" default:"250ms"`
		Tags     []string      `flag:"tag" desc:"tags" default:"a,b"`
		Ignored  string
	}
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Name != "worker" || !p.Force || p.Category != "local" || p.Interval != 250*time.Millisecond {
		t.Errorf("defaults = %+v", p)
	}
	if strings.Join(p.Tags, ",") != "a,b" {
		t.Errorf("Tags = %v, want [a b]", p.Tags)
	}
	if flagSet.Lookup("json") == nil {
		t.Error("embedded JSONOutput did not bind --json")
	}

	if err := flagSet.Parse([]string{"-n", "other", "--force=false", "--tag", "x", "--category", "cloud"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name != "other" || p.Force || p.Category != "cloud" {
		t.Errorf("parsed = %+v", p)
	}
	if strings.Join(p.Tags, ",") != "x" {
		t.Errorf("Tags = %v, want [x]", p.Tags)
	}
}

func TestBindFlagsRejectsBadInput(t *testing.T) {
	var notStruct string
	if err := BindFlags(&notStruct, nil); err == nil {
		t.Error("BindFlags accepted a non-struct")
	}

	type unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	var u unsupported
	if err := BindFlags(&u, FlagsFromParams("empty", &struct{}{})); err == nil {
		t.Error("BindFlags accepted an unsupported field type")
	}

	type badDefault struct {
		Every time.Duration `flag:"every" default:"often"`
	}
	var b badDefault
	if err := BindFlags(&b, FlagsFromParams("empty", &struct{}{})); err == nil {
		t.Error("BindFlags accepted an unparseable default")
	}

	type choiceOnBool struct {
		Force bool `flag:"force" choices:"yes,no"`
	}
	var c choiceOnBool
	if err := BindFlags(&c, FlagsFromParams("empty", &struct{}{})); err == nil {
		t.Error("BindFlags accepted choices on a bool field")
	}
}

func TestChoiceFlagRejectsUnknownValue(t *testing.T) {
	var p struct {
		Category string `flag:"category" choices:"cloud,local"`
	}
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--category", "orbital"}); err == nil {
		t.Fatal("Parse accepted a value outside the choices")
	}
	if p.Category != "" {
		t.Errorf("Category = %q after a rejected value", p.Category)
	}
	usage := flagSet.FlagUsages()
	if !strings.Contains(usage, "cloud|local") {
		t.Errorf("usage does not list the choices:\n%s", usage)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/machinery/lib/machine"
)

func TestDefaultCatalogue(t *testing.T) {
	registry := Default()

	wantCloud := []string{"amazonec2", "digitalocean", "softlayer", "azure", "openstack", "rackspace", "vmwarevcloudair", "vmwarevsphere"}
	wantLocal := []string{"vmwarefusion", "virtualbox", "hyper-v"}
	for _, id := range wantCloud {
		spec, ok := registry.Lookup(id)
		if !ok {
			t.Errorf("Lookup(%q) missing", id)
			continue
		}
		if spec.Category != CategoryCloud {
			t.Errorf("%s category = %s, want cloud", id, spec.Category)
		}
	}
	for _, id := range wantLocal {
		spec, ok := registry.Lookup(id)
		if !ok {
			t.Errorf("Lookup(%q) missing", id)
			continue
		}
		if spec.Category != CategoryLocal {
			t.Errorf("%s category = %s, want local", id, spec.Category)
		}
	}
	if got := len(registry.All()); got != len(wantCloud)+len(wantLocal) {
		t.Errorf("All() has %d drivers", got)
	}
	if _, ok := registry.Lookup("google"); ok {
		t.Error("google driver should not be catalogued")
	}

	for _, spec := range registry.All() {
		if spec.Name == "" || spec.Logo == "" || !strings.Contains(spec.Description, "--") {
			t.Errorf("%s: incomplete display metadata", spec.ID)
		}
	}
}

func TestByCategorySorted(t *testing.T) {
	local := Default().ByCategory(CategoryLocal)
	var names []string
	for _, spec := range local {
		names = append(names, spec.Name)
	}
	want := []string{"Microsoft HyperV", "VMWare Fusion", "VirtualBox"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ByCategory(local) = %v, want %v", names, want)
	}
}

func TestSpecDefaults(t *testing.T) {
	spec, _ := Default().Lookup("virtualbox")
	defaults := spec.Defaults()

	memory, ok := defaults.Get("virtualbox_memory")
	if !ok || memory != json.Number("1024") {
		t.Errorf("virtualbox_memory default = %#v", memory)
	}
	args := machine.FlagArgs(defaults)
	if !contains(args, "--virtualbox-memory=1024") || !contains(args, "--virtualbox-disk-size=20000") {
		t.Errorf("FlagArgs(defaults) = %q", args)
	}
}

func TestDriverOptions(t *testing.T) {
	spec, _ := Default().Lookup("digitalocean")
	options := spec.DriverOptions(machine.Options{
		{Key: "driver", Value: "spoofed"},
		{Key: "digitalocean_access_token", Value: "abc"},
	})
	got := machine.FlagArgs(options)
	want := []string{"--driver=digitalocean", "--digitalocean-access-token=abc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlagArgs(DriverOptions) = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	spec, _ := Default().Lookup("digitalocean")

	err := spec.Validate(
		machine.Options{{Key: "digitalocean_access_token", Value: "abc"}},
		spec.Defaults(),
	)
	if err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	err = spec.Validate(
		machine.Options{{Key: "driver", Value: "digitalocean"}},
		machine.Options{
			{Key: "digitalocean_region", Value: "mars1"},
			{Key: "digitalocean_ipv6", Value: "yes"},
			{Key: "virtualbox_memory", Value: json.Number("1")},
		},
	)
	if err == nil {
		t.Fatal("Validate(invalid) succeeded")
	}
	message := err.Error()
	for _, fragment := range []string{
		"credentials.digitalocean_access_token",
		"settings.digitalocean_region",
		"settings.digitalocean_ipv6",
		"settings.virtualbox_memory is not a field",
	} {
		if !strings.Contains(message, fragment) {
			t.Errorf("error %q does not mention %q", message, fragment)
		}
	}
}

func TestValidateCredentials(t *testing.T) {
	spec, _ := Default().Lookup("azure")

	tests := []struct {
		name   string
		values machine.Options
		want   []string
	}{
		{
			name: "complete",
			values: machine.Options{
				{Key: "driver", Value: "azure"},
				{Key: "azure_subscription_id", Value: "sub-1"},
				{Key: "azure_subscription_cert", Value: "/tmp/cert.pem"},
			},
		},
		{
			name:   "missing",
			values: machine.Options{{Key: "azure_subscription_id", Value: "sub-1"}},
			want:   []string{"credentials.azure_subscription_cert"},
		},
		{
			name: "setting is not a credential",
			values: machine.Options{
				{Key: "azure_subscription_id", Value: "sub-1"},
				{Key: "azure_subscription_cert", Value: "/tmp/cert.pem"},
				{Key: "azure_location", Value: "West US"},
			},
			want: []string{"credentials.azure_location is not a field"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := spec.ValidateCredentials(test.values)
			if len(test.want) == 0 {
				if err != nil {
					t.Fatalf("ValidateCredentials = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateCredentials succeeded")
			}
			for _, fragment := range test.want {
				if !strings.Contains(err.Error(), fragment) {
					t.Errorf("error %q does not mention %q", err, fragment)
				}
			}
		})
	}
}

func TestFieldValidateTypes(t *testing.T) {
	tests := []struct {
		field Field
		value any
		ok    bool
	}{
		{Field{Type: TypeInt}, json.Number("42"), true},
		{Field{Type: TypeInt}, json.Number("4.2"), false},
		{Field{Type: TypeInt}, 8.0, true},
		{Field{Type: TypeInt}, "8", false},
		{Field{Type: TypeBool}, true, true},
		{Field{Type: TypeBool}, "true", false},
		{Field{Type: TypeURL}, "https://example.com/b2d.iso", true},
		{Field{Type: TypeURL}, "not a url", false},
		{Field{Type: TypeIP}, "10.0.0.1", true},
		{Field{Type: TypeIP}, "10.0.0", false},
		{Field{Type: TypeString, Choices: []Choice{{Value: "2"}}}, json.Number("2"), false},
		{Field{Type: TypeString, Choices: []Choice{{Value: "2"}}}, "2", true},
	}
	for _, test := range tests {
		err := test.field.validate(test.value)
		if (err == nil) != test.ok {
			t.Errorf("%s.validate(%#v) = %v, want ok=%v", test.field.Type, test.value, err, test.ok)
		}
	}
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"duplicate driver": `{"drivers": [
			{"id": "a", "category": "local"},
			{"id": "a", "category": "local"},
		]}`,
		"bad category":  `{"drivers": [{"id": "a", "category": "orbital"}]}`,
		"bad type":      `{"drivers": [{"id": "a", "category": "local", "settings": [{"key": "k", "type": "blob"}]}]}`,
		"bad default":   `{"drivers": [{"id": "a", "category": "local", "settings": [{"key": "k", "type": "int", "default": "x"}]}]}`,
		"unknown field": `{"drivers": [{"id": "a", "category": "local", "colour": "red"}]}`,
	}
	for name, document := range tests {
		if _, err := Parse([]byte(document)); err == nil {
			t.Errorf("%s: Parse succeeded", name)
		}
	}
}

func TestParseAcceptsComments(t *testing.T) {
	registry, err := Parse([]byte(`// site catalogue
{
  "drivers": [
    // the only driver
    {"id": "generic", "name": "Generic", "category": "local",
     "settings": [{"key": "generic_ip_address", "type": "ip", "required": true},],},
  ],
}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	spec, ok := registry.Lookup("generic")
	if !ok || len(spec.Settings) != 1 || !spec.Settings[0].Required {
		t.Errorf("generic spec = %+v", spec)
	}
}

func TestSuggest(t *testing.T) {
	got := Default().Suggest("vbox")
	if len(got) == 0 || got[0] != "virtualbox" {
		t.Errorf("Suggest(vbox) = %v", got)
	}
	if got := Default().Suggest("digitalokean"); len(got) == 0 || got[0] != "digitalocean" {
		t.Errorf("Suggest(digitalokean) = %v, want digitalocean first", got)
	}
}

func TestCredentialHelpers(t *testing.T) {
	spec, _ := Default().Lookup("azure")
	if !spec.IsCredential("azure_subscription_id") || spec.IsCredential("azure_size") {
		t.Error("IsCredential misclassified azure fields")
	}
	if got := spec.FileFields(); !reflect.DeepEqual(got, []string{"azure_subscription_cert"}) {
		t.Errorf("FileFields() = %v", got)
	}
	field, ok := spec.Field("azure_location")
	if !ok || field.Default != "West US" {
		t.Errorf("Field(azure_location) = %+v", field)
	}

	rackspace, _ := Default().Lookup("rackspace")
	flavor, _ := rackspace.Field("rackspace_flavor_id")
	if flavor.ChoiceLabel("2") != "512 MB Standard Instance" {
		t.Errorf("ChoiceLabel(2) = %q", flavor.ChoiceLabel("2"))
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/cmd/machinery/commands"
	driverlib "github.com/bureau-foundation/machinery/lib/driver"
	joblib "github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/testutil"
)

// fakeMachine stands in for docker-machine. It knows two machines,
// web-1 (running) and old (stopped). "create broken" fails with exit
// 3, and a plain "rm" always fails so that the forced retry runs.
const fakeMachine = `echo "$*" >> '@LOG@'
case "$1" in
ls)
	echo "NAME    ACTIVE   DRIVER       STATE     URL                         SWARM"
	echo "web-1   -        virtualbox   Running   tcp://192.168.99.100:2376"
	echo "old     -        virtualbox   Stopped"
	;;
inspect)
	printf '{"Name":"%s","DriverName":"virtualbox","Driver":{"CPU":1},"HostOptions":{"Memory":1024}}\n' "$2"
	;;
ip)
	[ "$2" = web-1 ] || { echo "Host is not running" >&2; exit 1; }
	echo 192.168.99.100
	;;
url)
	[ "$2" = web-1 ] || exit 1
	echo tcp://192.168.99.100:2376
	;;
create)
	echo "Creating machine $2"
	[ "$2" = broken ] && { echo "Error creating machine" >&2; exit 3; }
	echo "Docker is up and running!"
	;;
rm)
	[ "$3" = -f ] && { echo "Successfully removed $2"; exit 0; }
	echo "Error removing host $2" >&2
	exit 1
	;;
esac
`

type harness struct {
	dir         string
	root        string
	config      string
	invocations string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		dir:         dir,
		root:        filepath.Join(dir, "state"),
		config:      filepath.Join(dir, "machinery.yaml"),
		invocations: filepath.Join(dir, "invocations"),
	}

	binary := testutil.WriteScript(t, dir, "docker-machine", strings.ReplaceAll(fakeMachine, "@LOG@", h.invocations))

	config := strings.Join([]string{
		"environment: development",
		"machine:",
		"  binary: " + binary,
		"paths:",
		"  root: " + h.root,
		"  database: " + filepath.Join(h.root, "machinery.db"),
		"  uploads: " + filepath.Join(h.root, "uploads"),
		"inventory:",
		"  ttl: 5m",
		"  compression: zstd",
		"sealing:",
		"  identity_file: " + filepath.Join(h.root, "identity.age"),
		"logging:",
		"  level: warn",
		"  format: json",
		"",
	}, "\n")
	if err := os.WriteFile(h.config, []byte(config), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return h
}

// run executes one CLI invocation against the harness configuration.
func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := &cli.Environment{Stdout: &stdout, Stderr: &stderr, Color: "never"}
	err := commands.Main(context.Background(), env, append([]string{"--config", h.config}, args...))
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := h.run(t, args...)
	if err != nil {
		t.Fatalf("machinery %s: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return stdout
}

func (h *harness) invoked(t *testing.T) []string {
	t.Helper()
	return testutil.ReadLines(t, h.invocations)
}

func (h *harness) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *cli.ExitError", err)
	}
	return exitErr.Code
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	stdout := h.mustRun(t, "version")
	if !strings.HasPrefix(stdout, "machinery ") {
		t.Errorf("version output = %q", stdout)
	}

	short := strings.TrimSpace(h.mustRun(t, "version", "--short"))
	var result struct {
		Version string `json:"version"`
		Build   string `json:"build"`
	}
	if err := json.Unmarshal([]byte(h.mustRun(t, "version", "--json")), &result); err != nil {
		t.Fatalf("decoding version --json: %v", err)
	}
	if short == "" || result.Version != short || !strings.HasPrefix(result.Build, short) {
		t.Errorf("short = %q, json = %+v", short, result)
	}
}

func TestUnknownCommandSuggests(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(t, "jbo")
	if err == nil || !strings.Contains(err.Error(), `did you mean "job"`) {
		t.Errorf("error = %v, want a suggestion of job", err)
	}
}

func TestMachineListRefreshesAndCaches(t *testing.T) {
	h := newHarness(t)

	if _, _, err := h.run(t, "machine", "list", "--cached"); err == nil || !strings.Contains(err.Error(), "machine refresh") {
		t.Fatalf("list --cached with an empty cache: error = %v, want a hint to refresh", err)
	}

	stdout := h.mustRun(t, "machine", "list")
	for _, want := range []string{"web-1", "running", "192.168.99.100", "old", "stopped", "2 machines", "changed since"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, stdout)
		}
	}

	stdout = h.mustRun(t, "machine", "list")
	if !strings.Contains(stdout, "unchanged since") {
		t.Errorf("second refresh reported a change:\n%s", stdout)
	}

	before := len(h.invoked(t))
	stdout = h.mustRun(t, "machine", "list", "--cached", "--json")
	if after := len(h.invoked(t)); after != before {
		t.Errorf("--cached ran docker-machine %d times", after-before)
	}
	var result struct {
		Machines []struct {
			Name  string `json:"name"`
			State string `json:"state"`
			IP    string `json:"ip"`
		} `json:"machines"`
		Changed *bool `json:"changed"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decoding --json output: %v\n%s", err, stdout)
	}
	if len(result.Machines) != 2 {
		t.Fatalf("machines = %+v, want 2", result.Machines)
	}
	if result.Machines[0].Name != "web-1" || result.Machines[0].State != "running" || result.Machines[0].IP != "192.168.99.100" {
		t.Errorf("first machine = %+v", result.Machines[0])
	}
	if result.Machines[1].IP != "" {
		t.Errorf("stopped machine IP = %q, want empty", result.Machines[1].IP)
	}
	if result.Changed != nil {
		t.Errorf("changed = %v for a cached read, want absent", *result.Changed)
	}
}

func TestMachineInspect(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "machine", "refresh")

	stdout := h.mustRun(t, "machine", "inspect", "web-1", "--cached", "--json")
	var result struct {
		Name        string         `json:"name"`
		Driver      string         `json:"driver"`
		Details     map[string]any `json:"details"`
		DriverInfo  map[string]any `json:"driver_info"`
		HostOptions map[string]any `json:"host_options"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decoding --json output: %v\n%s", err, stdout)
	}
	if result.Name != "web-1" || result.Driver != "virtualbox" {
		t.Errorf("result = %+v", result)
	}
	if _, ok := result.Details["Driver"]; ok {
		t.Error("details still carry the Driver section")
	}
	if result.DriverInfo["CPU"] != float64(1) {
		t.Errorf("driver_info = %v, want CPU 1", result.DriverInfo)
	}
	if result.HostOptions["Memory"] != float64(1024) {
		t.Errorf("host_options = %v, want Memory 1024", result.HostOptions)
	}

	stdout = h.mustRun(t, "machine", "inspect", "web-1", "--cached")
	for _, want := range []string{"web-1", "Details", "Host options"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}
}

func TestMachineInspectUnknownSuggests(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "machine", "refresh")

	_, _, err := h.run(t, "machine", "inspect", "web1", "--cached")
	if err == nil || !strings.Contains(err.Error(), "did you mean web-1") {
		t.Errorf("error = %v, want a suggestion of web-1", err)
	}
}

func TestMachineAddresses(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "machine", "refresh")

	if stdout := h.mustRun(t, "machine", "ip", "web-1", "--cached"); stdout != "192.168.99.100\n" {
		t.Errorf("ip = %q", stdout)
	}
	if stdout := h.mustRun(t, "machine", "url", "web-1", "--cached"); stdout != "tcp://192.168.99.100:2376\n" {
		t.Errorf("url = %q", stdout)
	}

	_, _, err := h.run(t, "machine", "ip", "old", "--cached")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("ip of a stopped machine exited %d, want 1", code)
	}
}

func TestMachineRemoveUsesForce(t *testing.T) {
	h := newHarness(t)

	stdout := h.mustRun(t, "machine", "rm", "web-1")
	if !strings.Contains(stdout, "had to use force") || !strings.Contains(stdout, "Successfully removed web-1") {
		t.Errorf("rm output = %q", stdout)
	}

	var removals []string
	for _, line := range h.invoked(t) {
		if strings.HasPrefix(line, "rm ") {
			removals = append(removals, line)
		}
	}
	if strings.Join(removals, "|") != "rm web-1|rm web-1 -f" {
		t.Errorf("removals = %q, want plain then forced", removals)
	}
}

func TestJobCreateRunShow(t *testing.T) {
	h := newHarness(t)
	params := h.writeFile(t, "web-2.jsonc", `{
	// The token is masked whenever the command is shown.
	"credentials": {"digitalocean_access_token": "secret-token"},
	"settings": {},
}`)

	stdout := h.mustRun(t, "job", "create", "web-2", "--driver", "digitalocean", "--params", params, "--json")
	var created struct {
		ID      int64         `json:"id"`
		Machine string        `json:"machine"`
		Status  joblib.Status `json:"status"`
		Command string        `json:"command"`
	}
	if err := json.Unmarshal([]byte(stdout), &created); err != nil {
		t.Fatalf("decoding create output: %v\n%s", err, stdout)
	}
	if created.ID != 1 || created.Machine != "web-2" || created.Status != joblib.StatusCreated {
		t.Errorf("created = %+v", created)
	}
	if strings.Contains(created.Command, "secret-token") || !strings.Contains(created.Command, "--digitalocean-access-token="+joblib.MaskedValue) {
		t.Errorf("command not masked: %q", created.Command)
	}

	stdout = h.mustRun(t, "job", "run", "1")
	if !strings.Contains(stdout, "Creating machine web-2\n") || !strings.Contains(stdout, "Docker is up and running!\n") {
		t.Errorf("run output = %q", stdout)
	}

	want := "create web-2 --driver=digitalocean --digitalocean-access-token=secret-token " +
		"--digitalocean-image=docker --digitalocean-region=nyc3 --digitalocean-size=512mb"
	found := false
	for _, line := range h.invoked(t) {
		if line == want {
			found = true
		}
	}
	if !found {
		t.Errorf("invocations %q do not include %q", h.invoked(t), want)
	}

	stdout = h.mustRun(t, "job", "show", "1")
	for _, wantText := range []string{"succeeded", "Docker is up and running!", joblib.MaskedValue} {
		if !strings.Contains(stdout, wantText) {
			t.Errorf("show output missing %q:\n%s", wantText, stdout)
		}
	}

	if _, _, err := h.run(t, "job", "run", "1"); !errors.Is(err, joblib.ErrAlreadyStarted) {
		t.Errorf("second run error = %v, want ErrAlreadyStarted", err)
	}

	stdout = h.mustRun(t, "job", "list", "--json")
	var listed []struct {
		ID       int64 `json:"id"`
		ExitCode *int  `json:"exit_code"`
	}
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("decoding list output: %v\n%s", err, stdout)
	}
	if len(listed) != 1 || listed[0].ExitCode == nil || *listed[0].ExitCode != 0 {
		t.Errorf("listed = %+v", listed)
	}
}

func TestJobRunFailureSetsExitCode(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run(t, "job", "create", "broken", "--driver", "virtualbox", "--run")
	if code := exitCode(t, err); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !strings.Contains(stdout, "Error creating machine") {
		t.Errorf("stderr of docker-machine not shown: %q", stdout)
	}

	stdout = h.mustRun(t, "job", "show", "1", "--json")
	var shown struct {
		Status   joblib.Status `json:"status"`
		ExitCode *int          `json:"exit_code"`
		Output   string        `json:"output"`
	}
	if err := json.Unmarshal([]byte(stdout), &shown); err != nil {
		t.Fatalf("decoding show output: %v\n%s", err, stdout)
	}
	if shown.Status != joblib.StatusFailed || shown.ExitCode == nil || *shown.ExitCode != 3 {
		t.Errorf("shown = %+v", shown)
	}
	if !strings.Contains(shown.Output, "Error creating machine") {
		t.Errorf("output = %q", shown.Output)
	}
}

func TestJobCreateRejectsExistingMachine(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "machine", "refresh")

	_, _, err := h.run(t, "job", "create", "web-1", "--driver", "virtualbox")
	if !errors.Is(err, joblib.ErrMachineExists) {
		t.Errorf("error = %v, want ErrMachineExists", err)
	}
}

func TestJobCreateValidates(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		args   []string
		params string
		want   string
	}{
		{
			name: "unknown driver",
			args: []string{"--driver", "virtualbx"},
			want: "did you mean virtualbox",
		},
		{
			name:   "missing credential",
			args:   []string{"--driver", "digitalocean"},
			params: `{"credentials": {}}`,
			want:   "digitalocean_access_token",
		},
		{
			name:   "unknown setting",
			args:   []string{"--driver", "virtualbox"},
			params: `{"settings": {"virtualbox_colour": "blue"}}`,
			want:   "virtualbox_colour",
		},
		{
			name:   "unknown top-level key",
			args:   []string{"--driver", "virtualbox"},
			params: `{"options": {}}`,
			want:   "options",
		},
		{
			name: "detach without run",
			args: []string{"--driver", "virtualbox", "--detach"},
			want: "--detach requires --run",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			args := append([]string{"job", "create", "new-machine"}, test.args...)
			if test.params != "" {
				args = append(args, "--params", h.writeFile(t, "params.jsonc", test.params))
			}
			_, _, err := h.run(t, args...)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %v, want mention of %q", err, test.want)
			}
		})
	}
}

func TestJobCreateStagesFiles(t *testing.T) {
	h := newHarness(t)
	certificate := h.writeFile(t, "subscription.pem", "CERTIFICATE")
	params := h.writeFile(t, "azure.jsonc", `{
	"credentials": {
		"azure_subscription_id": "sub-1",
		"azure_subscription_cert": "`+certificate+`",
	},
}`)

	h.mustRun(t, "job", "create", "az-1", "--driver", "azure", "--params", params, "--run")

	staged := filepath.Join(h.root, "uploads", "az-1", "subscription.pem")
	data, err := os.ReadFile(staged)
	if err != nil {
		t.Fatalf("staged certificate: %v", err)
	}
	if string(data) != "CERTIFICATE" {
		t.Errorf("staged content = %q", data)
	}

	found := false
	for _, line := range h.invoked(t) {
		if strings.HasPrefix(line, "create az-1 ") && strings.Contains(line, "--azure-subscription-cert="+staged) {
			found = true
		}
	}
	if !found {
		t.Errorf("create did not use the staged path %s: %q", staged, h.invoked(t))
	}
}

func TestKeyGenerateEnablesSealing(t *testing.T) {
	h := newHarness(t)

	stdout := h.mustRun(t, "key", "generate")
	if !strings.Contains(stdout, "public key: age1") {
		t.Errorf("generate output = %q", stdout)
	}
	identity := filepath.Join(h.root, "identity.age")
	info, err := os.Stat(identity)
	if err != nil {
		t.Fatalf("identity file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("identity mode = %v, want 0600", info.Mode().Perm())
	}

	if _, _, err := h.run(t, "key", "generate"); err == nil {
		t.Error("second generate overwrote the identity file")
	}

	params := h.writeFile(t, "do.jsonc", `{"credentials": {"digitalocean_access_token": "sealed-token"}}`)
	h.mustRun(t, "job", "create", "sealed-1", "--driver", "digitalocean", "--params", params)

	for _, name := range []string{"machinery.db", "machinery.db-wal"} {
		data, err := os.ReadFile(filepath.Join(h.root, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if bytes.Contains(data, []byte("sealed-token")) {
			t.Errorf("credential stored in plaintext in %s with sealing enabled", name)
		}
	}

	h.mustRun(t, "job", "run", "1")
	var found bool
	for _, line := range h.invoked(t) {
		if strings.Contains(line, "--digitalocean-access-token=sealed-token") {
			found = true
		}
	}
	if !found {
		t.Error("sealed parameters were not unsealed for the run")
	}
}

func TestDriverCommands(t *testing.T) {
	h := newHarness(t)

	stdout := h.mustRun(t, "driver", "list", "--category", "local", "--json")
	var drivers []struct {
		ID       string `json:"id"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(stdout), &drivers); err != nil {
		t.Fatalf("decoding driver list: %v\n%s", err, stdout)
	}
	ids := make(map[string]bool)
	for _, d := range drivers {
		ids[d.ID] = true
		if d.Category != "local" {
			t.Errorf("driver %s has category %s", d.ID, d.Category)
		}
	}
	if !ids["virtualbox"] || ids["digitalocean"] {
		t.Errorf("local drivers = %v", ids)
	}

	stdout = h.mustRun(t, "driver", "show", "digitalocean")
	for _, want := range []string{"--digitalocean-access-token", "Credentials", "Settings", "nyc3"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("show output missing %q:\n%s", want, stdout)
		}
	}

	if _, _, err := h.run(t, "driver", "show", "digitalokean"); err == nil || !strings.Contains(err.Error(), "digitalocean") {
		t.Errorf("error = %v, want a suggestion of digitalocean", err)
	}
	if _, _, err := h.run(t, "driver", "list", "--category", "orbital"); err == nil {
		t.Error("unknown category accepted")
	}
}

func TestDriverCredentials(t *testing.T) {
	h := newHarness(t)
	token := h.writeFile(t, "do.jsonc", `{
	// Sent as --digitalocean-access-token
	"digitalocean_access_token": "saved-token",
}`)

	stdout := h.mustRun(t, "driver", "credentials", "add", "digitalocean", "--params", token, "--label", "personal", "--json")
	var added struct {
		ID     int64    `json:"id"`
		Driver string   `json:"driver"`
		Label  string   `json:"label"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal([]byte(stdout), &added); err != nil {
		t.Fatalf("decoding add output: %v\n%s", err, stdout)
	}
	if added.ID != 1 || added.Driver != "digitalocean" || added.Label != "personal" {
		t.Errorf("added = %+v", added)
	}
	if strings.Contains(stdout, "saved-token") {
		t.Errorf("add output shows the token: %s", stdout)
	}

	for _, args := range [][]string{
		{"driver", "credentials", "list"},
		{"driver", "credentials", "list", "--driver", "digitalocean", "--json"},
	} {
		stdout := h.mustRun(t, args...)
		if !strings.Contains(stdout, "personal") || strings.Contains(stdout, "saved-token") {
			t.Errorf("%s output = %q", strings.Join(args, " "), stdout)
		}
	}

	h.mustRun(t, "job", "create", "web-3", "--credentials", "1", "--run")
	want := "create web-3 --driver=digitalocean --digitalocean-access-token=saved-token"
	found := false
	for _, line := range h.invoked(t) {
		if strings.HasPrefix(line, want) {
			found = true
		}
	}
	if !found {
		t.Errorf("invocations %q do not start with %q", h.invoked(t), want)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "missing credential",
			args: []string{"driver", "credentials", "add", "digitalocean", "--params", h.writeFile(t, "empty.jsonc", `{}`)},
			want: "digitalocean_access_token",
		},
		{
			name: "setting in credentials file",
			args: []string{"driver", "credentials", "add", "digitalocean", "--params",
				h.writeFile(t, "region.jsonc", `{"digitalocean_access_token": "t", "digitalocean_region": "ams2"}`)},
			want: "digitalocean_region is not a field",
		},
		{
			name: "unknown driver",
			args: []string{"driver", "credentials", "add", "digitalokean", "--params", token},
			want: "did you mean digitalocean",
		},
		{
			name: "driver mismatch",
			args: []string{"job", "create", "web-4", "--driver", "virtualbox", "--credentials", "1"},
			want: "are for driver digitalocean",
		},
		{
			name: "non-numeric ID",
			args: []string{"job", "create", "web-4", "--credentials", "personal"},
			want: "invalid --credentials",
		},
		{
			name: "neither driver nor credentials",
			args: []string{"job", "create", "web-4"},
			want: "--driver or --credentials is required",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := h.run(t, test.args...)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %v, want mention of %q", err, test.want)
			}
		})
	}

	if _, _, err := h.run(t, "job", "create", "web-4", "--credentials", "99"); !errors.Is(err, driverlib.ErrCredentialsNotFound) {
		t.Errorf("unknown credentials error = %v, want ErrCredentialsNotFound", err)
	}

	stdout = h.mustRun(t, "driver", "credentials", "rm", "1")
	if stdout != "removed credentials 1\n" {
		t.Errorf("rm output = %q", stdout)
	}
	if _, _, err := h.run(t, "driver", "credentials", "rm", "1"); !errors.Is(err, driverlib.ErrCredentialsNotFound) {
		t.Errorf("second rm error = %v, want ErrCredentialsNotFound", err)
	}

	// The job keeps its own copy of the removed credentials.
	stdout = h.mustRun(t, "job", "show", "1")
	if !strings.Contains(stdout, "succeeded") {
		t.Errorf("job show after rm = %q", stdout)
	}
}

func TestDriverCredentialsStageFiles(t *testing.T) {
	h := newHarness(t)
	certificate := h.writeFile(t, "subscription.pem", "CERTIFICATE")
	values := h.writeFile(t, "azure.jsonc", `{
	"azure_subscription_id": "sub-1",
	"azure_subscription_cert": "`+certificate+`",
}`)

	h.mustRun(t, "driver", "credentials", "add", "azure", "--params", values)

	matches, err := filepath.Glob(filepath.Join(h.root, "uploads", "credentials", "azure-*", "subscription.pem"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("staged certificates = %v (%v)", matches, err)
	}
	if err := os.Remove(certificate); err != nil {
		t.Fatalf("removing the original certificate: %v", err)
	}

	h.mustRun(t, "job", "create", "az-2", "--credentials", "1", "--run")
	staged := filepath.Join(h.root, "uploads", "az-2", "subscription.pem")
	found := false
	for _, line := range h.invoked(t) {
		if strings.HasPrefix(line, "create az-2 ") && strings.Contains(line, "--azure-subscription-cert="+staged) {
			found = true
		}
	}
	if !found {
		t.Errorf("create did not use %s: %q", staged, h.invoked(t))
	}

	h.mustRun(t, "driver", "credentials", "rm", "1")
	if _, err := os.Stat(filepath.Dir(matches[0])); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("staging directory left after rm: %v", err)
	}
	if _, err := os.Stat(staged); err != nil {
		t.Errorf("job copy removed with the credentials: %v", err)
	}
}

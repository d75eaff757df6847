// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/machinery/lib/process"
)

// Client runs docker-machine subcommands. The zero value is not
// usable; construct with NewClient.
type Client struct {
	binary string
	logger *slog.Logger
}

// NewClient returns a Client that executes binary. A nil logger
// discards.
func NewClient(binary string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{binary: binary, logger: logger}
}

// Binary returns the docker-machine executable path.
func (c *Client) Binary() string {
	return c.binary
}

func (c *Client) capture(ctx context.Context, args ...string) (process.Result, error) {
	argv := append([]string{c.binary}, args...)
	result, err := process.Capture(ctx, argv)
	if err != nil {
		return result, err
	}
	c.logger.Debug("docker-machine finished",
		"args", args,
		"exit_code", result.ExitCode,
	)
	return result, nil
}

// List runs "ls" and parses its table. The exit status of ls is not
// consulted: docker-machine exits non-zero when any single machine
// cannot be queried but still prints the rows it could.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	result, err := c.capture(ctx, "ls")
	if err != nil {
		return nil, err
	}
	entries, err := ParseList(result.Stdout)
	if err != nil {
		if parseErr, ok := err.(*ParseError); ok && result.Stderr != "" {
			parseErr.Detail += " (stderr: " + strings.TrimSpace(result.Stderr) + ")"
		}
		return nil, err
	}
	return entries, nil
}

// Inspect runs "inspect <name>" and decodes the JSON document it
// prints. A non-zero exit or undecodable output is a *ParseError.
func (c *Client) Inspect(ctx context.Context, name string) (map[string]any, error) {
	result, err := c.capture(ctx, "inspect", name)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, &ParseError{
			Command: "inspect",
			Machine: name,
			Detail:  fmt.Sprintf("exit status %d: %s", result.ExitCode, strings.TrimSpace(result.Combined())),
		}
	}
	var document map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &document); err != nil {
		return nil, &ParseError{Command: "inspect", Machine: name, Detail: "invalid JSON", Err: err}
	}
	if document == nil {
		return nil, &ParseError{Command: "inspect", Machine: name, Detail: "empty document"}
	}
	return document, nil
}

// IP runs "ip <name>". A machine without an address (stopped, or
// still booting) makes docker-machine exit non-zero; that is reported
// as an empty address rather than an error.
func (c *Client) IP(ctx context.Context, name string) (string, error) {
	return c.line(ctx, "ip", name)
}

// URL runs "url <name>", with the same empty-on-failure convention as
// IP.
func (c *Client) URL(ctx context.Context, name string) (string, error) {
	return c.line(ctx, "url", name)
}

func (c *Client) line(ctx context.Context, subcommand, name string) (string, error) {
	result, err := c.capture(ctx, subcommand, name)
	if err != nil {
		return "", err
	}
	if !result.Success() {
		c.logger.Debug("docker-machine reported no value",
			"subcommand", subcommand,
			"machine", name,
			"stderr", strings.TrimSpace(result.Stderr),
		)
		return "", nil
	}
	return strings.TrimSpace(result.Stdout), nil
}

// Remove runs "rm <name>", appending "-f" when force is set. The
// caller interprets the exit status.
func (c *Client) Remove(ctx context.Context, name string, force bool) (process.Result, error) {
	argv := RemoveCommand(c.binary, name, force)
	return c.capture(ctx, argv[1:]...)
}

// Create starts "create" for params with stderr merged into the
// returned stream.
func (c *Client) Create(ctx context.Context, params CreateParams) (*process.Stream, error) {
	argv := CreateCommand(c.binary, params)
	c.logger.Info("starting docker-machine create", "machine", params.Name)
	return process.Start(ctx, argv, process.WithStderr())
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// EventKind distinguishes output lines from the terminal exit event.
type EventKind int

const (
	// EventLine carries one line of output in Line, including its
	// trailing newline if the program wrote one.
	EventLine EventKind = iota + 1

	// EventExit is always the last event of a stream and carries the
	// program's exit status in ExitCode. A program killed by a signal
	// reports -1.
	EventExit
)

func (k EventKind) String() string {
	switch k {
	case EventLine:
		return "line"
	case EventExit:
		return "exit"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one element of a Stream.
type Event struct {
	Kind     EventKind
	Line     string
	ExitCode int
}

// StartOption configures Start.
type StartOption func(*startOptions)

type startOptions struct {
	mergeStderr bool
	env         []string
}

// WithStderr merges the child's stderr into the line stream. Without
// it, stderr is buffered and only surfaced through [Stream.Stderr]
// after exit.
func WithStderr() StartOption {
	return func(o *startOptions) { o.mergeStderr = true }
}

// WithEnv appends entries to the child's inherited environment.
func WithEnv(env ...string) StartOption {
	return func(o *startOptions) { o.env = append(o.env, env...) }
}

// Stream is a running child process read line by line. A Stream is
// consumed by one goroutine; it is not safe for concurrent Next calls.
type Stream struct {
	ctx     context.Context
	command *exec.Cmd
	reader  *bufio.Reader
	pipe    *os.File
	stderr  *bytes.Buffer

	exited   bool
	waitOnce sync.Once
	waitErr  error
}

// Start spawns argv[0] with the remaining elements as arguments. It
// returns a *SpawnError if the program cannot be executed.
func Start(ctx context.Context, argv []string, opts ...StartOption) (*Stream, error) {
	if len(argv) == 0 {
		return nil, errors.New("process: empty argument vector")
	}
	var options startOptions
	for _, opt := range opts {
		opt(&options)
	}

	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("process: creating output pipe: %w", err)
	}

	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	setProcessGroup(command)
	command.Stdout = writeEnd
	if len(options.env) > 0 {
		command.Env = append(os.Environ(), options.env...)
	}
	var stderr *bytes.Buffer
	if options.mergeStderr {
		command.Stderr = writeEnd
	} else {
		stderr = &bytes.Buffer{}
		command.Stderr = stderr
	}

	if err := command.Start(); err != nil {
		readEnd.Close()
		writeEnd.Close()
		return nil, newSpawnError(argv[0], err)
	}
	// The child holds its own copy of the write end; closing ours is
	// what lets the reader observe EOF when the child exits.
	writeEnd.Close()

	return &Stream{
		ctx:     ctx,
		command: command,
		reader:  bufio.NewReader(readEnd),
		pipe:    readEnd,
		stderr:  stderr,
	}, nil
}

// Next blocks until the child writes a complete line, closes its
// output, or exits. After the EventExit event it returns io.EOF.
func (s *Stream) Next() (Event, error) {
	if s.exited {
		return Event{}, io.EOF
	}

	line, err := s.reader.ReadString('\n')
	if line != "" {
		return Event{Kind: EventLine, Line: line}, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		s.wait()
		s.exited = true
		return Event{}, fmt.Errorf("process: reading output of %s: %w", s.command.Path, err)
	}

	code, err := s.exitCode()
	s.exited = true
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventExit, ExitCode: code}, nil
}

func (s *Stream) exitCode() (int, error) {
	err := s.wait()
	if err == nil {
		return 0, nil
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return 0, fmt.Errorf("process: %s: %w", s.command.Path, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("process: waiting for %s: %w", s.command.Path, err)
}

func (s *Stream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.command.Wait()
		s.pipe.Close()
	})
	return s.waitErr
}

// Stderr returns the child's buffered stderr. It is empty when the
// stream was started WithStderr, and incomplete until EventExit.
func (s *Stream) Stderr() string {
	if s.stderr == nil {
		return ""
	}
	return s.stderr.String()
}

// Pid returns the child's process id.
func (s *Stream) Pid() int {
	return s.command.Process.Pid
}

// Close abandons a stream before its exit event: the child is killed
// and reaped. Closing a drained stream is a no-op.
func (s *Stream) Close() error {
	if s.exited {
		return nil
	}
	s.exited = true
	if err := killGroup(s.command); err != nil {
		return fmt.Errorf("process: killing %s: %w", s.command.Path, err)
	}
	s.wait()
	return nil
}

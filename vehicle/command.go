package vehicle

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCommandNotSupported is returned when no connector installed a
// handler for the command.
var ErrCommandNotSupported = errors.New("command not supported by backend")

// ErrCommandRejected wraps a backend refusal (as opposed to a transport
// failure).
var ErrCommandRejected = errors.New("command rejected by backend")

// CommandFunc executes one writable action against the backend,
// e.g. arg "start"/"stop" for charging. It may block on network I/O and
// must honor ctx.
type CommandFunc func(ctx context.Context, arg string) error

// Command is a writable control on a vehicle capability. Connectors
// install the handler, the bridge executes it on hub writes.
type Command struct {
	mu   sync.Mutex
	name string
	fn   CommandFunc
}

func NewCommand(name string) *Command {
	return &Command{name: name}
}

func (c *Command) Name() string { return c.name }

// Install sets the backend handler. Passing nil disables the command.
func (c *Command) Install(fn CommandFunc) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
}

func (c *Command) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn != nil
}

// Execute runs the command against the backend. The caller must not
// hold any accessory lock while calling, commands block on network I/O.
func (c *Command) Execute(ctx context.Context, arg string) error {
	c.mu.Lock()
	fn := c.fn
	c.mu.Unlock()
	if fn == nil {
		return fmt.Errorf("%s: %w", c.name, ErrCommandNotSupported)
	}
	return fn(ctx, arg)
}

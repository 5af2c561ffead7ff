package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrProtocolFault is returned when a fault handler returns instead of
// terminating the process.
var ErrProtocolFault = errors.New("command protocol fault")

// ErrClosed is returned by worker-side operations after Close.
var ErrClosed = errors.New("command channel closed")

// ProtocolFault describes a broken request/response exchange. It is never
// recoverable: the UI and the worker no longer agree on the document state.
type ProtocolFault struct {
	Session uuid.UUID
	Seq     uint64
	Command string
	Got     string
	Legal   []string
	Reason  string
}

func (f ProtocolFault) Error() string {
	return fmt.Sprintf("protocol fault in session %s seq %d: %s (command %s, got %s, legal %s)",
		f.Session, f.Seq, f.Reason, f.Command, f.Got, strings.Join(f.Legal, "|"))
}

// FaultHandler receives protocol faults. The default logs at fatal level,
// which terminates the process.
type FaultHandler func(ProtocolFault)

type state int

const (
	idle state = iota
	awaitingResponse
	awaitingData
	awaitingFinal
)

type envelope struct {
	seq uint64
	cmd Command
}

// Channel is the UI side of the command channel. It is strictly half-duplex:
// one command is in flight at a time and every command gets exactly one
// response, except SaveDocumentAs which gets a SaveTarget, then a Data
// message from the UI, then its final response.
//
// A Channel is owned by a single goroutine (the UI actor).
type Channel struct {
	session uuid.UUID
	log     *zap.Logger
	onFault FaultHandler

	commands  chan envelope
	data      chan Data
	responses chan Response
	done      chan struct{}

	seq     uint64
	state   state
	pending string
}

// Option configures a Channel.
type Option func(*Channel)

// WithFaultHandler replaces the default fatal fault handler.
func WithFaultHandler(h FaultHandler) Option {
	return func(c *Channel) { c.onFault = h }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Channel) { c.log = log }
}

// New creates a channel with a fresh session id.
func New(opts ...Option) *Channel {
	c := &Channel{
		session:   uuid.New(),
		log:       zap.NewNop(),
		commands:  make(chan envelope),
		data:      make(chan Data),
		responses: make(chan Response),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onFault == nil {
		c.onFault = func(f ProtocolFault) {
			c.log.Fatal("command protocol fault",
				zap.Uint64("seq", f.Seq),
				zap.String("command", f.Command),
				zap.String("got", f.Got),
				zap.Strings("legal", f.Legal),
				zap.String("reason", f.Reason),
			)
		}
	}
	c.log = c.log.With(zap.Stringer("session", c.session))
	return c
}

// Session returns the channel's session id.
func (c *Channel) Session() uuid.UUID {
	return c.session
}

// Close releases the worker side. Pending worker operations return ErrClosed.
func (c *Channel) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

func (c *Channel) fault(got, reason string) error {
	f := ProtocolFault{
		Session: c.session,
		Seq:     c.seq,
		Command: c.pending,
		Got:     got,
		Legal:   legalNames(c.pending),
		Reason:  reason,
	}
	c.onFault(f)
	return fmt.Errorf("%w: %s", ErrProtocolFault, f.Error())
}

// Send issues a command. Sending while another command is in flight is a
// protocol fault.
func (c *Channel) Send(cmd Command) error {
	if c.state != idle {
		return c.fault(cmd.Name(), "command sent while "+c.pending+" is in flight")
	}

	c.seq++
	c.pending = cmd.Name()
	c.state = awaitingResponse
	c.log.Debug("send", zap.Uint64("seq", c.seq), zap.String("command", c.pending))

	select {
	case c.commands <- envelope{seq: c.seq, cmd: cmd}:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// SendData sends the second-phase message of SaveDocumentAs. It is legal
// only after the SaveTarget response was received.
func (c *Channel) SendData(d Data) error {
	if c.state != awaitingData {
		return c.fault(d.Name(), "data sent outside the second phase")
	}

	c.pending = saveAsFinal
	c.state = awaitingFinal
	c.log.Debug("send data", zap.Uint64("seq", c.seq), zap.String("data", d.Name()))

	select {
	case c.data <- d:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Recv blocks until the response to the in-flight command arrives or ctx is
// done.
func (c *Channel) Recv(ctx context.Context) (Response, error) {
	if c.state != awaitingResponse && c.state != awaitingFinal {
		return nil, c.fault("", "receive with no command in flight")
	}

	select {
	case resp := <-c.responses:
		return c.accept(resp)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// TryRecv returns the response if it has arrived. The boolean is false while
// the response is still pending.
func (c *Channel) TryRecv() (Response, bool, error) {
	if c.state != awaitingResponse && c.state != awaitingFinal {
		return nil, false, c.fault("", "receive with no command in flight")
	}

	select {
	case resp := <-c.responses:
		resp, err := c.accept(resp)
		return resp, true, err
	default:
		return nil, false, nil
	}
}

// accept checks resp against the legal table and advances the state.
func (c *Channel) accept(resp Response) (Response, error) {
	got := resp.Name()
	if e, ok := resp.(Error); ok {
		got = "Error(" + e.Kind().String() + ")"
	}
	c.log.Debug("recv", zap.Uint64("seq", c.seq), zap.String("response", got))

	if !Legal(c.pending, resp) {
		return nil, c.fault(got, "illegal response")
	}

	if c.pending == (SaveDocumentAs{}).Name() {
		if _, ok := resp.(SaveTarget); ok {
			c.state = awaitingData
			return resp, nil
		}
	}

	c.state = idle
	c.pending = ""
	return resp, nil
}

// Call sends cmd and waits for its legal response.
func (c *Channel) Call(ctx context.Context, cmd Command) (Response, error) {
	if err := c.Send(cmd); err != nil {
		return nil, err
	}
	return c.Recv(ctx)
}

// Finish sends the second-phase data and waits for the final response.
func (c *Channel) Finish(ctx context.Context, d Data) (Response, error) {
	if err := c.SendData(d); err != nil {
		return nil, err
	}
	return c.Recv(ctx)
}

// Endpoint is the worker side of a Channel.
type Endpoint struct {
	c *Channel
}

// Endpoint returns the worker side of the channel.
func (c *Channel) Endpoint() *Endpoint {
	return &Endpoint{c: c}
}

// Next blocks until the next command arrives.
func (e *Endpoint) Next(ctx context.Context) (Command, uint64, error) {
	select {
	case env := <-e.c.commands:
		return env.cmd, env.seq, nil
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case <-e.c.done:
		return nil, 0, ErrClosed
	}
}

// Reply delivers the response to the current command.
func (e *Endpoint) Reply(ctx context.Context, resp Response) error {
	select {
	case e.c.responses <- resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.c.done:
		return ErrClosed
	}
}

// AwaitData blocks until the UI sends the second-phase message.
func (e *Endpoint) AwaitData(ctx context.Context) (Data, error) {
	select {
	case d := <-e.c.data:
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.c.done:
		return nil, ErrClosed
	}
}

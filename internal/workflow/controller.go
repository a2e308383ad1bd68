package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/lpac-console/internal/gateway"
	"github.com/muurk/lpac-console/internal/logging"
)

// State is a position in the operation lifecycle
type State int

const (
	StateIdle State = iota
	StateConfirming
	StateExecuting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

var (
	// ErrBusy rejects a Begin while another operation is pending or executing
	ErrBusy = errors.New("another operation is already in progress")

	// ErrNotConfirming is returned by Accept when nothing awaits confirmation
	ErrNotConfirming = errors.New("no operation is awaiting confirmation")

	// ErrNotExecuting is returned by Execute and Resolve for an operation
	// that is not the one currently executing, or was already dispatched
	ErrNotExecuting = errors.New("operation is not executing")
)

// Poster sends one action request. *gateway.Client satisfies it.
type Poster interface {
	Post(ctx context.Context, ep gateway.Endpoint, payload map[string]any) (gateway.Envelope, error)
}

// Outcome is the result of one pass through the workflow
type Outcome struct {
	Operation Operation
	State     State
	Envelope  gateway.Envelope
	Err       error
	Level     Level
	Message   string
	Details   []Detail
	Reload    bool
	Cancelled bool
}

// Succeeded reports whether the backend accepted the action
func (o Outcome) Succeeded() bool {
	return o.State == StateSucceeded
}

// Controller runs at most one operation at a time through
// Idle → Confirming → Executing → Succeeded|Failed → Idle.
type Controller struct {
	poster Poster

	mu         sync.Mutex
	state      State
	current    *Operation
	dispatched bool
}

// NewController creates an idle controller that sends actions through poster
func NewController(poster Poster) *Controller {
	return &Controller{poster: poster}
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether an operation is pending or executing
func (c *Controller) Busy() bool {
	return c.State() != StateIdle
}

// Pending returns the operation awaiting confirmation or executing
func (c *Controller) Pending() (Operation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Operation{}, false
	}
	return *c.current, true
}

func (c *Controller) transition(op *Operation, to State, fields ...zap.Field) {
	logging.LogTransition(op.ID, op.Name, c.state.String(), to.String(), fields...)
	c.state = to
}

// Begin moves an operation into confirmation. It never dispatches anything.
func (c *Controller) Begin(op Operation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		logging.Warn("Operation rejected",
			zap.String("operation", op.Name),
			zap.String("state", c.state.String()),
		)
		return ErrBusy
	}

	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	c.current = &op
	c.dispatched = false
	c.transition(c.current, StateConfirming,
		zap.String("endpoint", string(op.Endpoint)),
		zap.String("target", op.Target),
	)
	return nil
}

// Cancel abandons the operation awaiting confirmation. It has no effect
// once the operation is executing.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConfirming {
		return false
	}
	c.transition(c.current, StateIdle, zap.Bool("cancelled", true))
	c.current = nil
	return true
}

// Accept validates the user's confirmation. On a validation error the
// operation stays in confirmation and nothing is sent. On success the
// returned operation carries its final payload and must be passed to Execute.
func (c *Controller) Accept(ans Answer) (Operation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConfirming {
		return Operation{}, ErrNotConfirming
	}

	op := c.current
	if op.validate != nil {
		if err := op.validate(ans); err != nil {
			logging.Debug("Confirmation rejected",
				zap.String("op_id", op.ID),
				zap.Error(err),
			)
			return Operation{}, err
		}
	}

	ready := *op
	ready.Payload = clonePayload(op.Payload)
	if op.apply != nil {
		op.apply(ans, ready.Payload)
	}
	c.current = &ready
	c.transition(c.current, StateExecuting)
	return ready, nil
}

// Execute sends the operation's single request. It has no timeout of its
// own; ctx cancellation is the only way to abandon the wait.
func (c *Controller) Execute(ctx context.Context, op Operation) (gateway.Envelope, error) {
	c.mu.Lock()
	if c.state != StateExecuting || c.current.ID != op.ID || c.dispatched {
		c.mu.Unlock()
		return gateway.Envelope{}, ErrNotExecuting
	}
	c.dispatched = true
	c.mu.Unlock()

	return c.poster.Post(ctx, op.Endpoint, op.Payload)
}

// Resolve classifies the response, returns the controller to Idle and
// reports what the user should be told.
func (c *Controller) Resolve(op Operation, env gateway.Envelope, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateExecuting || c.current.ID != op.ID {
		return Outcome{Operation: op, State: c.state, Err: ErrNotExecuting, Level: LevelError, Message: ErrNotExecuting.Error()}
	}

	out := Outcome{Operation: op, Envelope: env}
	switch {
	case err != nil:
		out.State = StateFailed
		out.Err = err
		out.Level = LevelError
		out.Message = op.ErrorPrefix + ": " + gateway.ShortMessage(err)
	case !env.Success:
		out.State = StateFailed
		out.Err = gateway.NewActionError(op.Endpoint, env.Message())
		out.Level = LevelError
		out.Message = op.FailurePrefix + ": " + env.Message()
	default:
		out.State = StateSucceeded
		out.Level = LevelSuccess
		out.Message = op.SuccessMessage
		out.Reload = op.Reload
		if op.describe != nil {
			out.Details = op.describe(env)
		}
	}

	fields := []zap.Field{zap.String("message", out.Message)}
	if out.Err != nil {
		fields = append(fields, zap.Error(out.Err))
	}
	c.transition(c.current, out.State, fields...)
	c.transition(c.current, StateIdle)
	c.current = nil
	c.dispatched = false

	return out
}

// Run drives op through the whole workflow using fb for every interaction
// and reloads through r after a success that asks for it.
func (c *Controller) Run(ctx context.Context, op Operation, fb Feedback, r Reloader) Outcome {
	if err := c.Begin(op); err != nil {
		msg := "Another operation is still running"
		fb.Notify(LevelWarning, msg)
		return Outcome{Operation: op, State: c.State(), Err: err, Level: LevelWarning, Message: msg}
	}

	pending, _ := c.Pending()

	var ready Operation
	for {
		ans := fb.Confirm(pending.Prompt)
		if !ans.Accepted {
			c.Cancel()
			return Outcome{Operation: pending, State: StateIdle, Cancelled: true, Level: LevelInfo, Message: "Cancelled"}
		}

		var err error
		ready, err = c.Accept(ans)
		if err == nil {
			break
		}
		fb.Notify(LevelWarning, gateway.ShortMessage(err))
	}

	stop := fb.Progress(ready.ProgressMessage)
	env, err := c.Execute(ctx, ready)
	stop()

	out := c.Resolve(ready, env, err)
	fb.Notify(out.Level, out.Message)

	if out.Reload && r != nil {
		if rerr := r.Reload(ctx); rerr != nil {
			logging.Warn("Reload after operation failed",
				zap.String("op_id", ready.ID),
				zap.Error(rerr),
			)
		}
	}
	return out
}

func clonePayload(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

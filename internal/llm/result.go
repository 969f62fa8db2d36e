package llm

import (
	"context"
	"errors"
	"time"
)

// Result is either reply text or the reason the call failed. Callers decide how
// a failure is shown instead of inspecting the text.
type Result struct {
	Text string
	Err  error
}

// Ok wraps a successful reply
func Ok(text string) Result {
	return Result{Text: text}
}

// Fail wraps a failed call
func Fail(err error) Result {
	return Result{Err: err}
}

// IsOk reports whether the call succeeded
func (r Result) IsOk() bool {
	return r.Err == nil
}

// Call runs one completion under timeout. A deadline expiry is reported as
// ErrTimeout and every failure is wrapped in an ExternalCallError tagged op.
func Call(ctx context.Context, c Completer, op string, req Request, timeout time.Duration) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := c.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if !errors.Is(err, ErrTimeout) {
				err = errors.Join(ErrTimeout, err)
			}
		}
		return Fail(&ExternalCallError{Op: op, Err: err})
	}
	return Ok(text)
}

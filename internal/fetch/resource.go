// Package fetch tracks the lifecycle of one asynchronous data request per view.
package fetch

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Request identifies one issued fetch. Only the latest request of a Resource
// may change its state.
type Request struct {
	seq uint64
}

// Seq returns the request sequence number.
func (r Request) Seq() uint64 {
	return r.seq
}

// Result is the message produced by Cmd when fn returns.
type Result[T any] struct {
	Req  Request
	Data T
	Err  error
}

// Resource holds loading, error and data state for one request stream.
// It is not safe for concurrent use; Bubble Tea models own it on the update loop.
type Resource[T any] struct {
	Data    T
	Err     error
	Loading bool
	Loaded  bool

	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a new request, cancelling the one in flight. The returned
// context is derived from parent and is cancelled by the next Begin or Cancel.
func (r *Resource[T]) Begin(parent context.Context) (Request, context.Context) {
	if r.cancel != nil {
		r.cancel()
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.seq++
	r.Loading = true
	r.Err = nil
	return Request{seq: r.seq}, ctx
}

// Resolve applies a result. Results for superseded requests are dropped and
// Resolve returns false. A context.Canceled error from the current request
// clears loading without recording the error.
func (r *Resource[T]) Resolve(req Request, data T, err error) bool {
	if req.seq != r.seq {
		return false
	}

	r.Loading = false
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}
		r.Err = err
		return true
	}

	r.Data = data
	r.Err = nil
	r.Loaded = true
	return true
}

// Cancel aborts the in-flight request. Its result, if any, will be dropped.
func (r *Resource[T]) Cancel() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.seq++
	r.Loading = false
}

// Pending reports whether req is the request currently in flight.
func (r *Resource[T]) Pending(req Request) bool {
	return r.Loading && req.seq == r.seq
}

// Cmd wraps fn into a tea.Cmd that runs it with ctx and hands the result to wrap.
func Cmd[T any](ctx context.Context, req Request, fn func(context.Context) (T, error), wrap func(Result[T]) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		data, err := fn(ctx)
		return wrap(Result[T]{Req: req, Data: data, Err: err})
	}
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"context"

	"code.hybscloud.com/kont"
)

// Future is the eventual outcome of an asynchronous dispatch, completed
// exactly once with kont.Either: Right on success, Left on failure.
type Future[R any] struct {
	done   chan struct{}
	result kont.Either[error, R]
}

// newFuture returns an incomplete future.
func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// complete publishes the outcome and unblocks all waiters. Called exactly
// once, by the dispatching goroutine.
func (f *Future[R]) complete(r kont.Either[error, R]) {
	f.result = r
	close(f.done)
}

// Done returns a channel closed when the future completes, for use in
// select statements.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future completes or ctx is cancelled. Cancellation
// abandons the wait only: the dispatch keeps running and the future still
// completes.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
	if err, ok := f.result.GetLeft(); ok {
		var zero R
		return zero, err
	}
	r, _ := f.result.GetRight()
	return r, nil
}

// Result blocks until completion and returns the outcome as an Either.
func (f *Future[R]) Result() kont.Either[error, R] {
	<-f.done
	return f.result
}

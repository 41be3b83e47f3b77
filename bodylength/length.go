// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package bodylength

import "context"

// Length is the eventual result of measuring a Body.  It resolves exactly once.
type Length struct {
	done chan struct{}
	n    int64
	ok   bool
	err  error
}

func newLength() *Length {
	return &Length{
		done: make(chan struct{}),
	}
}

// resolved produces a Length that is already complete
func resolved(n int64, ok bool) *Length {
	l := newLength()
	l.resolve(n, ok, nil)
	return l
}

func (l *Length) resolve(n int64, ok bool, err error) {
	l.n, l.ok, l.err = n, ok, err
	close(l.done)
}

// Done returns a channel that is closed once the length is known
func (l *Length) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the length is known or the context is canceled.  The boolean result
// is false when the payload has no obtainable length.  A non-nil error is either the read
// failure encountered while measuring or the context's error.
func (l *Length) Wait(ctx context.Context) (int64, bool, error) {
	select {
	case <-l.done:
		return l.n, l.ok, l.err
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
}

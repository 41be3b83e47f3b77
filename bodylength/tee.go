// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package bodylength

import (
	"bytes"
	"io"
	"sync"
)

const drainChunkSize = 32 * 1024

// teeBranch is the caller's half of a duplicated stream.  The other half is consumed by a
// drain goroutine, which reads the source as fast as it can and queues each chunk here.
// The branch is closed when the caller is done with it, after which chunks are discarded.
type teeBranch struct {
	lock    sync.Mutex
	cond    *sync.Cond
	pending bytes.Buffer
	err     error
	closed  bool
}

func newTeeBranch() *teeBranch {
	tb := new(teeBranch)
	tb.cond = sync.NewCond(&tb.lock)
	return tb
}

func (tb *teeBranch) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	tb.lock.Lock()
	defer tb.lock.Unlock()

	for tb.pending.Len() == 0 && tb.err == nil && !tb.closed {
		tb.cond.Wait()
	}

	switch {
	case tb.pending.Len() > 0:
		return tb.pending.Read(p)
	case tb.closed:
		return 0, io.ErrClosedPipe
	default:
		return 0, tb.err
	}
}

func (tb *teeBranch) Close() error {
	tb.lock.Lock()
	tb.closed = true
	tb.pending.Reset()
	tb.lock.Unlock()

	tb.cond.Broadcast()
	return nil
}

func (tb *teeBranch) write(chunk []byte) {
	tb.lock.Lock()
	if !tb.closed {
		tb.pending.Write(chunk)
	}

	tb.lock.Unlock()
	tb.cond.Broadcast()
}

func (tb *teeBranch) finish(err error) {
	tb.lock.Lock()
	tb.err = err
	tb.lock.Unlock()
	tb.cond.Broadcast()
}

// tee splits source into a branch for the caller and a background drain that counts bytes.
// The drain does not stop early.  Once the source is exhausted it is closed, if it is
// an io.Closer, and the returned Length resolves with the total or the read error.
func tee(source io.Reader) (io.ReadCloser, *Length) {
	var (
		branch = newTeeBranch()
		length = newLength()
	)

	go func() {
		var (
			total int64
			chunk = make([]byte, drainChunkSize)
		)

		for {
			n, err := source.Read(chunk)
			if n > 0 {
				total += int64(n)
				branch.write(chunk[:n])
			}

			if err != nil {
				if c, ok := source.(io.Closer); ok {
					c.Close()
				}

				branch.finish(err)
				if err == io.EOF {
					length.resolve(total, true, nil)
				} else {
					length.resolve(total, false, err)
				}

				return
			}
		}
	}()

	return branch, length
}

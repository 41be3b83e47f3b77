// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"syscall"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// ListenerOptions configures the connection accounting applied to a server's listener
type ListenerOptions struct {
	// MaxConnections caps the number of open connections.  Connections accepted beyond
	// this limit are closed immediately.  Nonpositive values mean no limit.
	MaxConnections int

	// Rejected counts connections closed because of MaxConnections
	Rejected metrics.Counter

	// Active tracks the number of open connections
	Active metrics.Gauge

	Logger *zap.Logger
}

// NewListener decorates next with connection limiting and metrics
func NewListener(next net.Listener, o ListenerOptions) net.Listener {
	if o.Logger == nil {
		o.Logger = sallust.Default()
	}

	if o.Rejected == nil {
		o.Rejected = discard.NewCounter()
	}

	if o.Active == nil {
		o.Active = discard.NewGauge()
	}

	l := &listener{
		Listener: next,
		logger: o.Logger.With(
			zap.String("listenNetwork", next.Addr().Network()),
			zap.String("listenAddress", next.Addr().String()),
		),
		rejected: o.Rejected,
		active:   o.Active,
	}

	if o.MaxConnections > 0 {
		l.slots = make(chan struct{}, o.MaxConnections)
	}

	return l
}

type listener struct {
	net.Listener
	logger   *zap.Logger
	slots    chan struct{}
	rejected metrics.Counter
	active   metrics.Gauge
}

func (l *listener) acquire() bool {
	if l.slots != nil {
		select {
		case l.slots <- struct{}{}:
		default:
			return false
		}
	}

	l.active.Add(1.0)
	return true
}

func (l *listener) release() {
	l.active.Add(-1.0)
	if l.slots != nil {
		<-l.slots
	}
}

// Accept returns the next connection that fits under the connection limit
func (l *listener) Accept() (net.Conn, error) {
	for {
		c, err := l.Listener.Accept()
		if err != nil {
			var errno syscall.Errno
			if errors.As(err, &errno) {
				l.logger.Error("failed to accept connection", zap.Error(err), zap.String("sysValue", "0x"+strconv.FormatInt(int64(errno), 16)))
				if errno == syscall.ENFILE {
					return nil, syscall.EMFILE
				}
			} else if !errors.Is(err, net.ErrClosed) {
				l.logger.Error("failed to accept connection", zap.Error(err))
			}

			return nil, err
		}

		if !l.acquire() {
			l.logger.Warn("rejected connection", zap.Stringer("remoteAddress", c.RemoteAddr()))
			l.rejected.Add(1.0)
			c.Close()
			continue
		}

		l.logger.Debug("accepted connection", zap.Stringer("remoteAddress", c.RemoteAddr()))
		return &conn{Conn: c, release: l.release}, nil
	}
}

// conn releases its listener slot exactly once, on the first Close
type conn struct {
	net.Conn
	releaseOnce sync.Once
	release     func()
}

func (c *conn) Close() error {
	err := c.Conn.Close()
	c.releaseOnce.Do(c.release)
	return err
}

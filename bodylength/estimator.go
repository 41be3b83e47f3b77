// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package bodylength

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/resourcetiming/logging"
	"github.com/xmidt-org/resourcetiming/xhttp"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	KindLabel    = "kind"
	OutcomeLabel = "outcome"

	// OutcomeImmediate means the length was known without reading anything
	OutcomeImmediate = "immediate"

	// OutcomeDeferred means the length will be known once a copy of the payload is read
	OutcomeDeferred = "deferred"

	// OutcomeUnavailable means no length can be obtained for the payload
	OutcomeUnavailable = "unavailable"
)

// Option configures an Estimator
type Option func(*Estimator)

// WithLogger sets the fallback logger.  A nil logger does nothing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTeeStreams controls whether Stream bodies are duplicated so they can be measured.
// When disabled, streams are passed through untouched and have no length.
func WithTeeStreams(tee bool) Option {
	return func(e *Estimator) {
		e.teeStreams = tee
	}
}

// WithEstimates sets the counter incremented with a KindLabel and an OutcomeLabel for
// each estimate.  A nil counter does nothing.
func WithEstimates(c metrics.Counter) Option {
	return func(e *Estimator) {
		if c != nil {
			e.estimates = c
		}
	}
}

// Estimator measures request payloads.  An Estimator is safe for concurrent use.
type Estimator struct {
	logger     *zap.Logger
	teeStreams bool
	estimates  metrics.Counter
}

// New constructs an Estimator.  Stream duplication is enabled by default.
func New(o ...Option) *Estimator {
	e := &Estimator{
		logger:     sallust.Default(),
		teeStreams: true,
		estimates:  discard.NewCounter(),
	}

	for _, option := range o {
		option(e)
	}

	return e
}

// getLogger prefers a logger carried by the context, so that request-scoped fields appear
// in warnings
func (e *Estimator) getLogger(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, e.logger)
}

// Estimate measures body.  The returned Body must be used in place of the one passed in,
// since measuring a Stream replaces its reader with an independent branch.  Measuring a
// Request may buffer its body so that it can be read twice.
//
// The context only supplies a logger.  Background reads always run to completion.
func (e *Estimator) Estimate(ctx context.Context, body Body) (Body, *Length) {
	if body == nil {
		body = NoBody{}
	}

	next, length, outcome := e.estimate(ctx, body)
	e.estimates.With(KindLabel, string(body.Kind()), OutcomeLabel, outcome).Add(1)
	return next, length
}

func (e *Estimator) estimate(ctx context.Context, body Body) (Body, *Length, string) {
	switch b := body.(type) {
	case NoBody:
		return b, resolved(0, false), OutcomeUnavailable

	case String:
		return b, resolved(int64(len(b)), true), OutcomeImmediate

	case Bytes:
		return b, resolved(int64(len(b)), true), OutcomeImmediate

	case Blob:
		return b, resolved(b.Size, true), OutcomeImmediate

	case Form:
		var n int64
		for _, field := range b {
			n += field.length()
		}

		return b, resolved(n, true), OutcomeImmediate

	case Values:
		return b, resolved(int64(len(url.Values(b).Encode())), true), OutcomeImmediate

	case Document:
		return b, resolved(renderedLength(b.Node), true), OutcomeImmediate

	case Stream:
		if b.Reader == nil {
			return NoBody{}, resolved(0, false), OutcomeUnavailable
		}

		if !e.teeStreams {
			e.getLogger(ctx).Debug("stream bodies are not duplicated, so the request length is unavailable")
			return b, resolved(0, false), OutcomeUnavailable
		}

		branch, length := tee(b.Reader)
		return Stream{Reader: branch}, length, OutcomeDeferred

	case Request:
		return e.estimateRequest(ctx, b)

	default:
		e.getLogger(ctx).Warn(
			"unable to determine the length of the request body",
			zap.String(KindLabel, string(body.Kind())),
		)

		return body, resolved(0, true), OutcomeImmediate
	}
}

func (e *Estimator) estimateRequest(ctx context.Context, b Request) (Body, *Length, string) {
	r := b.Request
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return b, resolved(0, false), OutcomeUnavailable
	}

	if err := xhttp.EnsureRewindable(r); err != nil {
		e.getLogger(ctx).Error("unable to buffer request body", zap.Error(err))
		l := newLength()
		l.resolve(0, false, err)
		return b, l, OutcomeUnavailable
	}

	if r.GetBody == nil {
		// EnsureRewindable leaves bodiless requests alone
		return b, resolved(0, false), OutcomeUnavailable
	}

	clone, err := r.GetBody()
	if err != nil {
		l := newLength()
		l.resolve(0, false, err)
		return b, l, OutcomeUnavailable
	}

	length := newLength()
	go func() {
		defer clone.Close()
		n, err := io.Copy(io.Discard, clone)
		length.resolve(n, err == nil, err)
	}()

	return b, length, OutcomeDeferred
}

type countingWriter int64

func (cw *countingWriter) Write(p []byte) (int, error) {
	*cw += countingWriter(len(p))
	return len(p), nil
}

func renderedLength(n *html.Node) int64 {
	if n == nil {
		return 0
	}

	var cw countingWriter
	if err := html.Render(&cw, n); err != nil {
		return 0
	}

	return int64(cw)
}

// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/ugorji/go/codec"
	"github.com/xmidt-org/resourcetiming/xhttp"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const DefaultStatDumpInterval = time.Minute

// statsHandle emits stats with their keys in order
var statsHandle = &codec.JsonHandle{
	BasicHandle: codec.BasicHandle{
		EncodeOptions: codec.EncodeOptions{Canonical: true},
	},
}

// StatsListener receives a copy of the Stats at regular intervals
type StatsListener interface {
	OnStats(Stats)
}

// StatsListenerFunc is a function type that implements StatsListener
type StatsListenerFunc func(Stats)

func (f StatsListenerFunc) OnStats(stats Stats) {
	f(stats)
}

// Health tracks statistics for the service and serves them.  Every change to the
// statistics runs on a single goroutine, started by Run.
type Health struct {
	stats            Stats
	statDumpInterval time.Duration
	logger           *zap.Logger
	event            chan HealthFunc
	done             chan struct{}
	statsListeners   []StatsListener
	memInfoReader    *MemInfoReader
	runOnce          sync.Once
	closeOnce        sync.Once
}

// New creates a Health with the common stats plus any options.  A nonpositive interval
// means DefaultStatDumpInterval, and a nil logger means sallust.Default().
func New(interval time.Duration, logger *zap.Logger, options ...Option) *Health {
	if interval <= 0 {
		interval = DefaultStatDumpInterval
	}

	if logger == nil {
		logger = sallust.Default()
	}

	initialStats := commonStats.Clone()
	initialStats.Apply(options...)

	return &Health{
		stats:            initialStats,
		statDumpInterval: interval,
		logger:           logger,
		event:            make(chan HealthFunc, 100),
		done:             make(chan struct{}),
		memInfoReader:    &MemInfoReader{},
	}
}

// AddStatsListener registers a listener.  It takes effect once the event is processed.
func (h *Health) AddStatsListener(listener StatsListener) {
	h.SendEvent(func(Stats) {
		h.statsListeners = append(h.statsListeners, listener)
	})
}

// SendEvent queues a HealthFunc.  Events sent after Close are dropped.
func (h *Health) SendEvent(healthFunc HealthFunc) {
	select {
	case h.event <- healthFunc:
	case <-h.done:
	}
}

// Close stops the event loop.  It is idempotent.
func (h *Health) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
	})

	return nil
}

// Run starts the event loop.  Only the first call has any effect.
func (h *Health) Run(waitGroup *sync.WaitGroup) {
	h.runOnce.Do(func() {
		h.logger.Debug("health monitor started")

		waitGroup.Add(1)
		go func() {
			ticker := time.NewTicker(h.statDumpInterval)

			defer waitGroup.Done()
			defer h.logger.Debug("health monitor stopped")
			defer ticker.Stop()

			for {
				select {
				case <-h.done:
					return

				case hf := <-h.event:
					hf(h.stats)

				case <-ticker.C:
					h.stats.UpdateMemory(h.memInfoReader)
					dispatchStats := h.stats.Clone()
					for _, listener := range h.statsListeners {
						listener.OnStats(dispatchStats)
					}
				}
			}
		}()
	})
}

// Snapshot returns a copy of the current stats, or nil if the Health is closed first
func (h *Health) Snapshot() Stats {
	snapshot := make(chan Stats, 1)
	h.SendEvent(func(stats Stats) {
		stats.UpdateMemory(h.memInfoReader)
		snapshot <- stats.Clone()
	})

	select {
	case s := <-snapshot:
		return s
	case <-h.done:
		return nil
	}
}

func (h *Health) ServeHTTP(response http.ResponseWriter, request *http.Request) {
	stats := h.Snapshot()
	if stats == nil {
		xhttp.WriteErrorf(response, http.StatusServiceUnavailable, "Health monitor is not running")
		return
	}

	var buffer bytes.Buffer
	if err := codec.NewEncoder(&buffer, statsHandle).Encode(stats); err != nil {
		h.logger.Error("could not encode stats", zap.Error(err))
		xhttp.WriteErrorValue(response, http.StatusInternalServerError, err)
		return
	}

	response.Header().Set("Content-Type", "application/json")
	response.Write(buffer.Bytes())
}

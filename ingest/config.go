// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"fmt"
	"time"

	"github.com/xmidt-org/resourcetiming/matcher"
	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/resourcetiming/urlx"
)

// TimingKey is the Viper subkey under which collector configuration is stored
const TimingKey = "timing"

// Config describes the collector
type Config struct {
	// Origin is the page origin assumed for reports that do not identify their page
	Origin string

	// InitiatorType is matched when a reported request does not name one
	InitiatorType string

	// IgnoreNetworkEvents records only size attributes on spans
	IgnoreNetworkEvents bool

	// IgnoreURLs lists request URLs that are never traced.  Values wrapped in slashes are
	// regular expressions.
	IgnoreURLs []string `mapstructure:"ignoreUrls"`

	// PropagateTraceHeaderCorsURLs lists the cross-origin URLs browser agents may send
	// trace headers to
	PropagateTraceHeaderCorsURLs []string `mapstructure:"propagateTraceHeaderCorsUrls"`

	MaxPages          int
	MaxEntriesPerPage int

	// TeeStreams enables measuring streamed report payloads
	TeeStreams bool

	MaxReportSize int64
	LengthWait    time.Duration
}

// DefaultConfig is the configuration used for anything left unset
func DefaultConfig() Config {
	return Config{
		InitiatorType:     matcher.DefaultInitiatorType,
		MaxPages:          DefaultMaxPages,
		MaxEntriesPerPage: perf.DefaultBufferCapacity,
		TeeStreams:        true,
		MaxReportSize:     DefaultMaxReportSize,
		LengthWait:        DefaultLengthWait,
	}
}

// Patterns parses the ignore list and the propagation allow list
func (c Config) Patterns() (ignore, propagate []urlx.Pattern, err error) {
	if ignore, err = urlx.ParsePatterns(c.IgnoreURLs...); err != nil {
		return nil, nil, fmt.Errorf("invalid ignoreUrls: %w", err)
	}

	if propagate, err = urlx.ParsePatterns(c.PropagateTraceHeaderCorsURLs...); err != nil {
		return nil, nil, fmt.Errorf("invalid propagateTraceHeaderCorsUrls: %w", err)
	}

	return ignore, propagate, nil
}

// AgentConfig is what browser agents fetch to configure their own instrumentation
type AgentConfig struct {
	InitiatorType                string   `json:"initiatorType"`
	IgnoreURLs                   []string `json:"ignoreUrls"`
	PropagateTraceHeaderCorsURLs []string `json:"propagateTraceHeaderCorsUrls"`
}

// AgentConfig returns the browser-facing subset of this configuration
func (c Config) AgentConfig() AgentConfig {
	ac := AgentConfig{
		InitiatorType:                c.InitiatorType,
		IgnoreURLs:                   c.IgnoreURLs,
		PropagateTraceHeaderCorsURLs: c.PropagateTraceHeaderCorsURLs,
	}

	if len(ac.InitiatorType) == 0 {
		ac.InitiatorType = matcher.DefaultInitiatorType
	}

	if ac.IgnoreURLs == nil {
		ac.IgnoreURLs = []string{}
	}

	if ac.PropagateTraceHeaderCorsURLs == nil {
		ac.PropagateTraceHeaderCorsURLs = []string{}
	}

	return ac
}

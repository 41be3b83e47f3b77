// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"
)

const (
	// ServerKey is the Viper subkey under which the HTTP server configuration is stored
	ServerKey = "server"

	DefaultAddress      = ":8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
	DefaultShutdown     = 15 * time.Second
)

// Config describes the HTTP server
type Config struct {
	// Address is the listen address.  DefaultAddress is used if unset.
	Address string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout bounds how long in-flight requests are given on shutdown
	ShutdownTimeout time.Duration

	// CertificateFile and KeyFile enable TLS when both are set
	CertificateFile string
	KeyFile         string

	// LogConnectionState enables debug logging of each connection state change
	LogConnectionState bool

	// MaxConnections limits open connections.  Nonpositive values mean no limit.
	MaxConnections int

	// Headers are emitted in every response, typically CORS headers for browser reports
	Headers map[string][]string

	MaxConcurrentRequests int64
	RequestTimeout        time.Duration
}

// DefaultConfig is the configuration used for anything left unset
func DefaultConfig() Config {
	return Config{
		Address:         DefaultAddress,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdown,
	}
}

// RouterOptions copies the request handling settings into o
func (c Config) RouterOptions(o RouterOptions) RouterOptions {
	o.Headers = http.Header(c.Headers)
	o.MaxConcurrentRequests = c.MaxConcurrentRequests
	o.RequestTimeout = c.RequestTimeout
	return o
}

// Secure tests if this configuration describes a TLS server
func (c Config) Secure() bool {
	return len(c.CertificateFile) > 0 && len(c.KeyFile) > 0
}

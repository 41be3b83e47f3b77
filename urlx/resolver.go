// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package urlx

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"sync"
)

var ErrNoBase = errors.New("The base URL must be absolute")

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// Resolver turns possibly relative URLs into the absolute form a browser records in its
// performance entries.  The base URL, usually the document URL of a page, is parsed lazily
// on first use.  A Resolver is safe for concurrent use.
type Resolver struct {
	rawBase string

	once   sync.Once
	base   *url.URL
	origin string
	err    error
}

// NewResolver creates a Resolver for the given document base URL
func NewResolver(base string) *Resolver {
	return &Resolver{rawBase: base}
}

func (r *Resolver) init() {
	r.once.Do(func() {
		base, err := url.Parse(r.rawBase)
		if err == nil && !base.IsAbs() {
			err = ErrNoBase
		}

		if err != nil {
			r.err = err
			return
		}

		r.base = canonicalize(base)
		r.origin = Origin(r.base)
	})
}

// Base returns the parsed base URL, or an error if the base could not be parsed
func (r *Resolver) Base() (*url.URL, error) {
	r.init()
	return r.base, r.err
}

// Origin returns the origin of the base URL, e.g. "https://app.example.com".  This is
// the empty string if the base could not be parsed.
func (r *Resolver) Origin() string {
	r.init()
	return r.origin
}

// Parse resolves raw against the base URL and returns the canonical absolute URL.
// If the base URL is unusable, raw must itself be absolute.
func (r *Resolver) Parse(raw string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}

	r.init()
	if r.base != nil {
		ref = r.base.ResolveReference(ref)
	} else if !ref.IsAbs() {
		return nil, r.err
	}

	return canonicalize(ref), nil
}

// Normalize returns the absolute form of raw.  When raw cannot be resolved, it is returned
// unchanged, which is what a browser would record for the request anyway.
func (r *Resolver) Normalize(raw string) string {
	u, err := r.Parse(raw)
	if err != nil {
		return raw
	}

	return u.String()
}

// SameOrigin tests if raw, once resolved, has the same origin as the base URL
func (r *Resolver) SameOrigin(raw string) bool {
	u, err := r.Parse(raw)
	if err != nil {
		return false
	}

	origin := r.Origin()
	return len(origin) > 0 && Origin(u) == origin
}

// Origin computes the serialized origin of an absolute URL: scheme, host, and any
// non-default port.
func Origin(u *url.URL) string {
	if u == nil || len(u.Scheme) == 0 || len(u.Host) == 0 {
		return ""
	}

	c := canonicalize(u)
	return c.Scheme + "://" + c.Host
}

// canonicalize applies the same normalizations browsers apply to request URLs:
// lowercase scheme and host, no default port, and a root path for hierarchical URLs.
// The returned URL is always a copy.
func canonicalize(u *url.URL) *url.URL {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)

	if host, port, err := net.SplitHostPort(c.Host); err == nil && defaultPorts[c.Scheme] == port {
		if strings.Contains(host, ":") {
			// IPv6 literal
			host = "[" + host + "]"
		}

		c.Host = host
	}

	if len(c.Host) > 0 && len(c.Path) == 0 && len(c.Opaque) == 0 {
		c.Path = "/"
	}

	return &c
}

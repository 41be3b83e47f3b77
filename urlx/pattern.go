// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package urlx

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern matches URLs either exactly or by regular expression
type Pattern struct {
	exact string
	re    *regexp.Regexp
}

// Exact produces a Pattern that only matches the given URL
func Exact(v string) Pattern {
	return Pattern{exact: v}
}

// Regexp produces a Pattern that matches any URL containing a match of re
func Regexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// ParsePattern parses a configured pattern.  Values enclosed in slashes, e.g. "/^https:\/\/api\./",
// are regular expressions.  Anything else is matched exactly.
func ParsePattern(v string) (Pattern, error) {
	if len(v) > 2 && strings.HasPrefix(v, "/") && strings.HasSuffix(v, "/") {
		re, err := regexp.Compile(v[1 : len(v)-1])
		if err != nil {
			return Pattern{}, fmt.Errorf("Invalid URL pattern %s: %w", v, err)
		}

		return Regexp(re), nil
	}

	return Exact(v), nil
}

// ParsePatterns parses each value with ParsePattern.  Any error halts parsing of subsequent values.
func ParsePatterns(values ...string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(values))
	for _, v := range values {
		p, err := ParsePattern(v)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, p)
	}

	return patterns, nil
}

// Matches tests if the given URL satisfies this pattern
func (p Pattern) Matches(u string) bool {
	if p.re != nil {
		return p.re.MatchString(u)
	}

	return u == p.exact
}

func (p Pattern) String() string {
	if p.re != nil {
		return "/" + p.re.String() + "/"
	}

	return p.exact
}

// MatchesAny tests if the URL satisfies at least one of the patterns.  This is used both for
// ignore lists and for trace header allow lists.
func MatchesAny(u string, patterns []Pattern) bool {
	for _, p := range patterns {
		if p.Matches(u) {
			return true
		}
	}

	return false
}

// ShouldPropagateTraceHeaders decides whether trace context headers may be added to a request
// for spanURL.  Requests to the resolver's own origin always receive them.  Cross-origin requests
// receive them only when allowed by one of the patterns, since an unexpected header can cause a
// CORS preflight to fail.
func ShouldPropagateTraceHeaders(r *Resolver, spanURL string, allow []Pattern) bool {
	if r.SameOrigin(spanURL) {
		return true
	}

	return MatchesAny(spanURL, allow)
}

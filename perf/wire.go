// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package perf

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"time"

	"github.com/spf13/cast"
	"github.com/ugorji/go/codec"
)

// Format indicates the wire format of a report
type Format int

const (
	JSON Format = iota
	Msgpack
)

const (
	JSONContentType    = "application/json"
	MsgpackContentType = "application/msgpack"
)

var (
	ErrMissingName       = errors.New("Entry has no name")
	ErrInvalidTimeOrigin = errors.New("Time origin must be a positive number of milliseconds since the epoch")

	// handles contains the codec.Handle for each Format, in order of the Format constants
	handles = []codec.Handle{
		&codec.JsonHandle{
			BasicHandle: codec.BasicHandle{
				TypeInfos: codec.NewTypeInfos([]string{"json"}),
			},
		},
		newMsgpackHandle(),
	}
)

func newMsgpackHandle() *codec.MsgpackHandle {
	mh := &codec.MsgpackHandle{
		BasicHandle: codec.BasicHandle{
			TypeInfos: codec.NewTypeInfos([]string{"json"}),
		},
	}

	// browsers' msgpack encoders emit str types, which should not surface as []byte
	mh.RawToString = true
	return mh
}

// handle looks up the codec.Handle for this format.  Invalid formats fall back to JSON.
func (f Format) handle() codec.Handle {
	if f >= 0 && int(f) < len(handles) {
		return handles[f]
	}

	return handles[JSON]
}

// ContentType returns the MIME type for this format
func (f Format) ContentType() string {
	if f == Msgpack {
		return MsgpackContentType
	}

	return JSONContentType
}

// FormatFromContentType determines the Format for a Content-Type header value.  An empty
// content type is treated as JSON.  The second return value is false if the media type
// is not supported.
func FormatFromContentType(contentType string) (Format, bool) {
	if len(contentType) == 0 {
		return JSON, true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return JSON, false
	}

	switch mediaType {
	case JSONContentType, "text/plain":
		// text/plain is what navigator.sendBeacon uses for string payloads
		return JSON, true
	case MsgpackContentType, "application/x-msgpack":
		return Msgpack, true
	default:
		return JSON, false
	}
}

// NewDecoder produces a ugorji Decoder for the given format
func NewDecoder(input io.Reader, f Format) *codec.Decoder {
	return codec.NewDecoder(input, f.handle())
}

// NewEncoder produces a ugorji Encoder for the given format
func NewEncoder(output io.Writer, f Format) *codec.Encoder {
	return codec.NewEncoder(output, f.handle())
}

// millisToDuration converts a DOMHighResTimeStamp-style millisecond value into a Duration
func millisToDuration(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

// TimeOrigin converts a time origin, expressed as milliseconds since the Unix epoch, into a time.Time.
// Numeric strings are accepted.
func TimeOrigin(v interface{}) (time.Time, error) {
	ms, err := cast.ToFloat64E(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimeOrigin, err)
	}

	if ms <= 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, ErrInvalidTimeOrigin
	}

	return time.Unix(0, 0).Add(millisToDuration(ms)), nil
}

// RelativeTime converts a millisecond offset from origin into an absolute time.  A nil value
// yields a zero time, which indicates the milestone was not reported.
func RelativeTime(origin time.Time, v interface{}) (time.Time, error) {
	if v == nil {
		return time.Time{}, nil
	}

	ms, err := cast.ToFloat64E(v)
	if err != nil {
		return time.Time{}, err
	}

	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("Invalid relative time: %v", v)
	}

	return origin.Add(millisToDuration(ms)), nil
}

func optionalSize(v interface{}) (*int64, error) {
	if v == nil {
		return nil, nil
	}

	s, err := cast.ToInt64E(v)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// DecodeEntry produces an Entry from the generic representation of a PerformanceResourceTiming,
// i.e. the result of calling toJSON() on it in a browser.  Timing fields are relative to origin.
func DecodeEntry(raw map[string]interface{}, origin time.Time) (*Entry, error) {
	e := &Entry{
		Name:          cast.ToString(raw["name"]),
		InitiatorType: cast.ToString(raw["initiatorType"]),
	}

	if len(e.Name) == 0 {
		return nil, ErrMissingName
	}

	fields := map[TimingName]*time.Time{
		FetchStart:            &e.FetchStart,
		DomainLookupStart:     &e.DomainLookupStart,
		DomainLookupEnd:       &e.DomainLookupEnd,
		ConnectStart:          &e.ConnectStart,
		SecureConnectionStart: &e.SecureConnectionStart,
		ConnectEnd:            &e.ConnectEnd,
		RequestStart:          &e.RequestStart,
		ResponseStart:         &e.ResponseStart,
		ResponseEnd:           &e.ResponseEnd,
	}

	for name, field := range fields {
		t, err := RelativeTime(origin, raw[string(name)])
		if err != nil {
			return nil, fmt.Errorf("Invalid %s for entry %s: %w", name, e.Name, err)
		}

		*field = t
	}

	var err error
	if e.EncodedBodySize, err = optionalSize(raw["encodedBodySize"]); err != nil {
		return nil, fmt.Errorf("Invalid encodedBodySize for entry %s: %w", e.Name, err)
	}

	if e.DecodedBodySize, err = optionalSize(raw["decodedBodySize"]); err != nil {
		return nil, fmt.Errorf("Invalid decodedBodySize for entry %s: %w", e.Name, err)
	}

	return e, nil
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// EncodeEntry produces the generic representation of an Entry, the inverse of DecodeEntry.
// Timings are milliseconds relative to origin, and absent milestones and sizes are omitted.
func EncodeEntry(e *Entry, origin time.Time) map[string]interface{} {
	raw := map[string]interface{}{
		"name":          e.Name,
		"initiatorType": e.InitiatorType,
	}

	for _, name := range Timings {
		if t := e.Timing(name); !t.IsZero() {
			raw[string(name)] = durationToMillis(t.Sub(origin))
		}
	}

	if e.EncodedBodySize != nil {
		raw["encodedBodySize"] = *e.EncodedBodySize
	}

	if e.DecodedBodySize != nil {
		raw["decodedBodySize"] = *e.DecodedBodySize
	}

	return raw
}

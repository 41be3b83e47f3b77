// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/xmidt-org/resourcetiming/bodylength"
	"github.com/xmidt-org/resourcetiming/health"
	"github.com/xmidt-org/resourcetiming/logging"
	"github.com/xmidt-org/resourcetiming/matcher"
	"github.com/xmidt-org/resourcetiming/metrics"
	"github.com/xmidt-org/resourcetiming/perf"
	"github.com/xmidt-org/resourcetiming/xhttp"
	"github.com/xmidt-org/sallust"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	ReportsPath = "/v1/reports"
	EntriesPath = "/v1/pages/{pageID}/entries"
	AgentPath   = "/v1/config"

	PageIDVariable = "pageID"

	DefaultMaxReportSize = 1 << 20
	DefaultLengthWait    = 100 * time.Millisecond
)

// HandlerOptions configures a Handler
type HandlerOptions struct {
	Store      *Store
	Correlator *Correlator

	// Estimator measures report payloads, which browsers often send without a Content-Length.
	// If nil, payload sizes are not recorded.
	Estimator *bodylength.Estimator

	// Origin is the page origin assumed for reports that carry neither an origin nor a base URL
	Origin string

	MaxReportSize int64
	LengthWait    time.Duration

	// Agent, if set, is served to browser agents at AgentPath
	Agent *AgentConfig

	// Health, if set, receives report statistics
	Health *health.Health

	Measures *metrics.Measures
	Logger   *zap.Logger
}

// ReportResponse is returned for an accepted report
type ReportResponse struct {
	PageID   string    `json:"pageId"`
	Accepted int       `json:"accepted"`
	Evicted  int       `json:"evicted"`
	Requests []Outcome `json:"requests"`
}

// EntriesQuery filters the entries listed for a page
type EntriesQuery struct {
	Name          string `schema:"name"`
	InitiatorType string `schema:"initiatorType"`
	Unconsumed    bool   `schema:"unconsumed"`
	Limit         int    `schema:"limit"`
}

func (q EntriesQuery) matches(e *perf.Entry, consumed bool) bool {
	switch {
	case len(q.Name) > 0 && e.Name != q.Name:
		return false
	case len(q.InitiatorType) > 0 && !strings.EqualFold(e.InitiatorType, q.InitiatorType):
		return false
	case q.Unconsumed && consumed:
		return false
	default:
		return true
	}
}

// EntriesResponse lists a page's buffered entries.  Timings are relative to TimeOrigin.
type EntriesResponse struct {
	PageID     string                   `json:"pageId"`
	TimeOrigin float64                  `json:"timeOrigin"`
	Entries    []map[string]interface{} `json:"entries"`
}

// Handler serves the report ingestion API
type Handler struct {
	store         *Store
	correlator    *Correlator
	estimator     *bodylength.Estimator
	origin        string
	maxReportSize int64
	lengthWait    time.Duration
	health        *health.Health
	agent         *AgentConfig
	decoder       *schema.Decoder
	measures      *metrics.Measures
	logger        *zap.Logger
}

// NewHandler constructs a Handler.  A Store is required.
func NewHandler(o HandlerOptions) *Handler {
	h := &Handler{
		store:         o.Store,
		correlator:    o.Correlator,
		estimator:     o.Estimator,
		origin:        strings.TrimSuffix(o.Origin, "/"),
		maxReportSize: o.MaxReportSize,
		lengthWait:    o.LengthWait,
		health:        o.Health,
		agent:         o.Agent,
		decoder:       schema.NewDecoder(),
		measures:      o.Measures,
		logger:        o.Logger,
	}

	h.decoder.IgnoreUnknownKeys(true)

	if h.correlator == nil {
		h.correlator = NewCorrelator(CorrelatorOptions{})
	}

	if h.maxReportSize < 1 {
		h.maxReportSize = DefaultMaxReportSize
	}

	if h.lengthWait <= 0 {
		h.lengthWait = DefaultLengthWait
	}

	if h.measures == nil {
		h.measures = metrics.NewDiscardMeasures()
	}

	if h.logger == nil {
		h.logger = sallust.Default()
	}

	return h
}

// Register adds this handler's routes
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc(ReportsPath, h.ServeReport).Methods(http.MethodPost)
	router.HandleFunc(EntriesPath, h.ServeEntries).Methods(http.MethodGet)
	if h.agent != nil {
		router.HandleFunc(AgentPath, h.ServeAgentConfig).Methods(http.MethodGet)
	}
}

func (h *Handler) sendEvent(f health.HealthFunc) {
	if h.health != nil {
		h.health.SendEvent(f)
	}
}

func (h *Handler) base(r *Report) string {
	if base := r.Base(); len(base) > 0 {
		return base
	}

	if len(h.origin) > 0 {
		return h.origin + "/"
	}

	return ""
}

// readReport decodes the request payload, measuring it along the way when an Estimator is set
func (h *Handler) readReport(ctx context.Context, request *http.Request, f perf.Format) (*Report, error) {
	// no ResponseWriter, as the body may be drained on another goroutine
	var body io.Reader = http.MaxBytesReader(nil, request.Body, h.maxReportSize)
	if h.estimator == nil {
		return DecodeReport(body, f)
	}

	measured, length := h.estimator.Estimate(ctx, bodylength.Stream{Reader: body})
	if s, ok := measured.(bodylength.Stream); ok {
		body = s.Reader
	}

	report, err := DecodeReport(body, f)
	if c, ok := body.(io.Closer); ok {
		c.Close()
	}

	if err == nil {
		h.recordLength(ctx, length)
	}

	return report, err
}

func (h *Handler) recordLength(ctx context.Context, length *bodylength.Length) {
	waitCtx, cancel := context.WithTimeout(ctx, h.lengthWait)
	defer cancel()

	n, ok, err := length.Wait(waitCtx)
	switch {
	case err != nil:
		logging.FromContext(ctx, h.logger).Debug("report length unavailable", zap.Error(err))
	case ok:
		trace.SpanFromContext(ctx).SetAttributes(semconv.HTTPRequestContentLengthKey.Int64(n))
	}
}

// ServeReport accepts a page report
func (h *Handler) ServeReport(response http.ResponseWriter, request *http.Request) {
	var (
		ctx    = request.Context()
		logger = logging.FromContext(ctx, h.logger)
	)

	f, ok := perf.FormatFromContentType(request.Header.Get("Content-Type"))
	if !ok {
		h.sendEvent(health.Inc(health.ReportsRejected, 1))
		xhttp.WriteErrorf(response, http.StatusUnsupportedMediaType, "Unsupported content type: %s", request.Header.Get("Content-Type"))
		return
	}

	if request.ContentLength > h.maxReportSize {
		h.sendEvent(health.Inc(health.ReportsRejected, 1))
		xhttp.WriteErrorf(response, http.StatusRequestEntityTooLarge, "Reports cannot exceed %d bytes", h.maxReportSize)
		return
	}

	report, err := h.readReport(ctx, request, f)
	if err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}

		logger.Debug("invalid report", zap.Error(err))
		h.sendEvent(health.Inc(health.ReportsRejected, 1))
		xhttp.WriteErrorValue(response, code, err)
		return
	}

	session := h.store.Load(report.PageID, h.base(report), report.TimeOrigin)
	evicted := session.AddEntries(report.Entries...)
	h.measures.EntriesReceived.Add(float64(len(report.Entries)))

	outcomes := h.correlator.Correlate(ctx, session, report.Requests)
	matched := 0
	for _, o := range outcomes {
		if o.Outcome != matcher.OutcomeNone && o.Outcome != OutcomeIgnored {
			matched++
		}
	}

	h.sendEvent(health.Options(
		health.Inc(health.ReportsAccepted, 1),
		health.Inc(health.EntriesReceived, len(report.Entries)),
		health.Inc(health.RequestsCorrelated, len(report.Requests)),
		health.Inc(health.RequestsMatched, matched),
	))

	logger.Debug(
		"report accepted",
		zap.String("pageID", report.PageID),
		zap.Int("entries", len(report.Entries)),
		zap.Int("requests", len(report.Requests)),
		zap.Int("matched", matched),
		zap.Int("evicted", evicted),
	)

	h.write(response, http.StatusAccepted, f, ReportResponse{
		PageID:   report.PageID,
		Accepted: len(report.Entries),
		Evicted:  evicted,
		Requests: outcomes,
	})
}

// ServeEntries lists the entries buffered for a page
func (h *Handler) ServeEntries(response http.ResponseWriter, request *http.Request) {
	pageID := mux.Vars(request)[PageIDVariable]
	session, ok := h.store.Get(pageID)
	if !ok {
		xhttp.WriteErrorf(response, http.StatusNotFound, "No such page: %s", pageID)
		return
	}

	var query EntriesQuery
	if err := h.decoder.Decode(&query, request.URL.Query()); err != nil {
		xhttp.WriteErrorf(response, http.StatusBadRequest, "Invalid query: %s", err)
		return
	}

	var (
		origin  = session.TimeOrigin()
		entries = session.Select(query.matches)
		body    = EntriesResponse{
			PageID:     pageID,
			TimeOrigin: float64(origin.UnixNano()) / float64(time.Millisecond),
			Entries:    make([]map[string]interface{}, 0, len(entries)),
		}
	)

	if query.Limit > 0 && len(entries) > query.Limit {
		// the most recent entries are the interesting ones
		entries = entries[len(entries)-query.Limit:]
	}

	for _, e := range entries {
		raw := perf.EncodeEntry(e, origin)
		raw["consumed"] = session.Consumed(e)
		body.Entries = append(body.Entries, raw)
	}

	h.write(response, http.StatusOK, acceptFormat(request), body)
}

// ServeAgentConfig returns the browser agent configuration
func (h *Handler) ServeAgentConfig(response http.ResponseWriter, request *http.Request) {
	h.write(response, http.StatusOK, acceptFormat(request), h.agent)
}

func acceptFormat(request *http.Request) perf.Format {
	if f, ok := perf.FormatFromContentType(request.Header.Get("Accept")); ok {
		return f
	}

	return perf.JSON
}

func (h *Handler) write(response http.ResponseWriter, code int, f perf.Format, v interface{}) {
	var buffer bytes.Buffer
	if err := perf.NewEncoder(&buffer, f).Encode(v); err != nil {
		xhttp.WriteErrorValue(response, http.StatusInternalServerError, err)
		return
	}

	response.Header().Set("Content-Type", f.ContentType())
	response.WriteHeader(code)
	response.Write(buffer.Bytes())
}

// Package actionlog records user-action and error events for audit.
//
// Events are echoed to the local structured logger and, when enabled,
// delivered to the backend log endpoints through a bounded queue drained by a
// background worker. Delivery is fire-and-forget: a full queue drops the
// event and a failed POST is only visible at debug level. Logging never
// blocks or fails the caller.
package actionlog

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultActionsPath = "/logs/user-actions"
	defaultErrorsPath  = "/logs/errors"
	defaultQueueSize   = 256
)

// Details carries free-form event context. Values are JSON-encoded; passwords
// must never be included.
type Details map[string]any

// StreamConfig switches one log stream on or off per destination.
type StreamConfig struct {
	Enabled bool
	Console bool
	Server  bool
}

// Config holds the logger configuration.
type Config struct {
	// BaseURL is the API base the log paths are appended to.
	BaseURL     string
	ActionsPath string
	ErrorsPath  string
	Actions     StreamConfig
	Errors      StreamConfig
	QueueSize   int
}

// Logger is the process-wide action/error event sink.
type Logger struct {
	lg     *zap.Logger
	client *http.Client
	cfg    Config

	sessionID string
	userID    atomic.Value // string

	queue chan event
}

type event struct {
	url  string
	body []byte
}

// New creates a Logger with a fresh session id. Run must be started for
// server delivery to happen.
func New(lg *zap.Logger, client *http.Client, cfg Config) *Logger {
	if cfg.ActionsPath == "" {
		cfg.ActionsPath = defaultActionsPath
	}
	if cfg.ErrorsPath == "" {
		cfg.ErrorsPath = defaultErrorsPath
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	l := &Logger{
		lg:        lg,
		client:    client,
		cfg:       cfg,
		sessionID: uuid.New().String(),
		queue:     make(chan event, cfg.QueueSize),
	}
	l.userID.Store("")
	return l
}

// SessionID returns the per-process session identifier.
func (l *Logger) SessionID() string { return l.sessionID }

// SetUserID binds subsequent events to the given user id. An empty id clears
// the binding (signed-out state).
func (l *Logger) SetUserID(id string) { l.userID.Store(id) }

// Action records a user-action event.
func (l *Logger) Action(action string, details Details) {
	if !l.cfg.Actions.Enabled {
		return
	}

	if l.cfg.Actions.Console {
		l.lg.Info("user action",
			zap.String("action", action),
			zap.Any("details", details),
			zap.String("sessionId", l.sessionID),
		)
	}

	if l.cfg.Actions.Server {
		l.enqueue(l.cfg.BaseURL+l.cfg.ActionsPath, l.actionBody(action, details))
	}
}

// Error records an application error event with the attempted operation as
// its source tag.
func (l *Logger) Error(err error, source string, details Details) {
	if !l.cfg.Errors.Enabled {
		return
	}

	if l.cfg.Errors.Console {
		l.lg.Error("application error",
			zap.String("source", source),
			zap.Error(err),
			zap.Any("details", details),
			zap.String("sessionId", l.sessionID),
		)
	}

	if l.cfg.Errors.Server {
		l.enqueue(l.cfg.BaseURL+l.cfg.ErrorsPath, l.errorBody(err, source, details))
	}
}

// Run drains the delivery queue until ctx is cancelled. Intended to be
// started once, typically under an errgroup. It always returns nil.
func (l *Logger) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-l.queue:
			l.deliver(ctx, ev)
		}
	}
}

func (l *Logger) enqueue(url string, body []byte) {
	select {
	case l.queue <- event{url: url, body: body}:
	default:
		// Queue full: drop rather than block the caller.
		l.lg.Debug("log queue full, dropping event", zap.String("url", url))
	}
}

func (l *Logger) deliver(ctx context.Context, ev event) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ev.url, bytes.NewReader(ev.body))
	if err != nil {
		l.lg.Debug("build log request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.lg.Debug("deliver log event", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}

func (l *Logger) actionBody(action string, details Details) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("timestamp")
	e.Str(time.Now().UTC().Format(time.RFC3339))
	e.FieldStart("action")
	e.Str(action)
	e.FieldStart("details")
	encodeDetails(&e, details)
	l.encodeIdentity(&e)
	e.ObjEnd()
	return e.Bytes()
}

func (l *Logger) errorBody(err error, source string, details Details) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("timestamp")
	e.Str(time.Now().UTC().Format(time.RFC3339))
	e.FieldStart("message")
	e.Str(err.Error())
	e.FieldStart("stack")
	// go-faster/errors renders the wrap chain (and recorded stack traces,
	// when enabled) through the verbose format verb.
	e.Str(fmt.Sprintf("%+v", err))
	e.FieldStart("source")
	e.Str(source)
	e.FieldStart("details")
	encodeDetails(&e, details)
	l.encodeIdentity(&e)
	e.ObjEnd()
	return e.Bytes()
}

func (l *Logger) encodeIdentity(e *jx.Encoder) {
	e.FieldStart("userId")
	if id, _ := l.userID.Load().(string); id != "" {
		e.Str(id)
	} else {
		e.Null()
	}
	e.FieldStart("sessionId")
	e.Str(l.sessionID)
}

// encodeDetails writes the details map with sorted keys so payloads are
// stable for a given event.
func encodeDetails(e *jx.Encoder, details Details) {
	e.ObjStart()
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.FieldStart(k)
		encodeValue(e, details[k])
	}
	e.ObjEnd()
}

func encodeValue(e *jx.Encoder, v any) {
	switch val := v.(type) {
	case nil:
		e.Null()
	case string:
		e.Str(val)
	case bool:
		e.Bool(val)
	case int:
		e.Int(val)
	case int64:
		e.Int64(val)
	case float64:
		e.Float64(val)
	case decimal.Decimal:
		e.Float64(val.InexactFloat64())
	case fmt.Stringer:
		e.Str(val.String())
	default:
		e.Str(fmt.Sprint(val))
	}
}

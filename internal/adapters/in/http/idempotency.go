package http

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"orderflow/internal/core/domain/model/idempotency"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"
)

const defaultPollInterval = 50 * time.Millisecond

// storedResponse is what a completed request leaves behind for replays.
type storedResponse struct {
	status      int
	contentType string
	body        []byte
}

// Idempotency makes mutating requests that carry an Idempotency-Key safe to
// retry. Within this process concurrent requests for one key share a single
// execution; across processes the store's pending record makes latecomers
// wait for the owner's result. Only 2xx outcomes are stored; a failed
// attempt releases the key so the client may try again.
type Idempotency struct {
	store  ports.IdempotencyStore
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
	flight singleflight.Group
	logger *slog.Logger
}

func NewIdempotency(store ports.IdempotencyStore, ttl, wait time.Duration, logger *slog.Logger) *Idempotency {
	return &Idempotency{
		store:  store,
		ttl:    ttl,
		wait:   wait,
		poll:   defaultPollInterval,
		logger: logger.With("component", "idempotency"),
	}
}

func (m *Idempotency) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(headerIdempotencyKey)
		if raw == "" {
			return next(c)
		}

		token, err := idempotency.ParseToken(raw)
		if err != nil {
			return err
		}
		tenant, err := tenantParam(c)
		if err != nil {
			return err
		}
		key := idempotency.Key{
			Tenant: tenant,
			Route:  c.Request().Method + " " + c.Request().URL.Path,
			Token:  token,
		}

		owner := false
		v, err, _ := m.flight.Do(key.String(), func() (any, error) {
			owner = true
			return m.execute(c, next, key)
		})
		if owner || err != nil {
			return err
		}
		return replay(c, v.(storedResponse))
	}
}

// execute runs on behalf of every in-process caller of key. It writes the
// owner's response; the returned value lets the other callers replay it.
func (m *Idempotency) execute(c echo.Context, next echo.HandlerFunc, key idempotency.Key) (storedResponse, error) {
	ctx := c.Request().Context()
	deadline := time.Now().Add(m.wait)

	for {
		rec, claimed, err := m.store.Claim(ctx, key, m.ttl)
		if err != nil {
			return storedResponse{}, err
		}
		if claimed {
			return m.run(c, next, key)
		}
		if rec.IsCompleted() {
			stored := fromRecord(rec)
			return stored, replay(c, stored)
		}

		// Another process owns the key; wait for its outcome.
		rec, err = m.awaitCompletion(ctx, key, deadline)
		switch {
		case err == nil:
			stored := fromRecord(rec)
			return stored, replay(c, stored)
		case errors.Is(err, errs.ErrObjectNotFound):
			// The owner gave up and released the key; try to take it over.
			continue
		default:
			return storedResponse{}, err
		}
	}
}

func (m *Idempotency) awaitCompletion(
	ctx context.Context,
	key idempotency.Key,
	deadline time.Time,
) (idempotency.Record, error) {
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		if !time.Now().Before(deadline) {
			return idempotency.Record{}, errs.NewConflictError("request with this idempotency key is still in progress")
		}

		select {
		case <-ctx.Done():
			return idempotency.Record{}, ctx.Err()
		case <-ticker.C:
		}

		rec, err := m.store.Find(ctx, key)
		if err != nil {
			return idempotency.Record{}, err
		}
		if rec.IsCompleted() {
			return rec, nil
		}
	}
}

func (m *Idempotency) run(c echo.Context, next echo.HandlerFunc, key idempotency.Key) (storedResponse, error) {
	res := c.Response()
	capture := &captureWriter{ResponseWriter: res.Writer}
	res.Writer = capture

	handlerErr := next(c)
	res.Writer = capture.ResponseWriter

	// The request may be cancelled right after the handler committed; the
	// bookkeeping still has to land.
	ctx := context.WithoutCancel(c.Request().Context())

	if handlerErr != nil || res.Status < 200 || res.Status >= 300 {
		if err := m.store.Release(ctx, key); err != nil {
			m.logger.WarnContext(ctx, "releasing idempotency key", "key", key.String(), "error", err)
		}
		return storedResponse{}, handlerErr
	}

	stored := storedResponse{
		status:      res.Status,
		contentType: res.Header().Get(echo.HeaderContentType),
		body:        capture.body.Bytes(),
	}
	if err := m.store.Complete(ctx, key, stored.status, stored.contentType, stored.body); err != nil {
		m.logger.ErrorContext(ctx, "storing idempotent response", "key", key.String(), "error", err)
	}
	return stored, nil
}

func fromRecord(rec idempotency.Record) storedResponse {
	return storedResponse{status: rec.StatusCode, contentType: rec.ContentType, body: rec.Body}
}

func replay(c echo.Context, stored storedResponse) error {
	c.Response().Header().Set(headerReplay, "true")
	return c.Blob(stored.status, stored.contentType, stored.body)
}

// captureWriter tees the response body into a buffer.
type captureWriter struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *captureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *captureWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

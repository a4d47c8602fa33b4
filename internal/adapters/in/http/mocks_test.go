package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"orderflow/internal/adapters/in/realtime"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/idempotency"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

type MockOrderCreator struct{ mock.Mock }

func (m *MockOrderCreator) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (kernel.UUID, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockBatchIngester struct{ mock.Mock }

func (m *MockBatchIngester) Handle(ctx context.Context, cmd commands.IngestBatchCommand) ([]commands.BatchResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).([]commands.BatchResult), args.Error(1)
}

type MockOrderTransitioner struct{ mock.Mock }

func (m *MockOrderTransitioner) Handle(
	ctx context.Context,
	cmd commands.TransitionOrderCommand,
) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockItemTransitioner struct{ mock.Mock }

func (m *MockItemTransitioner) Handle(
	ctx context.Context,
	cmd commands.TransitionItemCommand,
) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockActiveOrdersReader struct{ mock.Mock }

func (m *MockActiveOrdersReader) Handle(
	ctx context.Context,
	query queries.GetActiveOrdersQuery,
) ([]queries.ActiveOrderView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.ActiveOrderView), args.Error(1)
}

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.OrderView), args.Error(1)
}

type MockResourceResolver struct{ mock.Mock }

func (m *MockResourceResolver) ResolveResource(
	ctx context.Context,
	tenant kernel.TenantID,
	token string,
) (menu.Resource, error) {
	args := m.Called(ctx, tenant, token)
	return args.Get(0).(menu.Resource), args.Error(1)
}

type MockAbuseChecker struct{ mock.Mock }

func (m *MockAbuseChecker) Check(tenant kernel.TenantID, source kernel.Source) error {
	args := m.Called(tenant, source)
	return args.Error(0)
}

// stubWebSocket answers instead of upgrading and records what it was given.
type stubWebSocket struct {
	tenant     kernel.TenantID
	resourceID kernel.UUID
}

func (s *stubWebSocket) Serve(
	w http.ResponseWriter,
	_ *http.Request,
	tenant kernel.TenantID,
	resourceID kernel.UUID,
	_ string,
) error {
	s.tenant = tenant
	s.resourceID = resourceID
	w.WriteHeader(http.StatusAccepted)
	return nil
}

// stubEventStream writes the snapshot as a single JSON body.
type stubEventStream struct {
	lastEventID uint64
}

func (s *stubEventStream) Serve(
	w http.ResponseWriter,
	r *http.Request,
	_ kernel.TenantID,
	_ string,
	lastEventID uint64,
	snapshot realtime.SnapshotFunc,
) error {
	s.lastEventID = lastEventID
	body, err := snapshot(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, body)
}

// memStore is an in-process IdempotencyStore.
type memStore struct {
	mu      sync.Mutex
	records map[string]idempotency.Record
	claims  int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]idempotency.Record)}
}

func (s *memStore) Claim(
	_ context.Context,
	key idempotency.Key,
	ttl time.Duration,
) (idempotency.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key.String()]; ok && !rec.IsExpired(time.Now()) {
		return rec, false, nil
	}
	rec := idempotency.Record{Key: key, State: idempotency.Pending, ExpiresAt: time.Now().Add(ttl)}
	s.records[key.String()] = rec
	s.claims++
	return rec, true, nil
}

func (s *memStore) Complete(
	_ context.Context,
	key idempotency.Key,
	statusCode int,
	contentType string,
	body []byte,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key.String()]
	if !ok || rec.State != idempotency.Pending {
		return errs.NewObjectNotFoundError("idempotency key", key.String())
	}
	rec.State = idempotency.Completed
	rec.StatusCode = statusCode
	rec.ContentType = contentType
	rec.Body = append([]byte(nil), body...)
	s.records[key.String()] = rec
	return nil
}

func (s *memStore) Release(_ context.Context, key idempotency.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key.String()]; ok && rec.State == idempotency.Pending {
		delete(s.records, key.String())
	}
	return nil
}

func (s *memStore) Find(_ context.Context, key idempotency.Key) (idempotency.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key.String()]
	if !ok {
		return idempotency.Record{}, errs.NewObjectNotFoundError("idempotency key", key.String())
	}
	return rec, nil
}

func (s *memStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *memStore) put(rec idempotency.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key.String()] = rec
}

func (s *memStore) claimCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

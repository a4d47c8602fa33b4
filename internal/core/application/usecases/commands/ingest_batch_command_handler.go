package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
)

// BatchResult reports the outcome of one batch entry. Exactly one of
// OrderID and Err is set. Duplicate reports whether the entry repeated an
// op id seen earlier in the same batch.
type BatchResult struct {
	OpID      string
	OrderID   *kernel.UUID
	Err       error
	Duplicate bool
}

// OrderCreator admits a single order.
type OrderCreator interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (kernel.UUID, error)
}

// IngestBatchCommandHandler admits each distinct op id of a batch once, in
// its own transaction, so one bad entry does not sink the rest. Repeated op
// ids inside the batch get the result of their first occurrence.
type IngestBatchCommandHandler struct {
	creator OrderCreator
	logger  *slog.Logger
}

func NewIngestBatchCommandHandler(creator OrderCreator, logger *slog.Logger) IngestBatchCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return IngestBatchCommandHandler{
		creator: creator,
		logger:  logger.With("component", "ingest_batch_handler"),
	}
}

// Handle returns one result per entry, in request order.
func (h IngestBatchCommandHandler) Handle(ctx context.Context, cmd IngestBatchCommand) ([]BatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	entries := cmd.Entries()
	results := make([]BatchResult, len(entries))
	first := make(map[string]int, len(entries))

	for i, entry := range entries {
		if j, seen := first[entry.OpID]; seen {
			results[i] = results[j]
			results[i].Duplicate = true
			continue
		}
		first[entry.OpID] = i
		results[i] = h.admit(ctx, cmd, entry)
	}

	return results, nil
}

func (h IngestBatchCommandHandler) admit(ctx context.Context, cmd IngestBatchCommand, entry BatchEntry) BatchResult {
	result := BatchResult{OpID: entry.OpID}

	create, err := NewCreateOrderCommand(cmd.Tenant(), cmd.ResourceToken(), cmd.Source(), entry.Lines)
	if err != nil {
		result.Err = err
		return result
	}

	id, err := h.creator.Handle(ctx, create)
	if err != nil {
		h.logger.InfoContext(ctx, "batch entry refused",
			"tenant", cmd.Tenant().String(),
			"op_id", entry.OpID,
			"error", err,
		)
		result.Err = err
		return result
	}

	result.OrderID = &id
	return result
}

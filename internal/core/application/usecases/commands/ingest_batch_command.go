package commands

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	MaxBatchSize  = 100
	MaxOpIDLength = 64
)

var ErrIngestBatchCommandIsNotConstructed = errors.New(
	"IngestBatchCommand must be created via NewIngestBatchCommand constructor",
)

// BatchEntry is one order inside a batch, tagged with a client operation id.
type BatchEntry struct {
	OpID  string
	Lines []services.LineRequest
}

// IngestBatchCommand submits several orders from one resource at once, as
// an offline device does when it reconnects.
type IngestBatchCommand struct { //nolint:recvcheck //using for validation
	tenant        kernel.TenantID
	resourceToken string
	source        kernel.Source
	entries       []BatchEntry

	guard guard.ConstructorGuard
}

func NewIngestBatchCommand(
	tenant kernel.TenantID,
	resourceToken string,
	source kernel.Source,
	entries []BatchEntry,
) (IngestBatchCommand, error) {
	cmd := IngestBatchCommand{guard: guard.NewConstructorGuard()}

	if err := tenant.Validate(); err != nil {
		return IngestBatchCommand{}, err
	}
	if strings.TrimSpace(resourceToken) == "" {
		return IngestBatchCommand{}, errs.NewValueIsRequiredError("resource token")
	}
	if source.IsZero() {
		return IngestBatchCommand{}, errs.NewValueIsRequiredError("source")
	}
	if len(entries) == 0 {
		return IngestBatchCommand{}, errs.NewValueIsRequiredError("orders")
	}
	if len(entries) > MaxBatchSize {
		return IngestBatchCommand{}, errs.NewValueIsOutOfRangeError("orders", len(entries), 1, MaxBatchSize)
	}

	var problems []error
	for i, e := range entries {
		switch {
		case e.OpID == "":
			problems = append(problems, errs.NewValueIsRequiredError(fmt.Sprintf("orders[%d].op_id", i)))
		case len(e.OpID) > MaxOpIDLength:
			problems = append(problems, errs.NewValueIsOutOfRangeError(
				fmt.Sprintf("orders[%d].op_id length", i), len(e.OpID), 1, MaxOpIDLength))
		}
	}
	if err := errors.Join(problems...); err != nil {
		return IngestBatchCommand{}, err
	}

	cmd.tenant = tenant
	cmd.resourceToken = strings.TrimSpace(resourceToken)
	cmd.source = source
	cmd.entries = make([]BatchEntry, len(entries))
	copy(cmd.entries, entries)
	return cmd, nil
}

func (c IngestBatchCommand) Validate() error {
	return c.guard.Validate(ErrIngestBatchCommandIsNotConstructed)
}

func (c IngestBatchCommand) Tenant() kernel.TenantID { return c.tenant }
func (c IngestBatchCommand) ResourceToken() string   { return c.resourceToken }
func (c IngestBatchCommand) Source() kernel.Source   { return c.source }

func (c IngestBatchCommand) Entries() []BatchEntry {
	out := make([]BatchEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

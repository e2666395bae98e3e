// Package recovery reconciles a launch whose finish was rejected by the
// backend because descendant items are still open.
//
// The backend names the open items inside its error message, e.g.
//
//	Finish launch is not allowed. Please finish items: [5b8f, 5b90]
//
// The reconciler cancels every listed item and force-stops the launch. This
// depends on the backend's wording and is a single pass, not a retry loop.
package recovery

import (
	"context"
	"strings"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"go.uber.org/zap"
)

const (
	// ErrorFinishLaunch is the backend text for a rejected launch finish
	ErrorFinishLaunch = "Finish launch is not allowed."
	// ErrorFinishTestItem is the backend text for a rejected item finish
	ErrorFinishTestItem = "Finish test item is not allowed."
	// CancelDescription is attached to every item cancelled during recovery
	CancelDescription = "Cancelled due to error."
)

// Finisher is the part of reportportal.Service the reconciler drives
type Finisher interface {
	FinishItem(ctx context.Context, itemID string, status reportportal.Status, description string) (*http.Response, error)
	ForceFinishLaunch(ctx context.Context, status reportportal.Status) (*http.Response, error)
}

type Reconciler struct {
	finisher Finisher
	logger   *zap.Logger
}

type Option func(*Reconciler)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(finisher Finisher, opts ...Option) *Reconciler {
	r := &Reconciler{
		finisher: finisher,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile inspects the response of a finish call. When the body carries a
// cascade-failure marker, every stuck item is cancelled in order, the launch
// is force-stopped with CANCELLED and false is returned. Otherwise nothing is
// sent and true is returned.
func (r *Reconciler) Reconcile(ctx context.Context, resp *http.Response) bool {
	if resp == nil || !IsCascadeFailure(resp.Body) {
		return true
	}

	items := ParseStuckItems(resp.ErrorMessage())
	r.logger.Warn("finish rejected, cancelling open items",
		zap.Int("status", resp.StatusCode),
		zap.Strings("item_ids", items))

	for _, id := range items {
		res, err := r.finisher.FinishItem(ctx, id, reportportal.StatusCancelled, CancelDescription)
		if err != nil {
			r.logger.Warn("cancelling item failed", zap.String("item_id", id), zap.Error(err))
			continue
		}
		if res != nil && !res.IsSuccess() {
			r.logger.Warn("cancelling item rejected", zap.String("item_id", id), zap.Int("status", res.StatusCode))
		}
	}

	if _, err := r.finisher.ForceFinishLaunch(ctx, reportportal.StatusCancelled); err != nil {
		r.logger.Warn("force-finishing launch failed", zap.Error(err))
	}
	return false
}

// IsCascadeFailure reports whether body carries one of the finish-rejection markers
func IsCascadeFailure(body []byte) bool {
	s := string(body)
	return strings.Contains(s, ErrorFinishLaunch) || strings.Contains(s, ErrorFinishTestItem)
}

// ParseStuckItems extracts the ids listed between the first '[' and the next
// ']' of message, split on ','. Surrounding spaces and empty entries are
// dropped. A message without a bracketed list yields no ids.
func ParseStuckItems(message string) []string {
	start := strings.IndexByte(message, '[')
	if start < 0 {
		return nil
	}
	rest := message[start+1:]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return nil
	}

	var ids []string
	for _, part := range strings.Split(rest[:end], ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

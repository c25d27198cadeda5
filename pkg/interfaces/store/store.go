package store

import (
	"context"
	"strings"
)

// TransactionManager coordinates preference and schedule writes inside a
// single transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactionManager executes callbacks immediately without persistence.
type NopTransactionManager struct{}

var _ TransactionManager = (*NopTransactionManager)(nil)

func (n *NopTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// NormalizeSubjectType folds a subject type (user, tenant, device) for
// case-insensitive comparison. Subject ids are significant as written and
// must never be folded.
func NormalizeSubjectType(subjectType string) string {
	return strings.ToLower(strings.TrimSpace(subjectType))
}

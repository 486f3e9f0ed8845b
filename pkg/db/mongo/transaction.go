package mongo

import (
	"context"
	"fmt"
	apperrors "medibook/pkg/errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionFunc runs inside a transaction. The ctx it receives is a
// mongo.SessionContext when backed by MongoDB; repositories detect that and
// leave its deadline alone.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// WithTimeout wraps ctx with a timeout unless it is a session context, which
// cannot be wrapped without breaking transaction semantics.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}

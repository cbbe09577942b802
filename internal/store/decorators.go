package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// WithTimeout bounds every call on c by d. A call that exceeds its deadline is reported
// as ErrUnavailable.
func WithTimeout(c Container, d time.Duration) Container {
	return &timeoutContainer{next: c, timeout: d}
}

type timeoutContainer struct {
	next    Container
	timeout time.Duration
}

func (t *timeoutContainer) Spec() ContainerSpec { return t.next.Spec() }

func (t *timeoutContainer) Query(ctx context.Context, q Query) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	docs, err := t.next.Query(ctx, q)
	return docs, t.wrap(ctx, "query", err)
}

func (t *timeoutContainer) Get(ctx context.Context, id, partitionKey string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	doc, err := t.next.Get(ctx, id, partitionKey)
	return doc, t.wrap(ctx, "get", err)
}

func (t *timeoutContainer) Add(ctx context.Context, doc json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.wrap(ctx, "add", t.next.Add(ctx, doc))
}

func (t *timeoutContainer) Replace(ctx context.Context, id, partitionKey string, doc json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.wrap(ctx, "replace", t.next.Replace(ctx, id, partitionKey, doc))
}

func (t *timeoutContainer) Remove(ctx context.Context, id, partitionKey string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.wrap(ctx, "remove", t.next.Remove(ctx, id, partitionKey))
}

func (t *timeoutContainer) wrap(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s exceeded %s: %v", ErrUnavailable, t.next.Spec().Name, op, t.timeout, err)
	}
	return err
}

// WithLogging logs every call on c at debug level and failures at warn level.
func WithLogging(c Container, logger *slog.Logger) Container {
	return &loggingContainer{next: c, logger: logger.With("container", c.Spec().Name)}
}

type loggingContainer struct {
	next   Container
	logger *slog.Logger
}

func (l *loggingContainer) Spec() ContainerSpec { return l.next.Spec() }

func (l *loggingContainer) Query(ctx context.Context, q Query) ([]json.RawMessage, error) {
	start := time.Now()
	docs, err := l.next.Query(ctx, q)
	l.log(ctx, "query", start, err, "filters", len(q.Filters), "results", len(docs))
	return docs, err
}

func (l *loggingContainer) Get(ctx context.Context, id, partitionKey string) (json.RawMessage, error) {
	start := time.Now()
	doc, err := l.next.Get(ctx, id, partitionKey)
	l.log(ctx, "get", start, err, "id", id, "partition_key", partitionKey)
	return doc, err
}

func (l *loggingContainer) Add(ctx context.Context, doc json.RawMessage) error {
	start := time.Now()
	err := l.next.Add(ctx, doc)
	id, partitionKey, _ := DocumentKey(l.next.Spec(), doc)
	l.log(ctx, "add", start, err, "id", id, "partition_key", partitionKey)
	return err
}

func (l *loggingContainer) Replace(ctx context.Context, id, partitionKey string, doc json.RawMessage) error {
	start := time.Now()
	err := l.next.Replace(ctx, id, partitionKey, doc)
	l.log(ctx, "replace", start, err, "id", id, "partition_key", partitionKey)
	return err
}

func (l *loggingContainer) Remove(ctx context.Context, id, partitionKey string) error {
	start := time.Now()
	err := l.next.Remove(ctx, id, partitionKey)
	l.log(ctx, "remove", start, err, "id", id, "partition_key", partitionKey)
	return err
}

func (l *loggingContainer) log(ctx context.Context, op string, start time.Time, err error, args ...any) {
	args = append(args, "op", op, "duration", time.Since(start))
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		l.logger.DebugContext(ctx, "store operation", args...)
	default:
		args = append(args, "error", err)
		l.logger.WarnContext(ctx, "store operation failed", args...)
	}
}

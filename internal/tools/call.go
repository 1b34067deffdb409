package tools

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/explorer-guide/internal/errs"
	"github.com/GregMSThompson/explorer-guide/pkg/helpers"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

// timed calls an upstream API with a timeout and a single retry on transient
// failures. Errors are logged and degrade to an empty list.
func timed[T any](ctx context.Context, tool, query string, timeout time.Duration, fn func(ctx context.Context) ([]T, error)) []T {
	log := logger.FromContext(ctx)
	start := time.Now()

	var out []T
	err := helpers.RetryOnce(ctx, timeout, errs.IsTransient, func(ctx context.Context) error {
		res, err := fn(ctx)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		log.Warn("tool call failed", "tool", tool, "query", query, "duration", elapsed, "error", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	log.Info("tool call completed", "tool", tool, "query", query, "results", len(out), "duration", elapsed)
	return out
}

func requireQuery(args map[string]any) (string, error) {
	a, err := decodeArgs[queryArgs](args)
	if err != nil {
		return "", errs.NewValidationError("query must be a string")
	}
	q := strings.TrimSpace(a.Query)
	if q == "" {
		return "", errs.NewValidationError("query is required")
	}
	return q, nil
}

package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/DataDog/go-sqllexer"
	"github.com/jackc/pgx/v5"
)

// tracer logs failed and slow queries. SQL is obfuscated and normalized
// before logging.
type tracer struct{}

var (
	obfuscator = sqllexer.NewObfuscator()
	normalizer = sqllexer.NewNormalizer()
)

type ctxKey int

const traceQueryCtxKey ctxKey = iota

type traceQueryData struct {
	startTime time.Time
	sql       string
}

const slowQueryThreshold = 200 * time.Millisecond

var _ pgx.QueryTracer = (*tracer)(nil)

func (t *tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceQueryCtxKey, &traceQueryData{
		startTime: time.Now(),
		sql:       normalize(data.SQL),
	})
}

func (t *tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	queryData, ok := ctx.Value(traceQueryCtxKey).(*traceQueryData)
	if !ok {
		return
	}
	interval := time.Since(queryData.startTime)

	if data.Err != nil {
		slog.Warn("Query failed", "sql", queryData.sql, "duration", interval, "error", data.Err)
		return
	}

	if interval > slowQueryThreshold {
		slog.Warn("Slow query", "sql", queryData.sql, "duration", interval, "tag", data.CommandTag.String())
	}
}

func normalize(sql string) string {
	normalized, _, err := normalizer.Normalize(obfuscator.Obfuscate(sql))
	if err != nil {
		slog.Debug("Failed to normalize SQL", "error", err)
		return sql
	}
	return normalized
}

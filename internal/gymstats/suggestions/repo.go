package suggestions

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Search matches catalog names containing query, prefix matches first.
func (r *Repo) Search(ctx context.Context, query string, limit int) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.suggestions.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", query))

	pattern := escapeLike(query)
	rows, err := r.db.Query(
		ctx,
		`SELECT name FROM exercise_catalog
			WHERE name ILIKE '%' || $1::text || '%'
			ORDER BY (name ILIKE $1::text || '%') DESC, name
			LIMIT $2;`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercise catalog: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan exercise name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise catalog: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(names)))
	return names, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

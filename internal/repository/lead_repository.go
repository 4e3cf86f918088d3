package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/query"
)

// LeadQuery captures one list retrieval: free-text search, compiled
// filter predicates, sort order and a page window.
type LeadQuery struct {
	Search     string
	Predicates []query.Predicate
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

// LeadRepository encapsulates lead persistence.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Update(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q LeadQuery) ([]domain.Lead, int64, error)
	Stats(ctx context.Context) (*domain.LeadStats, error)
}

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository instantiates repository.
func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &leadRepository{pool: pool}
}

const leadColumns = `l.id, l.first_name, l.last_name, l.email, l.phone, l.company, l.city, l.state,
        l.source, l.status, l.score, l.lead_value, l.is_qualified, l.created_by,
        l.last_activity_at, l.created_at, l.updated_at,
        u.first_name, u.last_name, u.email`

const leadFrom = ` FROM leads l JOIN users u ON u.id = l.created_by`

// filterColumns maps API field names to lead table columns. Only these
// columns are reachable from caller-supplied filters and sort keys.
var filterColumns = map[string]string{
	"firstName":      "l.first_name",
	"lastName":       "l.last_name",
	"email":          "l.email",
	"phone":          "l.phone",
	"company":        "l.company",
	"city":           "l.city",
	"state":          "l.state",
	"source":         "l.source",
	"status":         "l.status",
	"score":          "l.score",
	"leadValue":      "l.lead_value",
	"isQualified":    "l.is_qualified",
	"createdAt":      "l.created_at",
	"updatedAt":      "l.updated_at",
	"lastActivityAt": "l.last_activity_at",
}

var searchColumns = []string{"l.first_name", "l.last_name", "l.email", "l.company", "l.city", "l.state"}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	const q = `
        INSERT INTO leads (first_name, last_name, email, phone, company, city, state,
            source, status, score, lead_value, is_qualified, created_by, last_activity_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.City,
		lead.State,
		lead.Source,
		lead.Status,
		lead.Score,
		lead.LeadValue,
		lead.IsQualified,
		lead.CreatedBy,
		lead.LastActivityAt,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

// Update rewrites every mutable column; created_at and created_by are
// never touched.
func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	const q = `
        UPDATE leads SET first_name=$1, last_name=$2, email=$3, phone=$4, company=$5,
            city=$6, state=$7, source=$8, status=$9, score=$10, lead_value=$11,
            is_qualified=$12, last_activity_at=$13, updated_at=NOW()
        WHERE id=$14
        RETURNING created_by, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.City,
		lead.State,
		lead.Source,
		lead.Status,
		lead.Score,
		lead.LeadValue,
		lead.IsQualified,
		lead.LastActivityAt,
		lead.ID,
	).Scan(&lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	q := `SELECT ` + leadColumns + leadFrom + ` WHERE l.id=$1`
	row := r.pool.QueryRow(ctx, q, id)
	lead, err := scanLead(row)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List retrieves one page of leads plus the total match count for
// pagination.
func (r *leadRepository) List(ctx context.Context, q LeadQuery) ([]domain.Lead, int64, error) {
	where, args := buildWhere(q)

	var total int64
	countQuery := `SELECT COUNT(*)` + leadFrom + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT %s%s%s ORDER BY %s %s, l.id ASC LIMIT %d OFFSET %d`,
		leadColumns, leadFrom, where, sortColumn(q.SortBy), sortDirection(q.SortOrder), q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Stats runs the three aggregates concurrently; each sees its own
// snapshot, which is acceptable for an overview endpoint.
func (r *leadRepository) Stats(ctx context.Context) (*domain.LeadStats, error) {
	stats := &domain.LeadStats{
		StatusStats: make(map[domain.LeadStatus]int64),
		SourceStats: make(map[domain.LeadSource]int64),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		const q = `SELECT COUNT(*), COALESCE(AVG(score), 0) FROM leads`
		return r.pool.QueryRow(ctx, q).Scan(&stats.TotalLeads, &stats.AvgScore)
	})
	g.Go(func() error {
		rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var status domain.LeadStatus
			var count int64
			if err := rows.Scan(&status, &count); err != nil {
				return err
			}
			stats.StatusStats[status] = count
		}
		return rows.Err()
	})
	g.Go(func() error {
		rows, err := r.pool.Query(ctx, `SELECT source, COUNT(*) FROM leads GROUP BY source`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var source domain.LeadSource
			var count int64
			if err := rows.Scan(&source, &count); err != nil {
				return err
			}
			stats.SourceStats[source] = count
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// buildWhere renders the search term and compiled predicates into a
// WHERE clause with positional args.
func buildWhere(q LeadQuery) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if term := strings.TrimSpace(q.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		parts := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			parts[i] = fmt.Sprintf("LOWER(%s) LIKE %s", col, placeholder)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}

	for _, p := range q.Predicates {
		col, ok := filterColumns[p.Field]
		if !ok {
			continue
		}
		if clause, ok := renderPredicate(col, p, &args); ok {
			clauses = append(clauses, clause)
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func renderPredicate(col string, p query.Predicate, args *[]any) (string, bool) {
	place := func(v any) string {
		*args = append(*args, v)
		return fmt.Sprintf("$%d", len(*args))
	}

	switch p.Kind {
	case query.KindTextEquals, query.KindEnumEquals:
		return fmt.Sprintf("%s = %s", col, place(p.Text)), true
	case query.KindTextContains:
		return fmt.Sprintf("LOWER(%s) LIKE %s", col, place("%"+strings.ToLower(p.Text)+"%")), true
	case query.KindEnumIn:
		if len(p.Values) == 0 {
			return "1=0", true
		}
		placeholders := make([]string, len(p.Values))
		for i, v := range p.Values {
			placeholders[i] = place(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ",")), true
	case query.KindNumberEquals:
		return fmt.Sprintf("%s = %s", col, place(p.Number)), true
	case query.KindNumberGT:
		return fmt.Sprintf("%s > %s", col, place(p.Number)), true
	case query.KindNumberLT:
		return fmt.Sprintf("%s < %s", col, place(p.Number)), true
	case query.KindNumberBetween:
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, place(p.Number), place(p.NumberHigh)), true
	case query.KindDateOn:
		return fmt.Sprintf("%s >= %s AND %s < %s", col, place(p.Time), col, place(p.TimeHigh)), true
	case query.KindDateBefore:
		return fmt.Sprintf("%s < %s", col, place(p.Time)), true
	case query.KindDateAfter:
		return fmt.Sprintf("%s > %s", col, place(p.Time)), true
	case query.KindDateBetween:
		return fmt.Sprintf("%s >= %s AND %s <= %s", col, place(p.Time), col, place(p.TimeHigh)), true
	case query.KindBoolEquals:
		return fmt.Sprintf("%s = %s", col, place(p.Bool)), true
	}
	return "", false
}

func sortColumn(field string) string {
	if col, ok := filterColumns[field]; ok {
		return col
	}
	return "l.created_at"
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var lead domain.Lead
	var creator domain.CreatorRef
	if err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.City,
		&lead.State,
		&lead.Source,
		&lead.Status,
		&lead.Score,
		&lead.LeadValue,
		&lead.IsQualified,
		&lead.CreatedBy,
		&lead.LastActivityAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&creator.FirstName,
		&creator.LastName,
		&creator.Email,
	); err != nil {
		return nil, err
	}
	lead.Creator = &creator
	return &lead, nil
}

func scanLeads(rows pgx.Rows) ([]domain.Lead, error) {
	var result []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *lead)
	}
	return result, rows.Err()
}

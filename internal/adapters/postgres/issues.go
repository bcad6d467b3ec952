package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"vpatgen/internal/domain"
)

var ErrNotFound = errString("not found")

type errString string

func (e errString) Error() string { return string(e) }

// OpenIssuesForVPAT returns open issues for the assessment the VPAT belongs
// to, with their mapped WCAG criterion codes aggregated per issue.
func (db *DB) OpenIssuesForVPAT(ctx context.Context, vpatID string) ([]domain.IssueRecord, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT i.id, i.title, COALESCE(i.description, ''), i.severity, i.status,
               COALESCE(i.component, ''), COALESCE(i.url, ''), COALESCE(i.impact, ''),
               COALESCE(array_agg(c.code ORDER BY c.code) FILTER (WHERE c.code IS NOT NULL), '{}')
        FROM issues i
        JOIN vpats v ON v.assessment_id = i.assessment_id
        LEFT JOIN issue_criteria ic ON ic.issue_id = i.id
        LEFT JOIN wcag_criteria c ON c.id = ic.criterion_id
        WHERE v.id = $1 AND i.status = 'open'
        GROUP BY i.id
        ORDER BY i.created_at, i.id
    `, vpatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IssueRecord
	for rows.Next() {
		var rec domain.IssueRecord
		var severity string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &severity, &rec.Status,
			&rec.Component, &rec.URL, &rec.Impact, &rec.Criteria); err != nil {
			return nil, err
		}
		rec.Severity = domain.Severity(severity)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CriterionByID resolves one WCAG criterion from the reference table.
func (db *DB) CriterionByID(ctx context.Context, id string) (domain.Criterion, error) {
	return db.criterionWhere(ctx, "id = $1", id)
}

// CriterionByCode resolves by dotted code, e.g. "1.4.3".
func (db *DB) CriterionByCode(ctx context.Context, code string) (domain.Criterion, error) {
	return db.criterionWhere(ctx, "code = $1", code)
}

func (db *DB) criterionWhere(ctx context.Context, where string, arg any) (domain.Criterion, error) {
	var c domain.Criterion
	err := db.Pool.QueryRow(ctx, `
        SELECT id, code, name, level, COALESCE(versions, '{}')
        FROM wcag_criteria
        WHERE `+where, arg).Scan(&c.ID, &c.Code, &c.Name, &c.Level, &c.Versions)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Criterion{}, ErrNotFound
	}
	return c, err
}

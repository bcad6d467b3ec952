package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"vpatgen/internal/domain"
)

// DraftRowStore implementation. The no-overwrite guard is expressed in SQL:
// FillIfEmpty only touches rows with no conformance and no remarks, and
// InsertIgnore is an ON CONFLICT no-op, so concurrent generation runs cannot
// clobber a filled row.

func (db *DB) Get(ctx context.Context, vpatID, criterionID string) (domain.DraftRow, bool, error) {
	var row domain.DraftRow
	var conformance *string
	err := db.Pool.QueryRow(ctx, `
        SELECT vpat_id, criterion_id, conformance, COALESCE(remarks, ''),
               COALESCE(related_issue_ids, '{}'), COALESCE(related_urls, '{}'),
               generated_at, COALESCE(generated_by, '')
        FROM vpat_draft_rows
        WHERE vpat_id = $1 AND criterion_id = $2
    `, vpatID, criterionID).Scan(
		&row.VPATID, &row.CriterionID, &conformance, &row.Remarks,
		&row.RelatedIssueIDs, &row.RelatedURLs, &row.GeneratedAt, &row.GeneratedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DraftRow{}, false, nil
	}
	if err != nil {
		return domain.DraftRow{}, false, err
	}
	if conformance != nil {
		c := domain.Conformance(*conformance)
		row.Conformance = &c
	}
	return row, true, nil
}

func (db *DB) FillIfEmpty(ctx context.Context, row domain.DraftRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
        UPDATE vpat_draft_rows
        SET conformance = $3, remarks = $4, related_issue_ids = $5,
            related_urls = $6, generated_at = $7, generated_by = $8
        WHERE vpat_id = $1 AND criterion_id = $2
          AND conformance IS NULL
          AND (remarks IS NULL OR remarks = '')
    `, row.VPATID, row.CriterionID, confText(row), row.Remarks,
		row.RelatedIssueIDs, row.RelatedURLs, row.GeneratedAt, row.GeneratedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) InsertIgnore(ctx context.Context, row domain.DraftRow) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO vpat_draft_rows
            (vpat_id, criterion_id, conformance, remarks, related_issue_ids,
             related_urls, generated_at, generated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (vpat_id, criterion_id) DO NOTHING
    `, row.VPATID, row.CriterionID, confText(row), row.Remarks,
		row.RelatedIssueIDs, row.RelatedURLs, row.GeneratedAt, row.GeneratedBy)
	return err
}

func confText(row domain.DraftRow) *string {
	if row.Conformance == nil {
		return nil
	}
	s := string(*row.Conformance)
	return &s
}

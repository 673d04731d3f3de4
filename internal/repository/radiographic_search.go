package repository

import (
	"context"
	"fmt"
	"strings"
)

// RadiographSearchQuery defines filters & pagination for listing radiographs.
// Month filters on the calendar month of the upload date (1-12, 0 = all).
// Search matches a case-insensitive substring of the patient name or medic
// number.
type RadiographSearchQuery struct {
	Month    int
	Search   string
	Page     int
	PageSize int
}

// Normalize clamps pagination values to usable ranges.
func (q *RadiographSearchQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
}

// List returns the joined radiograph rows matching the query plus the total
// match count for pagination.
func (r *RadiographicRepo) List(ctx context.Context, q RadiographSearchQuery) ([]RadiographRow, int64, error) {
	q.Normalize()

	where := []string{}
	args := []any{}

	if q.Month >= 1 && q.Month <= 12 {
		where = append(where, "MONTH(radiographics.panoramik_upload_date) = ?")
		args = append(args, q.Month)
	}
	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		where = append(where, "(LOWER(patients.fullname) LIKE ? OR LOWER(patients.medic_number) LIKE ?)")
		args = append(args, needle, needle)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := "SELECT COUNT(*)" + radiographJoin + " WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := radiographSelect + " WHERE " + cond +
		" ORDER BY radiographics.panoramik_upload_date DESC, radiographics.id LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]RadiographRow, 0, limit)
	for rows.Next() {
		var d RadiographRow
		if err := scanRadiographRow(rows, &d); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AllByMonth returns every joined radiograph row of one calendar month
// without pagination. The recap export consumes the full month at once.
func (r *RadiographicRepo) AllByMonth(ctx context.Context, month int) ([]RadiographRow, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: invalid month %d", ErrInvariant, month)
	}
	rows, err := r.DB.QueryContext(ctx,
		radiographSelect+" WHERE MONTH(radiographics.panoramik_upload_date) = ? ORDER BY radiographics.panoramik_upload_date",
		month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RadiographRow{}
	for rows.Next() {
		var d RadiographRow
		if err := scanRadiographRow(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

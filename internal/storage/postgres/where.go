package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/wwweather/internal/storage"
)

// WhereBuilder assembles a WHERE clause with numbered placeholders.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n". Empty strings are skipped.
func (wb *WhereBuilder) Add(column string, value any) {
	if s, ok := value.(string); ok && s == "" {
		return
	}
	wb.addCondition(column, "=", value)
}

// AddRange appends the half-open bound column >= from AND column < to.
// Invalid bounds are skipped.
func (wb *WhereBuilder) AddRange(column string, from, to pgtype.Timestamp) {
	if from.Valid {
		wb.addCondition(column, ">=", from)
	}
	if to.Valid {
		wb.addCondition(column, "<", to)
	}
}

func (wb *WhereBuilder) addCondition(column, op string, value any) {
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s %s $%d", column, op, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// NextArgIndex returns the number of the next placeholder.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns the clause, with a leading space, and its arguments.
// Both are empty when nothing was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// AddSearch adds every criterion of p.
func (wb *WhereBuilder) AddSearch(p storage.SearchParams) {
	wb.Add("location_country", p.Country)
	wb.Add("location_name", p.Location)
	if p.Position != nil {
		wb.Add("location_latitude", p.Position.Latitude)
		wb.Add("location_longitude", p.Position.Longitude)
	}
	wb.Add("local_timezone", p.Timezone)

	from, to := p.DateRange()
	var lo, hi pgtype.Timestamp
	if from != nil {
		lo = pgtype.Timestamp{Time: *from, Valid: true}
	}
	if to != nil {
		hi = pgtype.Timestamp{Time: *to, Valid: true}
	}
	wb.AddRange("local_datetime", lo, hi)
}

// selectQuery builds the ordered SELECT for p and w. Limit and offset are
// applied to the whole result; paging happens on top of it.
func selectQuery(p storage.SearchParams, w storage.Window) (string, []any) {
	wb := NewWhereBuilder()
	wb.AddSearch(p)
	where, args := wb.Build()

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s%s", selectColumns, table, where, orderBy)

	next := wb.NextArgIndex()
	if w.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT $%d", next)
		args = append(args, w.Limit)
		next++
	}
	if w.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET $%d", next)
		args = append(args, w.Offset)
	}
	return b.String(), args
}

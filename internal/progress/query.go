package progress

import (
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Dialects accepted by Build.
const (
	DialectSQLite   = dialect.SQLite
	DialectPostgres = dialect.Postgres
)

// Query is a statement with its bound arguments. Values never appear in SQL.
type Query struct {
	SQL  string
	Args []any
}

const progressTable = "user_detail"

var progressColumns = []string{
	"username", "course", "completion_status", "course_initiate_date", "course_completion_date",
}

// Build turns a filter into a parameterized query. Every present field adds
// one AND-ed predicate: case-insensitive substring match for username and
// course, case-insensitive equality for status, and a completion date range
// when both ends are set. The range covers whole days, so a completion
// stamped any time on the end day still matches.
func Build(f Filter, d string) Query {
	sel := entsql.Dialect(d).
		Select(progressColumns...).
		From(entsql.Table(progressTable))

	if s := strings.TrimSpace(f.Username); s != "" {
		sel.Where(entsql.ContainsFold("username", s))
	}
	if s := strings.TrimSpace(f.Course); s != "" {
		sel.Where(entsql.ContainsFold("course", s))
	}
	if f.Status != "" {
		sel.Where(entsql.EqualFold("completion_status", string(f.Status)))
	}
	if f.HasDateRange() {
		// Dates bind as YYYY-MM-DD text: SQLite compares stored text
		// lexically and Postgres casts the literal to the column type.
		sel.Where(entsql.And(
			entsql.GTE("course_completion_date", f.StartDate.Format(DateLayout)),
			entsql.LT("course_completion_date", f.EndDate.AddDate(0, 0, 1).Format(DateLayout)),
		))
	}

	sql, args := sel.OrderBy("username", "course").Query()
	return Query{SQL: sql, Args: args}
}

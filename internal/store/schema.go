package store

import (
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// builder renders every statement of the application store.
var builder = entsql.Dialect(dialect.SQLite)

type querier interface {
	Query() (string, []any)
}

func migrations() []querier {
	return []querier{
		builder.CreateTable(tableLLMEvents).IfNotExists().Columns(
			entsql.Column("id").Type("INTEGER").Attr("PRIMARY KEY AUTOINCREMENT"),
			entsql.Column("created_at").Type("INTEGER").Attr("NOT NULL"),
			entsql.Column("provider").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("model").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("purpose").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("input_tokens").Type("INTEGER").Attr("NOT NULL DEFAULT 0"),
			entsql.Column("output_tokens").Type("INTEGER").Attr("NOT NULL DEFAULT 0"),
			entsql.Column("latency_ms").Type("INTEGER").Attr("NOT NULL DEFAULT 0"),
			entsql.Column("success").Type("INTEGER").Attr("NOT NULL DEFAULT 0"),
			entsql.Column("error_message").Type("TEXT").Attr("NOT NULL DEFAULT ''"),
			entsql.Column("request_body").Type("TEXT").Attr("NOT NULL DEFAULT ''"),
			entsql.Column("response_body").Type("TEXT").Attr("NOT NULL DEFAULT ''"),
		),
		builder.CreateIndex("idx_llm_events_purpose").IfNotExists().
			Table(tableLLMEvents).Columns("purpose"),
		builder.CreateTable(tableSyllabi).IfNotExists().Columns(
			entsql.Column("name").Type("TEXT").Attr("PRIMARY KEY"),
			entsql.Column("topic").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("audience").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("params").Type("TEXT").Attr("NOT NULL DEFAULT '{}'"),
			entsql.Column("body").Type("TEXT").Attr("NOT NULL"),
			entsql.Column("verified").Type("INTEGER").Attr("NOT NULL DEFAULT 0"),
			entsql.Column("created_at").Type("INTEGER").Attr("NOT NULL"),
			entsql.Column("updated_at").Type("INTEGER").Attr("NOT NULL"),
		),
	}
}

const (
	tableLLMEvents = "llm_events"
	tableSyllabi   = "syllabi"
)

func migrate(db *sql.DB) error {
	for i, m := range migrations() {
		stmt, args := m.Query()
		if _, err := db.Exec(stmt, args...); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

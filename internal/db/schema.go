package db

import (
	"context"
	"fmt"
	"strings"
)

type requiredColumn struct {
	table  string
	column string
}

// Columns the account routes write to or delete from.
var requiredColumns = []requiredColumn{
	{table: "appointments", column: "user_id"},
	{table: "appointments", column: "name"},
	{table: "appointments", column: "doctor"},
	{table: "appointments", column: "date"},
	{table: "medications", column: "user_id"},
}

func ValidateSchema(ctx context.Context, q Querier) error {
	if q == nil {
		return fmt.Errorf("querier is nil")
	}
	for _, item := range requiredColumns {
		ok, err := columnExists(ctx, q, item.table, item.column)
		if err != nil {
			return fmt.Errorf("failed checking schema for %s.%s: %w", item.table, item.column, err)
		}
		if !ok {
			return fmt.Errorf("required column %s.%s is missing", item.table, item.column)
		}
	}
	return nil
}

func columnExists(ctx context.Context, q Querier, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := q.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

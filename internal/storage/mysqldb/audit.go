package mysqldb

import (
	"context"
	"fmt"
	"regexp"

	"happylink/internal/errs"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// TruncateTable empties an audit table. Only plain identifiers are accepted
// because the name cannot be bound as a parameter.
func (d *DB) TruncateTable(ctx context.Context, table string) error {
	if !identifierRe.MatchString(table) {
		return errs.Database("truncate", fmt.Errorf("invalid table name %q", table))
	}
	if err := d.db.WithContext(ctx).Exec("TRUNCATE TABLE `" + table + "`").Error; err != nil {
		return errs.Database("truncate "+table, err)
	}
	return nil
}

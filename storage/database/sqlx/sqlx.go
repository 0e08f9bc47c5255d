// Package sqlxrepos implements the domain repositories on Postgres with sqlx and squirrel.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// trapNoRowsErr maps psql "no rows" err to notFound. A closed pool cannot recover, so the server is asked to stop.
func trapNoRowsErr(err error, notFound error, msg string) error {
	switch {
	case err == sql.ErrNoRows:
		return notFound
	case errors.Is(err, sql.ErrConnDone):
		return core.NewShutdownError(msg + ": database connection is closed")
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == "23505"
}

// validIDs drops the ids that cannot be a uuid, a query on them could only fail.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// contains builds a LIKE pattern matching s anywhere.
func contains(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// searchAny matches val case-insensitively against any of cols.
func searchAny(val string, cols ...string) sq.Or {
	pattern := contains(val)
	or := make(sq.Or, 0, len(cols))
	for _, col := range cols {
		or = append(or, sq.ILike{col: pattern})
	}
	return or
}

func orderBy(ordering []core.DBOrdering) []string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clause := ord.String()
		if !ord.Ascending {
			clause += " NULLS LAST"
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func paginate(b sq.SelectBuilder, ordering []core.DBOrdering, page core.Page) sq.SelectBuilder {
	if len(ordering) > 0 {
		b = b.OrderBy(orderBy(ordering)...)
	}
	page.Clean()
	return b.Limit(uint64(page.Limit)).Offset(uint64(page.Offset))
}

func selectAll(ctx context.Context, exec sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, exec, dest, query, args...)
}

func selectOne(ctx context.Context, exec sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, exec, dest, query, args...)
}

// execute runs b and returns the number of affected rows.
func execute(ctx context.Context, exec sqlx.ExecerContext, b sq.Sqlizer) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func insert(ctx context.Context, exec sqlx.ExecerContext, table string, vals map[string]interface{}) error {
	_, err := execute(ctx, exec, psql.Insert(table).SetMap(vals))
	return err
}

// update saves vals on the row with id and reports whether it matched. conds narrow the match further.
func update(ctx context.Context, exec sqlx.ExecerContext, table, id string, vals map[string]interface{}, conds ...sq.Sqlizer) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	delete(vals, "id")
	delete(vals, "created_at")
	b := psql.Update(table).SetMap(vals).Where(sq.Eq{"id": id})
	for _, cond := range conds {
		b = b.Where(cond)
	}
	n, err := execute(ctx, exec, b)
	return n > 0, err
}

func deleteByID(ctx context.Context, exec sqlx.ExecerContext, table string, ids []string) error {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	_, err := execute(ctx, exec, psql.Delete(table).Where(sq.Eq{"id": ids}))
	return err
}

// withTx runs fn in a transaction, rolled back when fn fails.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

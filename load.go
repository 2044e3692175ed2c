package albumetl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nao1215/albumetl/domain/model"
	"github.com/nao1215/albumetl/logging"
	"github.com/nao1215/albumetl/metrics"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const (
	// sqliteDriverName is the database/sql driver name registered by modernc.org/sqlite
	sqliteDriverName = "sqlite"

	stageLoad = "load"
)

// Loader writes tables into a file-backed SQLite store.
// The zero Loader logs to the default logger and records no metrics.
type Loader struct {
	Logger   *slog.Logger
	Recorder *metrics.Recorder
}

// Load writes t into the SQLite file at dbPath as tableName using a zero Loader.
func Load(ctx context.Context, t *Table, dbPath, tableName string) error {
	return (&Loader{}).Load(ctx, t, dbPath, tableName)
}

// LoadTable reads tableName back from the SQLite file at dbPath.
func LoadTable(ctx context.Context, dbPath, tableName string) (*Table, error) {
	return (&Loader{}).LoadTable(ctx, dbPath, tableName)
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return logging.L()
}

// openStore connects to the SQLite file at dbPath, creating it when absent.
func openStore(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("database path cannot be empty")
	}
	db, err := sqlx.ConnectContext(ctx, sqliteDriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Load replaces tableName in the SQLite file at dbPath with the contents of t.
// The store is created when absent. Drop, create and insert run in one
// transaction, so a failed load leaves any previous table in place.
// Column types map to SQLite declared types; missing cells are stored as NULL.
// Any failure yields an error matching ErrStorage.
func (l *Loader) Load(ctx context.Context, t *Table, dbPath, tableName string) (err error) {
	ec := NewErrorContext(stageLoad, dbPath).WithTable(tableName)
	start := time.Now()
	defer func() {
		l.Recorder.ObserveStage(stageLoad, err, time.Since(start))
	}()

	if strings.TrimSpace(tableName) == "" {
		return ec.WithDetails("table name cannot be empty").Error(ErrStorage, nil)
	}
	if len(t.Columns()) == 0 {
		return ec.WithDetails("table has no columns").Error(ErrStorage, nil)
	}

	db, err := openStore(ctx, dbPath)
	if err != nil {
		return ec.Error(ErrStorage, err)
	}
	defer db.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return ec.Error(ErrStorage, fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(tableName)); err != nil {
		return ec.Error(ErrStorage, fmt.Errorf("drop table: %w", err))
	}
	if _, err = tx.ExecContext(ctx, buildCreateTableQuery(tableName, t.Columns())); err != nil {
		return ec.Error(ErrStorage, fmt.Errorf("create table: %w", err))
	}

	if err = insertRows(ctx, tx, tableName, t); err != nil {
		return ec.Error(ErrStorage, err)
	}

	if err = tx.Commit(); err != nil {
		return ec.Error(ErrStorage, fmt.Errorf("commit: %w", err))
	}

	l.Recorder.AddRows(stageLoad, metrics.KindLoaded, t.Len())
	l.logger().Info("data loaded",
		"database", dbPath,
		"table", tableName,
		"rows", t.Len(),
		"fingerprint", fmt.Sprintf("%016x", t.Fingerprint()))
	return nil
}

func insertRows(ctx context.Context, tx *sqlx.Tx, tableName string, t *Table) error {
	if t.Len() == 0 {
		return nil
	}

	stmt, err := tx.PreparexContext(ctx, buildInsertQuery(tableName, t.Columns()))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns()))
	for i, row := range t.Rows() {
		for j, v := range row {
			args[j] = v.DriverValue()
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return nil
}

// quoteIdent quotes a SQLite identifier with double quotes.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// buildCreateTableQuery constructs a CREATE TABLE query for the given columns
func buildCreateTableQuery(tableName string, columns []model.Column) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, quoteIdent(col.Name)+" "+col.Type.SQLType())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tableName), strings.Join(defs, ", "))
}

// buildInsertQuery constructs an INSERT query for the given columns
func buildInsertQuery(tableName string, columns []model.Column) string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, quoteIdent(col.Name))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(tableName),
		strings.Join(names, ", "),
		buildPlaceholders(len(columns)))
}

// buildPlaceholders creates placeholder string for prepared statements
func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

// LoadTable reads tableName back from the SQLite file at dbPath. Column types
// come from the declared SQLite types. Failures yield ErrStorage.
func (l *Loader) LoadTable(ctx context.Context, dbPath, tableName string) (*Table, error) {
	ec := NewErrorContext("read table", dbPath).WithTable(tableName)

	db, err := openStore(ctx, dbPath)
	if err != nil {
		return nil, ec.Error(ErrStorage, err)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, "SELECT * FROM "+quoteIdent(tableName))
	if err != nil {
		return nil, ec.Error(ErrStorage, err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, ec.Error(ErrStorage, err)
	}
	columns := make([]model.Column, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = model.NewColumn(ct.Name(), model.ColumnTypeFromSQL(ct.DatabaseTypeName()))
	}

	var tableRows []model.Row
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, ec.Error(ErrStorage, err)
		}
		row := make(model.Row, len(columns))
		for i, raw := range vals {
			row[i] = fromSQLValue(raw, columns[i].Type)
		}
		tableRows = append(tableRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, ec.Error(ErrStorage, err)
	}

	l.logger().Debug("table read", "database", dbPath, "table", tableName, "rows", len(tableRows))
	return model.NewTable(tableName, columns, tableRows), nil
}

// fromSQLValue converts a scanned SQLite value into a cell of the given column type.
func fromSQLValue(raw any, typ model.ColumnType) model.Value {
	switch v := raw.(type) {
	case nil:
		return model.Missing()
	case int64:
		switch typ {
		case model.ColumnTypeReal:
			return model.Real(float64(v))
		case model.ColumnTypeText, model.ColumnTypeDatetime:
			return model.Text(strconv.FormatInt(v, 10))
		default:
			return model.Integer(v)
		}
	case float64:
		if typ == model.ColumnTypeText || typ == model.ColumnTypeDatetime {
			return model.Text(strconv.FormatFloat(v, 'f', -1, 64))
		}
		return model.Real(v)
	case bool:
		if v {
			return model.Integer(1)
		}
		return model.Integer(0)
	case time.Time:
		return model.Timestamp(v.UTC())
	case []byte:
		return fromSQLText(string(v), typ)
	case string:
		return fromSQLText(v, typ)
	default:
		return model.Text(fmt.Sprint(v))
	}
}

// fromSQLText keeps text cells of TEXT columns verbatim and parses the rest.
func fromSQLText(s string, typ model.ColumnType) model.Value {
	if typ == model.ColumnTypeText || typ == model.ColumnTypeDatetime {
		return model.Text(s)
	}
	return model.ParseValue(s, typ)
}

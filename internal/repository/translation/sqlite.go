package translation

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/model"
)

// sqliteRepository implements Repository using SQLite through database/sql
type sqliteRepository struct {
	db       *sql.DB
	q        queries
	settings Settings
}

// NewSQLiteRepository creates a SQLite-backed repository
func NewSQLiteRepository(db *sql.DB, settings Settings) Repository {
	return &sqliteRepository{
		db:       db,
		q:        newQueries(sq.Question),
		settings: settings.withDefaults(),
	}
}

func (r *sqliteRepository) Save(ctx context.Context, record *model.TranslationRecord) (*model.TranslationRecord, error) {
	rec, err := r.settings.prepare(record)
	if err != nil {
		return nil, err
	}

	stmt, args, err := r.q.insert(rec)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build insert")
	}

	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&rec.ID); err != nil {
		return nil, handleSQLiteError(err, "failed to save translation")
	}
	return rec, nil
}

func (r *sqliteRepository) GetAll(ctx context.Context, limit, offset int) ([]*model.TranslationRecord, error) {
	stmt, args, err := r.q.list(nil, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}
	return r.queryRecords(ctx, "failed to list translations", stmt, args...)
}

func (r *sqliteRepository) GetByID(ctx context.Context, id int64) (*model.TranslationRecord, error) {
	stmt, args, err := r.q.byID(id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	rec, err := scanRecord(r.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "translation not found")
		}
		return nil, handleSQLiteError(err, "failed to get translation")
	}
	return rec, nil
}

func (r *sqliteRepository) GetByLanguage(ctx context.Context, targetLanguage string, limit, offset int) ([]*model.TranslationRecord, error) {
	stmt, args, err := r.q.byLanguage(targetLanguage, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}
	return r.queryRecords(ctx, "failed to list translations by language", stmt, args...)
}

func (r *sqliteRepository) Search(ctx context.Context, query string, limit, offset int) ([]*model.TranslationRecord, error) {
	stmt, args, err := r.q.search(query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}
	return r.queryRecords(ctx, "failed to search translations", stmt, args...)
}

func (r *sqliteRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	stmt, args, err := r.q.deleteByID(id)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build delete")
	}

	n, err := r.exec(ctx, "failed to delete translation", stmt, args...)
	return n > 0, err
}

func (r *sqliteRepository) ClearAll(ctx context.Context) (int64, error) {
	stmt, args, err := r.q.deleteAll()
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build delete")
	}
	return r.exec(ctx, "failed to clear translations", stmt, args...)
}

func (r *sqliteRepository) Count(ctx context.Context) (int64, error) {
	stmt, args, err := r.q.count()
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, handleSQLiteError(err, "failed to count translations")
	}
	return n, nil
}

func (r *sqliteRepository) Statistics(ctx context.Context) (*model.Statistics, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	languages, err := r.countBy(ctx, "target_language")
	if err != nil {
		return nil, err
	}
	methods, err := r.countBy(ctx, "translation_method")
	if err != nil {
		return nil, err
	}
	return newStatistics(total, languages, methods), nil
}

func (r *sqliteRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	stmt, args, err := r.q.countBy(column)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, handleSQLiteError(err, "failed to compute statistics")
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, handleSQLiteError(err, "failed to scan statistics")
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLiteError(err, "failed to iterate statistics")
	}
	return counts, nil
}

func (r *sqliteRepository) exec(ctx context.Context, operation, stmt string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, handleSQLiteError(err, operation)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, handleSQLiteError(err, operation)
	}
	return n, nil
}

func (r *sqliteRepository) queryRecords(ctx context.Context, operation, stmt string, args ...any) ([]*model.TranslationRecord, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, handleSQLiteError(err, operation)
	}
	defer rows.Close()

	records := []*model.TranslationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, handleSQLiteError(err, operation)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLiteError(err, operation)
	}
	return records, nil
}

// handleSQLiteError converts SQLite result codes to AppError codes
func handleSQLiteError(err error, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var liteErr sqlite3.Error
	if !errors.As(err, &liteErr) {
		return apperrors.Wrap(err, apperrors.CodeInternal, operation)
	}

	switch liteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return apperrors.Wrap(err, apperrors.CodeConflict, "translation already exists")
	case sqlite3.ErrConstraintNotNull:
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "required field is missing")
	case sqlite3.ErrConstraintCheck:
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "data violates check constraint")
	}

	switch liteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return apperrors.Wrap(err, apperrors.CodeInternal, "database is busy")
	case sqlite3.ErrCantOpen:
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection error")
	default:
		return apperrors.Wrap(err, apperrors.CodeInternal, operation)
	}
}

package translation

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
	"github.com/Taichi-iskw/lingopad/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the repository
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	pool     Pool
	q        queries
	settings Settings
}

// NewPostgresRepository creates a PostgreSQL-backed repository
func NewPostgresRepository(pool Pool, settings Settings) Repository {
	return &postgresRepository{
		pool:     pool,
		q:        newQueries(sq.Dollar),
		settings: settings.withDefaults(),
	}
}

// Save creates a new translation record
func (r *postgresRepository) Save(ctx context.Context, record *model.TranslationRecord) (*model.TranslationRecord, error) {
	rec, err := r.settings.prepare(record)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.q.insert(rec)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build insert")
	}

	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&rec.ID); err != nil {
		return nil, handlePostgreSQLError(err, "failed to save translation")
	}
	return rec, nil
}

func (r *postgresRepository) GetAll(ctx context.Context, limit, offset int) ([]*model.TranslationRecord, error) {
	sql, args, err := r.q.list(nil, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}
	return r.queryRecords(ctx, "failed to list translations", sql, args...)
}

// GetByID retrieves a translation by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.TranslationRecord, error) {
	sql, args, err := r.q.byID(id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	rec, err := scanRecord(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "translation not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get translation")
	}
	return rec, nil
}

func (r *postgresRepository) GetByLanguage(ctx context.Context, targetLanguage string, limit, offset int) ([]*model.TranslationRecord, error) {
	sql, args, err := r.q.byLanguage(targetLanguage, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}
	return r.queryRecords(ctx, "failed to list translations by language", sql, args...)
}

func (r *postgresRepository) Search(ctx context.Context, query string, limit, offset int) ([]*model.TranslationRecord, error) {
	sql, args, err := r.q.search(query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}
	return r.queryRecords(ctx, "failed to search translations", sql, args...)
}

// DeleteByID removes a translation record
func (r *postgresRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	sql, args, err := r.q.deleteByID(id)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build delete")
	}

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, handlePostgreSQLError(err, "failed to delete translation")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresRepository) ClearAll(ctx context.Context) (int64, error) {
	sql, args, err := r.q.deleteAll()
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build delete")
	}

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, handlePostgreSQLError(err, "failed to clear translations")
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := r.q.count()
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	var n int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, handlePostgreSQLError(err, "failed to count translations")
	}
	return n, nil
}

func (r *postgresRepository) Statistics(ctx context.Context) (*model.Statistics, error) {
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

func (r *postgresRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	sql, args, err := r.q.countBy(column)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build query")
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to compute statistics")
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan statistics")
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate statistics")
	}
	return counts, nil
}

func (r *postgresRepository) queryRecords(ctx context.Context, operation, sql string, args ...any) ([]*model.TranslationRecord, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, operation)
	}
	defer rows.Close()

	records := []*model.TranslationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, handlePostgreSQLError(err, operation)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, operation)
	}
	return records, nil
}

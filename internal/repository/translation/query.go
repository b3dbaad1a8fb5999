package translation

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/Taichi-iskw/lingopad/internal/model"
)

const tableName = "translations"

var recordColumns = []string{
	"id",
	"input_text",
	"translated_text",
	"pronunciation",
	"source_language",
	"target_language",
	"translation_method",
	"created_at",
}

// queries renders the statements for one placeholder dialect
type queries struct {
	sb sq.StatementBuilderType
}

func newQueries(format sq.PlaceholderFormat) queries {
	return queries{sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (q queries) insert(rec *model.TranslationRecord) (string, []any, error) {
	return q.sb.Insert(tableName).
		Columns("input_text", "translated_text", "pronunciation", "source_language",
			"target_language", "translation_method", "created_at").
		Values(rec.InputText, rec.TranslatedText, rec.Pronunciation, rec.SourceLanguage,
			rec.TargetLanguage, rec.TranslationMethod, rec.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
}

// list selects records newest first; pred may be nil
func (q queries) list(pred sq.Sqlizer, limit, offset int) (string, []any, error) {
	l, o := page(limit, offset)
	b := q.sb.Select(recordColumns...).From(tableName)
	if pred != nil {
		b = b.Where(pred)
	}
	return b.OrderBy("created_at DESC", "id DESC").Limit(l).Offset(o).ToSql()
}

func (q queries) byID(id int64) (string, []any, error) {
	return q.sb.Select(recordColumns...).From(tableName).Where(sq.Eq{"id": id}).ToSql()
}

func (q queries) byLanguage(targetLanguage string, limit, offset int) (string, []any, error) {
	return q.list(sq.Eq{"target_language": targetLanguage}, limit, offset)
}

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (q queries) search(query string, limit, offset int) (string, []any, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	return q.list(sq.Or{
		sq.Expr(`input_text LIKE ? ESCAPE '\'`, pattern),
		sq.Expr(`translated_text LIKE ? ESCAPE '\'`, pattern),
	}, limit, offset)
}

func (q queries) deleteByID(id int64) (string, []any, error) {
	return q.sb.Delete(tableName).Where(sq.Eq{"id": id}).ToSql()
}

func (q queries) deleteAll() (string, []any, error) {
	return q.sb.Delete(tableName).ToSql()
}

func (q queries) count() (string, []any, error) {
	return q.sb.Select("COUNT(*)").From(tableName).ToSql()
}

func (q queries) countBy(column string) (string, []any, error) {
	return q.sb.Select(column, "COUNT(*)").From(tableName).GroupBy(column).OrderBy(column).ToSql()
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.TranslationRecord, error) {
	var rec model.TranslationRecord
	var pronunciation sql.NullString
	err := row.Scan(&rec.ID, &rec.InputText, &rec.TranslatedText, &pronunciation,
		&rec.SourceLanguage, &rec.TargetLanguage, &rec.TranslationMethod, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if pronunciation.Valid {
		rec.Pronunciation = &pronunciation.String
	}
	return &rec, nil
}

func newStatistics(total int64, languages, methods map[string]int64) *model.Statistics {
	return &model.Statistics{
		TotalTranslations: total,
		TotalLanguages:    len(languages),
		LanguageCounts:    languages,
		MethodCounts:      methods,
	}
}

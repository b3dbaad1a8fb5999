package translation

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/lingopad/internal/errors"
)

// handlePostgreSQLError converts PostgreSQL-specific errors to appropriate AppError codes
func handlePostgreSQLError(err error, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Wrap(err, apperrors.CodeInternal, operation)
	}

	switch pgErr.Code {
	case "23505": // UNIQUE_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeConflict, "translation already exists")

	case "23502": // NOT_NULL_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "required field is missing")

	case "23514": // CHECK_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, checkViolationMessage(pgErr.ConstraintName))

	case "22001": // STRING_DATA_RIGHT_TRUNCATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "value too long")

	case "42P01": // UNDEFINED_TABLE
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: table not found, run 'lingopad migrate up'")

	case "42703": // UNDEFINED_COLUMN
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: column not found")

	case "08000", "08003", "08006": // CONNECTION_EXCEPTION variants
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection error")

	case "53300": // TOO_MANY_CONNECTIONS
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection limit reached")

	default:
		message := operation + " (PostgreSQL code: " + pgErr.Code + ")"
		return apperrors.Wrap(err, apperrors.CodeInternal, message)
	}
}

func checkViolationMessage(constraint string) string {
	switch constraint {
	case "translations_translation_method_check":
		return "invalid translation method"
	case "translations_input_text_check":
		return "input text must be between 1 and 5000 characters"
	case "translations_translated_text_check":
		return "translated text must be between 1 and 5000 characters"
	default:
		return "data violates check constraint"
	}
}

package credit

import (
	"errors"
	"strings"

	crediterrors "go-cto/internal/credit/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crediterrors.ErrCreditNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_cto_credit_memo_no" {
			return crediterrors.ErrMemoAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_cto_credit_memo_no") {
		return crediterrors.ErrMemoAlreadyExists
	}

	return err
}

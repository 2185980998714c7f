package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
)

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func toDomainAccount(row generated.Account) *domain.Account {
	var createdAt time.Time
	if row.CreatedAt.Valid {
		createdAt = row.CreatedAt.Time.UTC()
	}
	return &domain.Account{
		Number:    row.AccountNumber,
		Owner:     row.Username,
		Balance:   numericToDecimal(row.Balance),
		Active:    row.IsActive,
		CreatedAt: createdAt,
	}
}

func toUpsertParams(a *domain.Account) generated.UpsertAccountParams {
	return generated.UpsertAccountParams{
		AccountNumber: a.Number,
		Username:      a.Owner,
		Balance:       decimalToNumeric(a.Balance),
		IsActive:      a.Active,
		CreatedAt:     timeToTimestamptz(a.CreatedAt),
	}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

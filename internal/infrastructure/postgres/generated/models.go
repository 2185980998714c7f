package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	AccountNumber string             `json:"account_number"`
	Username      string             `json:"username"`
	Balance       pgtype.Numeric     `json:"balance"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type Credential struct {
	Username       string             `json:"username"`
	PasswordDigest string             `json:"password_digest"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

package repository

import (
	"errors"
	"fmt"

	repo "pos/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQLのSQLSTATE
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// gorm/ドライバのエラーをrepositoryのエラーに寄せる
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %v", repo.ErrConflict, err)
	}
	return err
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation || pgErr.Code == pgUniqueViolation
	}
	return false
}

func offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

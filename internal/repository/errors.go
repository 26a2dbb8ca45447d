package repository

import "errors"

var (
	// 対象の行がない
	ErrNotFound = errors.New("not found")

	// 外部キー・一意制約に違反した
	ErrConflict = errors.New("conflict")
)

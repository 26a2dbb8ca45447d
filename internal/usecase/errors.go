package usecase

import (
	"errors"
	"fmt"
	"time"
)

// handlerがそのままHTTPレスポンスにするエラー。
// Detailsは調査用（本番ではhandler側で隠す）
type HTTPError struct {
	Status  int
	Message string
	Details string
}

func (e *HTTPError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 原因のエラー文字列をDetailsに残す
func WrapHTTPError(status int, message string, cause error) error {
	he := &HTTPError{Status: status, Message: message}
	if cause != nil {
		he.Details = cause.Error()
	}
	return he
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// 一覧のページ指定
const (
	DefaultPerPage = 5
	MaxPerPage     = 100
)

// page/per_page を補正する（0以下は既定値、上限はMaxPerPage）
func normalizePage(page, perPage, defaultPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func lastPage(total int64, perPage int) int {
	if total == 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// 一覧レスポンスの共通形
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

func newPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:        data,
		CurrentPage: page,
		LastPage:    lastPage(total, perPage),
		PerPage:     perPage,
		Total:       total,
	}
}

// Package sheets はGoogleスプレッドシートのフォーム回答を読む。
package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
}

// フォーム回答シートを行ごとに返す（読み取り専用）
type ResponseSource struct {
	srv           *gsheets.Service
	spreadsheetID string
	readRange     string
}

// optsはテストでエンドポイントを差し替えるときに使う
func NewResponseSource(ctx context.Context, cfg Config, opts ...option.ClientOption) (*ResponseSource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is empty")
	}
	if cfg.Range == "" {
		return nil, errors.New("range is empty")
	}

	all := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsReadonlyScope)}
	if cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	all = append(all, opts...)

	srv, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &ResponseSource{srv: srv, spreadsheetID: cfg.SpreadsheetID, readRange: cfg.Range}, nil
}

// セルは文字列にそろえる。空シートなら空スライス
func (s *ResponseSource) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, cell := range r {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

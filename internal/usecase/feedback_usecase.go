package usecase

import (
	"context"
	"log/slog"
	"net/http"

	"pos/internal/domain/model"
)

// アンケート回答の取得元（1行目がヘッダ、1列目はタイムスタンプ）
type ResponseSource interface {
	Rows(ctx context.Context) ([][]string, error)
}

type Question struct {
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Choices []string `json:"choices,omitempty"`
}

var agreeScale = []string{"Strongly Disagree", "Disagree", "Neutral", "Agree", "Strongly Agree"}

var surveyQuestions = []Question{
	{Text: "The POS system is easy to use and user-friendly.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "The system responds quickly without significant delays.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "It is easy to train new staff to use the POS system.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "The POS system helps improve our transaction accuracy.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "I am satisfied with the reliability and stability of the system.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "The features of the POS system meet the needs of our business.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "The system integrates well with our inventory and reporting tools.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "Customer transactions are processed efficiently using the POS.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "Technical support is responsive and helpful when issues arise.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "I would recommend this POS system to other businesses.", Type: "multiple-choice", Choices: agreeScale},
	{Text: "What suggestions do you have for improving the POS system to better serve your needs?", Type: "text"},
}

// 設問ごとの回答数。Answersは回答 → 件数
type QuestionSummary struct {
	Question string           `json:"question"`
	Answers  map[string]int64 `json:"answers"`
}

type FeedbackUsecase struct {
	source ResponseSource // 未設定ならnil
	log    *slog.Logger
}

func NewFeedbackUsecase(source ResponseSource, log *slog.Logger) *FeedbackUsecase {
	return &FeedbackUsecase{source: source, log: log}
}

func (u *FeedbackUsecase) Questions(s model.Session) ([]Question, error) {
	if err := authorize(s, model.MenuFeedback); err != nil {
		return nil, err
	}
	out := make([]Question, len(surveyQuestions))
	copy(out, surveyQuestions)
	return out, nil
}

func (u *FeedbackUsecase) Responses(ctx context.Context, s model.Session) ([][]string, error) {
	if err := authorize(s, model.MenuFeedback); err != nil {
		return nil, err
	}
	return u.rows(ctx)
}

func (u *FeedbackUsecase) Summary(ctx context.Context, s model.Session) ([]QuestionSummary, error) {
	if err := authorize(s, model.MenuFeedback); err != nil {
		return nil, err
	}
	rows, err := u.rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewHTTPError(http.StatusNotFound, "No data found")
	}
	return SummarizeResponses(rows), nil
}

func (u *FeedbackUsecase) rows(ctx context.Context) ([][]string, error) {
	if u.source == nil {
		return nil, NewHTTPError(http.StatusServiceUnavailable, "feedback source not configured")
	}
	rows, err := u.source.Rows(ctx)
	if err != nil {
		u.log.WarnContext(ctx, "feedback source failed", slog.Any("error", err))
		return nil, WrapHTTPError(http.StatusBadGateway, "feedback source unavailable", err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}

// ヘッダ順に設問を並べる。1列目（タイムスタンプ）と空の回答は数えない
func SummarizeResponses(rows [][]string) []QuestionSummary {
	if len(rows) == 0 {
		return []QuestionSummary{}
	}
	headers := rows[0]
	out := make([]QuestionSummary, 0, len(headers))
	for col := 1; col < len(headers); col++ {
		qs := QuestionSummary{Question: headers[col], Answers: map[string]int64{}}
		for _, row := range rows[1:] {
			if col >= len(row) || row[col] == "" {
				continue
			}
			qs.Answers[row[col]]++
		}
		out = append(out, qs)
	}
	return out
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"pos/internal/domain/model"
	"pos/internal/domain/pricing"
	repo "pos/internal/repository"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// 期間集計の単位
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

func (g GroupBy) Valid() bool {
	return g == GroupByDay || g == GroupByWeek || g == GroupByMonth
}

// 期間キー（日: 2006-01-02 / 週: 2006-W01 / 月: 2006-01）
func (g GroupBy) Key(t time.Time) string {
	switch g {
	case GroupByWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case GroupByMonth:
		return t.Format("2006-01")
	default:
		return t.Format(dateLayout)
	}
}

type ReportUsecase struct {
	reports repo.ReportRepository
	clock   Clock
}

func NewReportUsecase(reports repo.ReportRepository, clock Clock) *ReportUsecase {
	return &ReportUsecase{reports: reports, clock: clock}
}

// クエリの start_date / end_date（空なら既定値）
type ReportQuery struct {
	StartDate string
	EndDate   string
}

type ItemSalesRow struct {
	ItemName      string      `json:"item_name"`
	TotalQuantity int64       `json:"total_quantity"`
	TotalSales    json.Number `json:"total_sales"`
}

type ItemSalesReport struct {
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Rows      []ItemSalesRow `json:"rows"`
}

type SaleRow struct {
	OrderID         int64       `json:"order_id"`
	Customer        string      `json:"customer"`
	ItemName        string      `json:"item_name"`
	Quantity        int64       `json:"quantity"`
	DiscountedPrice json.Number `json:"discounted_price"`
	Total           json.Number `json:"total"`
	OrderedAt       time.Time   `json:"ordered_at"`
}

type SalesReport struct {
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Rows      []SaleRow `json:"rows"`
}

type RevenueRow struct {
	Period          string      `json:"period"`
	TotalRevenue    json.Number `json:"total_revenue"`
	TotalQuantity   int64       `json:"total_quantity"`
	MostPopularItem string      `json:"most_popular_item"`
}

type RevenueReport struct {
	GroupBy   GroupBy      `json:"group_by"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Rows      []RevenueRow `json:"rows"`
}

// 商品別の数量・売上（売上の多い順）
func (u *ReportUsecase) ItemSales(ctx context.Context, s model.Session, q ReportQuery) (ItemSalesReport, error) {
	if err := authorize(s, model.MenuReports); err != nil {
		return ItemSalesReport{}, err
	}
	rg, err := u.parseRange(q)
	if err != nil {
		return ItemSalesReport{}, err
	}

	rows, err := u.reports.ItemSales(ctx, rg)
	if err != nil {
		return ItemSalesReport{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	out := ItemSalesReport{
		StartDate: rg.From.Format(dateLayout),
		EndDate:   rg.To.Format(dateLayout),
		Rows:      make([]ItemSalesRow, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, ItemSalesRow{
			ItemName:      r.ItemName,
			TotalQuantity: r.TotalQuantity,
			TotalSales:    money(r.TotalSales),
		})
	}
	return out, nil
}

// 明細の一覧（新しい順）
func (u *ReportUsecase) Sales(ctx context.Context, s model.Session, q ReportQuery) (SalesReport, error) {
	if err := authorize(s, model.MenuReports); err != nil {
		return SalesReport{}, err
	}
	rg, err := u.parseRange(q)
	if err != nil {
		return SalesReport{}, err
	}

	lines, err := u.reports.SaleLines(ctx, rg)
	if err != nil {
		return SalesReport{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	out := SalesReport{
		StartDate: rg.From.Format(dateLayout),
		EndDate:   rg.To.Format(dateLayout),
		Rows:      make([]SaleRow, 0, len(lines)),
	}
	for i := len(lines) - 1; i >= 0; i-- {
		l := lines[i]
		sub := pricing.Line{UnitPrice: l.DiscountedPrice, Quantity: l.Quantity}.Subtotal()
		out.Rows = append(out.Rows, SaleRow{
			OrderID:         l.OrderID,
			Customer:        l.FirstName + " " + l.LastName,
			ItemName:        l.ItemName,
			Quantity:        l.Quantity,
			DiscountedPrice: money(l.DiscountedPrice),
			Total:           money(sub),
			OrderedAt:       l.OrderedAt,
		})
	}
	return out, nil
}

// 日・週・月ごとの売上と一番売れた商品
func (u *ReportUsecase) Revenue(ctx context.Context, s model.Session, groupBy string, q ReportQuery) (RevenueReport, error) {
	if err := authorize(s, model.MenuCharts); err != nil {
		return RevenueReport{}, err
	}
	g := GroupBy(groupBy)
	if groupBy == "" {
		g = GroupByDay
	}
	if !g.Valid() {
		return RevenueReport{}, NewHTTPError(http.StatusBadRequest, "invalid group_by")
	}
	rg, err := u.parseRange(q)
	if err != nil {
		return RevenueReport{}, err
	}

	lines, err := u.reports.SaleLines(ctx, rg)
	if err != nil {
		return RevenueReport{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	return RevenueReport{
		GroupBy:   g,
		StartDate: rg.From.Format(dateLayout),
		EndDate:   rg.To.Format(dateLayout),
		Rows:      AggregateRevenue(lines, g, u.clock.Now().Location()),
	}, nil
}

type revenueBucket struct {
	key      string
	revenue  decimal.Decimal
	quantity int64
	// 商品名 → 数量。orderは最初に出てきた順
	perItem map[string]int64
	order   []string
}

// linesは古い順であること。
// 同数のときは先に出てきた商品を一番とする
func AggregateRevenue(lines []model.SaleLine, g GroupBy, loc *time.Location) []RevenueRow {
	buckets := map[string]*revenueBucket{}
	for _, l := range lines {
		key := g.Key(l.OrderedAt.In(loc))
		b, ok := buckets[key]
		if !ok {
			b = &revenueBucket{key: key, revenue: decimal.Zero, perItem: map[string]int64{}}
			buckets[key] = b
		}
		b.revenue = b.revenue.Add(pricing.Line{UnitPrice: l.DiscountedPrice, Quantity: l.Quantity}.Subtotal())
		b.quantity += l.Quantity
		if _, seen := b.perItem[l.ItemName]; !seen {
			b.order = append(b.order, l.ItemName)
		}
		b.perItem[l.ItemName] += l.Quantity
	}

	rows := make([]RevenueRow, 0, len(buckets))
	for _, b := range buckets {
		best := ""
		var bestQty int64 = -1
		for _, name := range b.order {
			if b.perItem[name] > bestQty {
				best, bestQty = name, b.perItem[name]
			}
		}
		rows = append(rows, RevenueRow{
			Period:          b.key,
			TotalRevenue:    money(b.revenue.Round(pricing.Places)),
			TotalQuantity:   b.quantity,
			MostPopularItem: best,
		})
	}

	// 新しい期間が先
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period > rows[j].Period })
	return rows
}

// 既定は1か月前〜今日。終了日はその日の終わりまで含む
func (u *ReportUsecase) parseRange(q ReportQuery) (repo.ReportRange, error) {
	now := u.clock.Now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	end := today
	if q.EndDate != "" {
		t, err := time.ParseInLocation(dateLayout, q.EndDate, loc)
		if err != nil {
			return repo.ReportRange{}, NewHTTPError(http.StatusBadRequest, "invalid end_date")
		}
		end = t
	}

	start := end.AddDate(0, -1, 0)
	if q.StartDate != "" {
		t, err := time.ParseInLocation(dateLayout, q.StartDate, loc)
		if err != nil {
			return repo.ReportRange{}, NewHTTPError(http.StatusBadRequest, "invalid start_date")
		}
		start = t
	}

	if start.After(end) {
		return repo.ReportRange{}, NewHTTPError(http.StatusBadRequest, "start_date must be before end_date")
	}

	return repo.ReportRange{
		From: start,
		To:   end.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}, nil
}

package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/alihassan193/snooker-console/internal/domain"
)

const dateLayout = "2006-01-02"

type ExpenseInput struct {
	ClubID      uint            `json:"club_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	ExpenseDate string          `json:"expense_date"`
}

func (in ExpenseInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.ClubID, validation.Required),
		validation.Field(&in.Amount, validation.By(positive)),
		validation.Field(&in.Category, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.Description, validation.Length(0, 500)),
		validation.Field(&in.ExpenseDate, validation.Required, validation.Date(dateLayout)),
	)
}

type ReportService struct {
	gw Gateway
}

func NewReportService(gw Gateway) *ReportService {
	return &ReportService{
		gw: gw,
	}
}

func (s *ReportService) Daily(ctx context.Context, clubID uint, day time.Time) (domain.DailyReport, error) {
	q := url.Values{}
	q.Set("date", day.Format(dateLayout))
	if clubID != 0 {
		q.Set("club_id", strconv.FormatUint(uint64(clubID), 10))
	}

	var report domain.DailyReport
	if err := s.gw.Get(ctx, withQuery("/reports/daily", q), &report); err != nil {
		return domain.DailyReport{}, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return report, nil
}

func (s *ReportService) Revenue(ctx context.Context, clubID uint, from, to time.Time) (domain.RevenueReport, error) {
	if to.Before(from) {
		return domain.RevenueReport{}, fmt.Errorf("%w: report range ends before it starts", ErrValidation)
	}

	q := url.Values{}
	q.Set("from", from.Format(dateLayout))
	q.Set("to", to.Format(dateLayout))
	if clubID != 0 {
		q.Set("club_id", strconv.FormatUint(uint64(clubID), 10))
	}

	var report domain.RevenueReport
	if err := s.gw.Get(ctx, withQuery("/reports/revenue", q), &report); err != nil {
		return domain.RevenueReport{}, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return report, nil
}

func (s *ReportService) Expenses(ctx context.Context, clubID uint) ([]domain.Expense, error) {
	q := url.Values{}
	if clubID != 0 {
		q.Set("club_id", strconv.FormatUint(uint64(clubID), 10))
	}

	var expenses []domain.Expense
	if err := s.gw.Get(ctx, withQuery("/expenses", q), &expenses); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return expenses, nil
}

func (s *ReportService) CreateExpense(ctx context.Context, in ExpenseInput) (domain.Expense, error) {
	if err := validate(in); err != nil {
		return domain.Expense{}, err
	}

	var expense domain.Expense
	if err := s.gw.Post(ctx, "/expenses", in, &expense); err != nil {
		return domain.Expense{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return expense, nil
}

package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/api/middleware"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

const dateLayout = "2006-01-02"

type ReportService interface {
	Daily(ctx context.Context, clubID uint, day time.Time) (domain.DailyReport, error)
	Revenue(ctx context.Context, clubID uint, from, to time.Time) (domain.RevenueReport, error)
	Expenses(ctx context.Context, clubID uint) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, in service.ExpenseInput) (domain.Expense, error)
}

type ReportHandler struct {
	svc ReportService
	now func() time.Time
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{
		svc: svc,
		now: time.Now,
	}
}

// clubScope is the operator's own club; admins may pick one with ?club_id=.
func clubScope(ctx *gin.Context) (uint, *response.Err) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return 0, response.ErrLoginRequired(errNoOperator)
	}
	if user.ClubID != nil && user.Role == domain.RoleManager {
		return *user.ClubID, nil
	}

	clubID, errResp := uintQuery(ctx, "club_id")
	if errResp != nil {
		return 0, errResp
	}
	if clubID == 0 && user.ClubID != nil {
		clubID = *user.ClubID
	}

	return clubID, nil
}

func dateQuery(ctx *gin.Context, name string, fallback time.Time) (time.Time, *response.Err) {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback, nil
	}

	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, response.ErrBadRequest(fmt.Errorf("invalid %s: %w", name, err))
	}

	return day, nil
}

// HandleDailyReport godoc
// @Summary      Daily summary
// @Tags         reports
// @Produce      json
// @Param        date     query     string  false  "YYYY-MM-DD, defaults to today"
// @Param        club_id  query     int     false  "club, admins only"
// @Success      200      {object}  domain.DailyReport
// @Failure      403      {object}  response.Err
// @Router       /reports/daily [get]
// @Security BearerAuth
func (h *ReportHandler) HandleDailyReport(ctx *gin.Context) {
	clubID, errResp := clubScope(ctx)
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}
	day, errResp := dateQuery(ctx, "date", h.now())
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	report, err := h.svc.Daily(ctx.Request.Context(), clubID, day)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleDailyReport -> h.svc.Daily -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// HandleRevenueReport godoc
// @Summary      Revenue over a date range
// @Tags         reports
// @Produce      json
// @Param        from     query     string  false  "YYYY-MM-DD, defaults to 30 days ago"
// @Param        to       query     string  false  "YYYY-MM-DD, defaults to today"
// @Success      200      {object}  domain.RevenueReport
// @Failure      400      {object}  response.Err
// @Router       /reports/revenue [get]
// @Security BearerAuth
func (h *ReportHandler) HandleRevenueReport(ctx *gin.Context) {
	clubID, errResp := clubScope(ctx)
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}
	today := h.now()
	from, errResp := dateQuery(ctx, "from", today.AddDate(0, 0, -30))
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}
	to, errResp := dateQuery(ctx, "to", today)
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	report, err := h.svc.Revenue(ctx.Request.Context(), clubID, from, to)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleRevenueReport -> h.svc.Revenue -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, report)
}

func (h *ReportHandler) HandleListExpenses(ctx *gin.Context) {
	clubID, errResp := clubScope(ctx)
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	expenses, err := h.svc.Expenses(ctx.Request.Context(), clubID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleListExpenses -> h.svc.Expenses -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, expenses)
}

// HandleCreateExpense godoc
// @Summary      Record a club expense
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request  body      request.ExpenseRequest  true  "request body"
// @Success      201      {object}  domain.Expense
// @Failure      400      {object}  response.Err
// @Router       /reports/expenses [post]
// @Security BearerAuth
func (h *ReportHandler) HandleCreateExpense(ctx *gin.Context) {
	clubID, errResp := clubScope(ctx)
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.ExpenseRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	expense, err := h.svc.CreateExpense(ctx.Request.Context(), service.ExpenseInput{
		ClubID:      clubID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleCreateExpense -> h.svc.CreateExpense -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, expense)
}

package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alihassan193/snooker-console/internal/api/handler/v1/request"
	"github.com/alihassan193/snooker-console/internal/api/handler/v1/response"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

type InvoiceService interface {
	List(ctx context.Context, status domain.PaymentStatus, page int) ([]domain.Invoice, error)
	Get(ctx context.Context, id uint) (domain.Invoice, error)
	UpdateStatus(ctx context.Context, id uint, in service.InvoiceStatusInput) (domain.Invoice, error)
}

type InvoiceHandler struct {
	svc InvoiceService
}

func NewInvoiceHandler(svc InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		svc: svc,
	}
}

// HandleListInvoices godoc
// @Summary      Invoices
// @Tags         invoices
// @Produce      json
// @Param        payment_status  query     string  false  "pending, paid or cancelled"
// @Param        page            query     int     false  "page"
// @Success      200             {array}   domain.Invoice
// @Router       /invoices [get]
// @Security BearerAuth
func (h *InvoiceHandler) HandleListInvoices(ctx *gin.Context) {
	page, errResp := intQuery(ctx, "page")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	invoices, err := h.svc.List(ctx.Request.Context(), domain.PaymentStatus(ctx.Query("payment_status")), page)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleListInvoices -> h.svc.List -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, invoices)
}

// HandleGetInvoice godoc
// @Summary      One invoice
// @Tags         invoices
// @Produce      json
// @Param        invoiceID  path      int  true  "invoice ID"
// @Success      200        {object}  domain.Invoice
// @Failure      404        {object}  response.Err
// @Router       /invoices/{invoiceID} [get]
// @Security BearerAuth
func (h *InvoiceHandler) HandleGetInvoice(ctx *gin.Context) {
	invoiceID, errResp := uintParam(ctx, "invoiceID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	invoice, err := h.svc.Get(ctx.Request.Context(), invoiceID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleGetInvoice -> h.svc.Get -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, invoice)
}

// HandleUpdateInvoiceStatus godoc
// @Summary      Mark an invoice paid or cancelled
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoiceID  path      int                           true  "invoice ID"
// @Param        request    body      request.InvoiceStatusRequest  true  "request body"
// @Success      200        {object}  domain.Invoice
// @Failure      400        {object}  response.Err
// @Router       /invoices/{invoiceID}/status [patch]
// @Security BearerAuth
func (h *InvoiceHandler) HandleUpdateInvoiceStatus(ctx *gin.Context) {
	invoiceID, errResp := uintParam(ctx, "invoiceID")
	if errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	var req request.InvoiceStatusRequest
	if errResp = bindJSON(ctx, &req); errResp != nil {
		response.RenderErr(ctx, errResp)
		return
	}

	invoice, err := h.svc.UpdateStatus(ctx.Request.Context(), invoiceID, service.InvoiceStatusInput{
		PaymentStatus: domain.PaymentStatus(req.PaymentStatus),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Errorf("v1.HandleUpdateInvoiceStatus -> h.svc.UpdateStatus -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, invoice)
}

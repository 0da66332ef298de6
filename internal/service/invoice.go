package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/alihassan193/snooker-console/internal/domain"
)

type InvoiceStatusInput struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	PaymentMethod string               `json:"payment_method,omitempty"`
}

func (in InvoiceStatusInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.PaymentStatus, validation.Required,
			validation.In(domain.PaymentPending, domain.PaymentPaid, domain.PaymentCancelled)),
		validation.Field(&in.PaymentMethod, validation.By(func(any) error {
			if in.PaymentStatus == domain.PaymentPaid && in.PaymentMethod == "" {
				return errors.New("is required when marking an invoice paid")
			}
			return nil
		})),
	)
}

type InvoiceService struct {
	gw Gateway
}

func NewInvoiceService(gw Gateway) *InvoiceService {
	return &InvoiceService{
		gw: gw,
	}
}

func (s *InvoiceService) List(ctx context.Context, status domain.PaymentStatus, page int) ([]domain.Invoice, error) {
	q := url.Values{}
	if status != "" {
		q.Set("payment_status", string(status))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var invoices []domain.Invoice
	if err := s.gw.Get(ctx, withQuery("/invoices", q), &invoices); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return invoices, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (domain.Invoice, error) {
	var invoice domain.Invoice
	if err := s.gw.Get(ctx, resourcePath("/invoices", id), &invoice); err != nil {
		return domain.Invoice{}, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return invoice, nil
}

func (s *InvoiceService) UpdateStatus(ctx context.Context, id uint, in InvoiceStatusInput) (domain.Invoice, error) {
	if err := validate(in); err != nil {
		return domain.Invoice{}, err
	}

	var invoice domain.Invoice
	if err := s.gw.Patch(ctx, resourcePath("/invoices", id, "status"), in, &invoice); err != nil {
		return domain.Invoice{}, fmt.Errorf("s.gw.Patch -> %w", err)
	}

	return invoice, nil
}

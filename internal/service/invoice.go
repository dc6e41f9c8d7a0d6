package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"constructerp/internal/model"
	"constructerp/internal/store"

	"github.com/go-playground/validator/v10"
)

// NewInvoice is a create-invoice request. Empty optional fields get defaults.
type NewInvoice struct {
	InvoiceNumber string              `json:"invoiceNumber" validate:"omitempty,max=32"`
	ProjectID     int                 `json:"projectId" validate:"gt=0"`
	VendorName    string              `json:"vendorName" validate:"required,max=120"`
	Amount        float64             `json:"amount" validate:"gt=0,lt=1000000000000"`
	Status        model.InvoiceStatus `json:"status" validate:"omitempty,oneof=Paid Pending Overdue"`
	DueDate       string              `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Currency      string              `json:"currency" validate:"omitempty,iso4217"`
}

// Invoice defaults.
const (
	DefaultCurrency  = "USD"
	DefaultDueInDays = 30
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// CreateInvoice validates req, fills defaults, and stores the invoice on
// behalf of actor.
func (s *Service) CreateInvoice(ctx context.Context, actor string, req NewInvoice) (model.Invoice, error) {
	if err := wait(ctx, s.latency.CreateInvoice); err != nil {
		return model.Invoice{}, err
	}

	req.VendorName = strings.TrimSpace(req.VendorName)
	req.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))

	if err := validate.Struct(req); err != nil {
		return model.Invoice{}, fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}

	if _, err := s.repo.Project(ctx, req.ProjectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Invoice{}, fmt.Errorf("%w: unknown project %d", ErrInvalidInput, req.ProjectID)
		}
		return model.Invoice{}, err
	}

	inv := s.withDefaults(req)
	created, err := s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return model.Invoice{}, err
	}

	s.audit(ctx, model.AuditEntry{
		Actor:  actor,
		Action: model.ActionInvoiceCreated,
		Target: created.InvoiceNumber,
		Detail: fmt.Sprintf("%s %.2f %s", created.VendorName, created.Amount, created.Currency),
	})
	s.log.Info("invoice created",
		"id", created.ID, "number", created.InvoiceNumber,
		"project", created.ProjectID, "amount", created.Amount, "actor", actor)

	return created, nil
}

func (s *Service) withDefaults(req NewInvoice) model.Invoice {
	now := s.now()
	inv := model.Invoice{
		InvoiceNumber: req.InvoiceNumber,
		ProjectID:     req.ProjectID,
		VendorName:    req.VendorName,
		Amount:        req.Amount,
		Status:        req.Status,
		DueDate:       req.DueDate,
		Currency:      req.Currency,
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = fmt.Sprintf("INV-%d", now.UnixMilli())
	}
	if inv.Status == "" {
		inv.Status = model.InvoicePending
	}
	if inv.DueDate == "" {
		inv.DueDate = now.AddDate(0, 0, DefaultDueInDays).Format(time.DateOnly)
	}
	if inv.Currency == "" {
		inv.Currency = DefaultCurrency
	}
	return inv
}

// describe turns validator errors into one readable line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "lt", "max":
			msgs = append(msgs, fmt.Sprintf("%s is too large", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		case "datetime":
			msgs = append(msgs, fe.Field()+" must be a YYYY-MM-DD date")
		case "iso4217":
			msgs = append(msgs, fe.Field()+" must be an ISO 4217 currency code")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

package http

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs go-playground/validator into echo's Bind/Validate
// cycle.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates the request validator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate checks a bound request struct against its validate tags.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateWorkOrderRequest opens a new work order at intake.
type CreateWorkOrderRequest struct {
	CustomerID   string `json:"customer_id" validate:"required,uuid"`
	DeviceID     string `json:"device_id" validate:"required,uuid"`
	DeviceModel  string `json:"device_model" validate:"required"`
	DeviceSecret string `json:"device_secret"`
}

// CreateWorkOrderResponse returns the id of the opened order.
type CreateWorkOrderResponse struct {
	ID string `json:"id"`
}

// StatusMetadataRequest carries the per-target transition data.
type StatusMetadataRequest struct {
	Reason         string `json:"reason"`
	DeviceLocation string `json:"device_location"`
	Supplier       string `json:"supplier"`
	Tracking       string `json:"tracking"`
	PartName       string `json:"part_name"`
	Shop           string `json:"shop"`
	Work           string `json:"work"`
}

// ChangeStatusRequest proposes a status transition.
type ChangeStatusRequest struct {
	Target          string                `json:"target" validate:"required"`
	Note            string                `json:"note"`
	CustomerVisible bool                  `json:"customer_visible"`
	CloseAnyway     bool                  `json:"close_anyway"`
	Metadata        StatusMetadataRequest `json:"metadata"`
}

// DecisionResponse reports the structured outcome of a proposed transition.
// Result is "committed", "needs_input", or "balance_conflict"; the other
// fields are populated per result.
type DecisionResponse struct {
	Result         string   `json:"result"`
	RequiredFields []string `json:"required_fields,omitempty"`
	BalanceDue     string   `json:"balance_due,omitempty"`
	Options        []string `json:"options,omitempty"`
}

// ProcessPaymentRequest records a payment or deposit.
type ProcessPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required"`
	Mode   string `json:"mode" validate:"required"`
}

// ProcessPaymentResponse reports what the payment did to the ledger.
type ProcessPaymentResponse struct {
	PaymentID        string `json:"payment_id"`
	Applied          string `json:"applied"`
	ChangeGiven      string `json:"change_given"`
	TotalPaid        string `json:"total_paid"`
	BalanceDue       string `json:"balance_due"`
	IsPaid           bool   `json:"is_paid"`
	AutoTransitioned bool   `json:"auto_transitioned"`
}

// AddLineItemRequest bills a product or service on an order.
type AddLineItemRequest struct {
	Kind      string `json:"kind" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	SourceID  string `json:"source_id" validate:"omitempty,uuid"`
}

// AddNoteRequest appends an operator note to the activity trail.
type AddNoteRequest struct {
	Text string `json:"text" validate:"required"`
}

// SetDiscountRequest replaces the order-level discount.
type SetDiscountRequest struct {
	Discount string `json:"discount" validate:"required"`
}

// DeleteNoteEventRequest carries the operator credential gating note
// deletion.
type DeleteNoteEventRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// LineItemView is one billed item in a work-order response.
type LineItemView struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

// HistoryEntryView is one committed transition in a work-order response.
type HistoryEntryView struct {
	Status          string    `json:"status"`
	StatusLabel     string    `json:"status_label"`
	OccurredAt      time.Time `json:"occurred_at"`
	ActorName       string    `json:"actor_name"`
	Note            string    `json:"note,omitempty"`
	CustomerVisible bool      `json:"customer_visible"`
}

// WorkOrderView is the full work-order read model. The device secret field
// only ever carries the redaction marker.
type WorkOrderView struct {
	ID             string             `json:"id"`
	CustomerID     string             `json:"customer_id"`
	DeviceID       string             `json:"device_id"`
	DeviceModel    string             `json:"device_model"`
	TechnicianID   string             `json:"technician_id,omitempty"`
	DeviceSecret   string             `json:"device_secret,omitempty"`
	Status         string             `json:"status"`
	StatusLabel    string             `json:"status_label"`
	StatusMetadata map[string]any     `json:"status_metadata,omitempty"`
	LineItems      []LineItemView     `json:"line_items"`
	Subtotal       string             `json:"subtotal"`
	Tax            string             `json:"tax"`
	Total          string             `json:"total"`
	TotalPaid      string             `json:"total_paid"`
	BalanceDue     string             `json:"balance_due"`
	History        []HistoryEntryView `json:"history"`
	Version        int                `json:"version"`
}

// ActiveWorkOrderView is one row of the active-order board.
type ActiveWorkOrderView struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	DeviceModel  string `json:"device_model"`
	TechnicianID string `json:"technician_id,omitempty"`
	Status       string `json:"status"`
	StatusLabel  string `json:"status_label"`
	TotalPaid    string `json:"total_paid"`
}

// EventView is one activity-trail entry.
type EventView struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	ActorName   string         `json:"actor_name"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// Package http exposes the work-order core over a JSON API. Handlers bind
// and validate request DTOs, translate them into commands and queries, and
// map domain errors onto HTTP status codes. All business rules stay below
// this layer.
package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartfixosapp/smartfixos/internal/core/application/usecases/commands"
	"github.com/smartfixosapp/smartfixos/internal/core/application/usecases/queries"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/workorder"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/services"
	"github.com/smartfixosapp/smartfixos/internal/pkg/errs"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createWorkOrderHandler commands.CreateWorkOrderCommandHandler
	changeStatusHandler    commands.ChangeStatusCommandHandler
	processPaymentHandler  commands.ProcessPaymentCommandHandler
	addLineItemHandler     commands.AddLineItemCommandHandler
	removeLineItemHandler  commands.RemoveLineItemCommandHandler
	setDiscountHandler     commands.SetDiscountCommandHandler
	addNoteHandler         commands.AddNoteCommandHandler
	deleteNoteEventHandler commands.DeleteNoteEventCommandHandler

	// Query handlers
	getWorkOrderHandler       queries.GetWorkOrderQueryHandler
	getActiveWorkOrdersHandler queries.GetActiveWorkOrdersQueryHandler
	getWorkOrderEventsHandler  queries.GetWorkOrderEventsQueryHandler
}

// NewServer creates an HTTP server with the required command and query
// handlers.
func NewServer(
	createWorkOrderHandler commands.CreateWorkOrderCommandHandler,
	changeStatusHandler commands.ChangeStatusCommandHandler,
	processPaymentHandler commands.ProcessPaymentCommandHandler,
	addLineItemHandler commands.AddLineItemCommandHandler,
	removeLineItemHandler commands.RemoveLineItemCommandHandler,
	setDiscountHandler commands.SetDiscountCommandHandler,
	addNoteHandler commands.AddNoteCommandHandler,
	deleteNoteEventHandler commands.DeleteNoteEventCommandHandler,
	getWorkOrderHandler queries.GetWorkOrderQueryHandler,
	getActiveWorkOrdersHandler queries.GetActiveWorkOrdersQueryHandler,
	getWorkOrderEventsHandler queries.GetWorkOrderEventsQueryHandler,
) *Server {
	return &Server{
		createWorkOrderHandler:     createWorkOrderHandler,
		changeStatusHandler:        changeStatusHandler,
		processPaymentHandler:      processPaymentHandler,
		addLineItemHandler:         addLineItemHandler,
		removeLineItemHandler:      removeLineItemHandler,
		setDiscountHandler:         setDiscountHandler,
		addNoteHandler:             addNoteHandler,
		deleteNoteEventHandler:     deleteNoteEventHandler,
		getWorkOrderHandler:        getWorkOrderHandler,
		getActiveWorkOrdersHandler: getActiveWorkOrdersHandler,
		getWorkOrderEventsHandler:  getWorkOrderEventsHandler,
	}
}

// RegisterRoutes mounts all routes behind the authentication middleware.
func (s *Server) RegisterRoutes(e *echo.Echo, auth *Authenticator) {
	api := e.Group("/api/v1", auth.Middleware())

	api.POST("/orders", s.CreateWorkOrder)
	api.GET("/orders/active", s.GetActiveWorkOrders)
	api.GET("/orders/:id", s.GetWorkOrder)
	api.POST("/orders/:id/status", s.ChangeStatus)
	api.POST("/orders/:id/payments", s.ProcessPayment)
	api.POST("/orders/:id/items", s.AddLineItem)
	api.DELETE("/orders/:id/items/:itemID", s.RemoveLineItem)
	api.PUT("/orders/:id/discount", s.SetDiscount)
	api.POST("/orders/:id/notes", s.AddNote)
	api.GET("/orders/:id/events", s.GetWorkOrderEvents)
	api.DELETE("/events/:id", s.DeleteNoteEvent)
}

// CreateWorkOrder handles POST /api/v1/orders.
func (s *Server) CreateWorkOrder(ctx echo.Context) error {
	var req CreateWorkOrderRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}

	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return badRequest(ctx, err)
	}
	deviceID, err := kernel.UUIDFromString(req.DeviceID)
	if err != nil {
		return badRequest(ctx, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateWorkOrderCommand(
		orderID, customerID, deviceID, req.DeviceModel, req.DeviceSecret)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.createWorkOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateWorkOrderResponse{ID: orderID.String()})
}

// GetWorkOrder handles GET /api/v1/orders/:id.
func (s *Server) GetWorkOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	query, err := queries.NewGetWorkOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, err)
	}

	order, err := s.getWorkOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, workOrderView(order))
}

// GetActiveWorkOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveWorkOrders(ctx echo.Context) error {
	query := queries.NewGetActiveWorkOrdersQuery()

	orders, err := s.getActiveWorkOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]ActiveWorkOrderView, 0, len(orders))
	for _, order := range orders {
		view := ActiveWorkOrderView{
			ID:          order.ID.String(),
			CustomerID:  order.CustomerID.String(),
			DeviceModel: order.DeviceModel,
			Status:      order.Status,
			StatusLabel: order.StatusLabel,
			TotalPaid:   order.TotalPaid.String(),
		}
		if order.TechnicianID != nil {
			view.TechnicianID = order.TechnicianID.String()
		}
		response = append(response, view)
	}

	return ctx.JSON(http.StatusOK, response)
}

// ChangeStatus handles POST /api/v1/orders/:id/status. A committed
// transition returns 200 with result "committed"; needs_input and
// balance_conflict outcomes return 409 with the data the caller needs to
// resubmit.
func (s *Server) ChangeStatus(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var req ChangeStatusRequest
	if err = bindAndValidate(ctx, &req); err != nil {
		return err
	}

	target, err := workorder.StatusFromString(req.Target)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewChangeStatusCommand(
		orderID,
		target,
		req.Note,
		req.CustomerVisible,
		workorder.StatusMetadata{
			Reason:         req.Metadata.Reason,
			DeviceLocation: workorder.DeviceLocation(req.Metadata.DeviceLocation),
			Supplier:       req.Metadata.Supplier,
			Tracking:       req.Metadata.Tracking,
			PartName:       req.Metadata.PartName,
			Shop:           req.Metadata.Shop,
			Work:           req.Metadata.Work,
		},
		req.CloseAnyway,
	)
	if err != nil {
		return badRequest(ctx, err)
	}

	decision, err := s.changeStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	response := decisionView(decision)
	if decision.IsCommit() {
		return ctx.JSON(http.StatusOK, response)
	}
	return ctx.JSON(http.StatusConflict, response)
}

// ProcessPayment handles POST /api/v1/orders/:id/payments.
func (s *Server) ProcessPayment(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var req ProcessPaymentRequest
	if err = bindAndValidate(ctx, &req); err != nil {
		return err
	}

	amount, err := kernel.MoneyFromString(req.Amount)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewProcessPaymentCommand(
		orderID, amount, payment.Method(req.Method), payment.Mode(req.Mode))
	if err != nil {
		return badRequest(ctx, err)
	}

	result, err := s.processPaymentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ProcessPaymentResponse{
		PaymentID:        result.Record.ID().String(),
		Applied:          result.Record.Amount().String(),
		ChangeGiven:      result.Record.ChangeGiven().String(),
		TotalPaid:        result.Outcome.NewTotalPaid.String(),
		BalanceDue:       result.Outcome.NewBalance.String(),
		IsPaid:           result.Outcome.IsPaid,
		AutoTransitioned: result.AutoTransitioned,
	})
}

// AddLineItem handles POST /api/v1/orders/:id/items.
func (s *Server) AddLineItem(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var req AddLineItemRequest
	if err = bindAndValidate(ctx, &req); err != nil {
		return err
	}

	kind, err := workorder.LineItemKindFromString(req.Kind)
	if err != nil {
		return badRequest(ctx, err)
	}
	unitPrice, err := kernel.MoneyFromString(req.UnitPrice)
	if err != nil {
		return badRequest(ctx, err)
	}

	var sourceID *kernel.UUID
	if req.SourceID != "" {
		sID, sErr := kernel.UUIDFromString(req.SourceID)
		if sErr != nil {
			return badRequest(ctx, sErr)
		}
		sourceID = &sID
	}

	item, err := workorder.NewLineItem(
		kernel.NewUUID(), kind, sourceID, req.Name, unitPrice, req.Quantity)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewAddLineItemCommand(orderID, item)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.addLineItemHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, LineItemView{
		ID:        item.ID().String(),
		Kind:      item.Kind().String(),
		Name:      item.Name(),
		UnitPrice: item.UnitPrice().String(),
		Quantity:  item.Quantity(),
		Total:     item.Total().String(),
	})
}

// RemoveLineItem handles DELETE /api/v1/orders/:id/items/:itemID.
func (s *Server) RemoveLineItem(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}
	itemID, err := pathUUID(ctx, "itemID")
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewRemoveLineItemCommand(orderID, itemID)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.removeLineItemHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// SetDiscount handles PUT /api/v1/orders/:id/discount.
func (s *Server) SetDiscount(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var req SetDiscountRequest
	if err = bindAndValidate(ctx, &req); err != nil {
		return err
	}

	discount, err := kernel.MoneyFromString(req.Discount)
	if err != nil {
		return badRequest(ctx, err)
	}

	cmd, err := commands.NewSetDiscountCommand(orderID, discount)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.setDiscountHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AddNote handles POST /api/v1/orders/:id/notes.
func (s *Server) AddNote(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var req AddNoteRequest
	if err = bindAndValidate(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewAddNoteCommand(orderID, req.Text)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.addNoteHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusCreated)
}

// GetWorkOrderEvents handles GET /api/v1/orders/:id/events.
func (s *Server) GetWorkOrderEvents(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	query, err := queries.NewGetWorkOrderEventsQuery(orderID)
	if err != nil {
		return badRequest(ctx, err)
	}

	events, err := s.getWorkOrderEventsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]EventView, 0, len(events))
	for _, ev := range events {
		response = append(response, EventView{
			ID:          ev.ID.String(),
			Type:        ev.Type,
			Description: ev.Description,
			ActorName:   ev.ActorName,
			Metadata:    ev.Metadata,
			OccurredAt:  ev.OccurredAt,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// DeleteNoteEvent handles DELETE /api/v1/events/:id.
func (s *Server) DeleteNoteEvent(ctx echo.Context) error {
	eventID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, err)
	}

	var req DeleteNoteEventRequest
	if err = bindAndValidate(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewDeleteNoteEventCommand(eventID, req.Credential)
	if err != nil {
		return badRequest(ctx, err)
	}

	if err = s.deleteNoteEventHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func bindAndValidate(ctx echo.Context, req any) error {
	if err := ctx.Bind(req); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "invalid request body",
		})
	}
	if err := ctx.Validate(req); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	return nil
}

func pathUUID(ctx echo.Context, param string) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param(param))
}

func badRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
	})
}

// domainError maps domain and infrastructure errors onto HTTP status codes.
func domainError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, ErrNoActor):
		code = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, errs.ErrVersionIsInvalid):
		code = http.StatusConflict
		message = err.Error()
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
		message = err.Error()
	}

	return ctx.JSON(code, ErrorResponse{Code: code, Message: message})
}

func workOrderView(order queries.GetWorkOrderQueryResponse) WorkOrderView {
	items := make([]LineItemView, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		items = append(items, LineItemView{
			ID:        item.ID.String(),
			Kind:      item.Kind,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
			Total:     item.Total.String(),
		})
	}

	history := make([]HistoryEntryView, 0, len(order.History))
	for _, entry := range order.History {
		history = append(history, HistoryEntryView{
			Status:          entry.Status,
			StatusLabel:     entry.StatusLabel,
			OccurredAt:      entry.OccurredAt,
			ActorName:       entry.ActorName,
			Note:            entry.Note,
			CustomerVisible: entry.CustomerVisible,
		})
	}

	view := WorkOrderView{
		ID:             order.ID.String(),
		CustomerID:     order.CustomerID.String(),
		DeviceID:       order.DeviceID.String(),
		DeviceModel:    order.DeviceModel,
		DeviceSecret:   order.DeviceSecret,
		Status:         order.Status,
		StatusLabel:    order.StatusLabel,
		StatusMetadata: order.StatusMetadata,
		LineItems:      items,
		Subtotal:       order.Subtotal.String(),
		Tax:            order.Tax.String(),
		Total:          order.Total.String(),
		TotalPaid:      order.TotalPaid.String(),
		BalanceDue:     order.BalanceDue.String(),
		History:        history,
		Version:        order.Version,
	}
	if order.TechnicianID != nil {
		view.TechnicianID = order.TechnicianID.String()
	}

	return view
}

func decisionView(decision services.Decision) DecisionResponse {
	switch decision.Kind() {
	case services.DecisionNeedsInput:
		return DecisionResponse{
			Result:         "needs_input",
			RequiredFields: decision.RequiredFields,
		}
	case services.DecisionBalanceConflict:
		options := make([]string, 0, len(decision.Options))
		for _, option := range decision.Options {
			options = append(options, string(option))
		}
		return DecisionResponse{
			Result:     "balance_conflict",
			BalanceDue: decision.BalanceDue.String(),
			Options:    options,
		}
	default:
		return DecisionResponse{Result: "committed"}
	}
}

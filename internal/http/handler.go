package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/ringo-orders/internal/http/middleware"
	"github.com/nurpe/ringo-orders/internal/model"
	"github.com/nurpe/ringo-orders/internal/service"
)

type Handler struct {
	orders *service.OrderService
	log    zerolog.Logger
}

func NewHandler(orders *service.OrderService, log zerolog.Logger) *Handler {
	return &Handler{orders: orders, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/orders", h.createOrder)
	protected.GET("/orders/:id", h.getOrder)
	protected.PUT("/orders/:id/items", h.updateItems)
	protected.POST("/orders/:id/complete", h.completeOrder)
	protected.POST("/orders/:id/status", h.changeStatus)
	protected.GET("/orders/:id/invoice", h.getInvoice)
	protected.POST("/orders/preview", h.previewOrder)
	protected.POST("/orders/export", h.exportOrders)
}

type itemRequest struct {
	ItemType  string             `json:"item_type" binding:"required"`
	Name      string             `json:"name"`
	Quantity  jsonDecimal        `json:"quantity"`
	Unit      string             `json:"unit"`
	UnitPrice jsonDecimal        `json:"unit_price"`
	TaxRate   jsonDecimal        `json:"tax_rate"`
	Discount  jsonDecimal        `json:"discount"`
	Metadata  model.ItemMetadata `json:"metadata"`
}

type createOrderRequest struct {
	Number      string          `json:"number"`
	ClientID    string          `json:"client_id"`
	Address     string          `json:"address"`
	Description string          `json:"description"`
	StartDT     string          `json:"start_dt" binding:"required"`
	EndDT       string          `json:"end_dt"`
	Prepayment  jsonDecimal     `json:"prepayment_amount"`
	Meta        model.OrderMeta `json:"meta"`
	Items       []itemRequest   `json:"items"`
}

func (h *Handler) createOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.StartDT)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_dt"})
		return
	}
	end, err := parseOptionalDate(req.EndDT)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_dt"})
		return
	}

	input := service.CreateOrderInput{
		Principal:   principal,
		Number:      strings.TrimSpace(req.Number),
		Address:     req.Address,
		Description: req.Description,
		StartDT:     start,
		EndDT:       end,
		Prepayment:  req.Prepayment.Decimal,
		Meta:        req.Meta,
		Items:       toItemInputs(req.Items),
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		input.ClientID = &clientID
	}

	order, items, err := h.orders.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order, items))
}

func (h *Handler) getOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, items, err := h.orders.Get(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, items))
}

type updateItemsRequest struct {
	EndDT      string        `json:"end_dt"`
	Prepayment *jsonDecimal  `json:"prepayment_amount"`
	Items      []itemRequest `json:"items"`
}

func (h *Handler) updateItems(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req updateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := parseOptionalDate(req.EndDT)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_dt"})
		return
	}

	input := service.UpdateItemsInput{
		Principal: principal,
		OrderID:   id,
		EndDT:     end,
		Items:     toItemInputs(req.Items),
	}
	if req.Prepayment != nil {
		input.Prepayment = &req.Prepayment.Decimal
	}

	order, items, err := h.orders.UpdateItems(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, items))
}

type completeOrderRequest struct {
	EndDT string        `json:"end_dt" binding:"required"`
	Items []itemRequest `json:"items"`
}

func (h *Handler) completeOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req completeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := parseDate(req.EndDT)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_dt"})
		return
	}

	order, items, err := h.orders.Complete(c.Request.Context(), service.CompleteOrderInput{
		Principal: principal,
		OrderID:   id,
		EndDT:     end,
		Items:     toItemInputs(req.Items),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, items))
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) changeStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	to := model.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err := h.orders.ChangeStatus(c.Request.Context(), id, to, principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(to)})
}

type previewRequest struct {
	StartDT    string          `json:"start_dt" binding:"required"`
	EndDT      string          `json:"end_dt"`
	Prepayment jsonDecimal     `json:"prepayment_amount"`
	Meta       model.OrderMeta `json:"meta"`
	Items      []itemRequest   `json:"items"`
}

func (h *Handler) previewOrder(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := parseDate(req.StartDT)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_dt"})
		return
	}
	end, err := parseOptionalDate(req.EndDT)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_dt"})
		return
	}

	snapshot, err := h.orders.Preview(c.Request.Context(), service.PreviewInput{
		Principal:  principal,
		StartDT:    start,
		EndDT:      end,
		Prepayment: req.Prepayment.Decimal,
		Meta:       req.Meta,
		Items:      toItemInputs(req.Items),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) getInvoice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	result, err := h.orders.Invoice(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type exportOrdersRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func (h *Handler) exportOrders(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := parseDate(req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return
	}

	result, err := h.orders.ExportOrders(c.Request.Context(), service.ExportInput{
		Principal:   principal,
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoSnapshot):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("order request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func toItemInputs(items []itemRequest) []service.ItemInput {
	inputs := make([]service.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.ItemInput{
			ItemType:  model.ItemType(strings.ToLower(strings.TrimSpace(item.ItemType))),
			Name:      item.Name,
			Quantity:  item.Quantity.Decimal,
			Unit:      item.Unit,
			UnitPrice: item.UnitPrice.Decimal,
			TaxRate:   item.TaxRate.Decimal,
			Discount:  item.Discount.Decimal,
			Metadata:  item.Metadata,
		})
	}
	return inputs
}

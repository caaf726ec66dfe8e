package handler

import (
	reconciliationapp "github.com/financeiro/backend/internal/application/reconciliation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the client-generated idempotency key
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles payment and reversal API endpoints
type PaymentHandler struct {
	BaseHandler
	orchestrator *reconciliationapp.PaymentOrchestrator
	reversals    *reconciliationapp.ReversalService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	orchestrator *reconciliationapp.PaymentOrchestrator,
	reversals *reconciliationapp.ReversalService,
) *PaymentHandler {
	return &PaymentHandler{
		orchestrator: orchestrator,
		reversals:    reversals,
	}
}

// PayTotalRequest is the request body for paying a purchase in full
type PayTotalRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// PayPartialRequest is the request body for a partial payment
type PayPartialRequest struct {
	AccountID string  `json:"account_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Note      string  `json:"note" binding:"max=500"`
}

// PayAllRequest is the request body for paying all of a supplier's open purchases
type PayAllRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// PayTotal settles the purchase's full open balance from the given account
func (h *PaymentHandler) PayTotal(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	var req PayTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	result, err := h.orchestrator.PayTotal(c.Request.Context(),
		purchaseID, accountID, actorID, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// PayPartial applies a partial payment to the purchase
func (h *PaymentHandler) PayPartial(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	var req PayPartialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	result, err := h.orchestrator.PayPartial(c.Request.Context(),
		purchaseID, accountID, decimal.NewFromFloat(req.Amount), actorID,
		req.Note, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// PayAllForSupplier settles every open purchase of the supplier, oldest
// first, as a single atomic batch
func (h *PaymentHandler) PayAllForSupplier(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	var req PayAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	result, err := h.orchestrator.PayAllForSupplier(c.Request.Context(),
		supplierID, accountID, actorID, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Reverse undoes all active payments on the purchase, crediting the
// amounts back and reopening the purchase
func (h *PaymentHandler) Reverse(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	result, err := h.reversals.Reverse(c.Request.Context(), purchaseID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

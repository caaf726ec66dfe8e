package handler

import (
	reconciliationapp "github.com/financeiro/backend/internal/application/reconciliation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountHandler handles settlement account API endpoints
type AccountHandler struct {
	BaseHandler
	accountService *reconciliationapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *reconciliationapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// ValidateDebitRequest is the request body for a debit pre-check
type ValidateDebitRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Open creates a settlement account with an opening balance
func (h *AccountHandler) Open(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req reconciliationapp.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.Open(c.Request.Context(), req, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// GetByID returns the account with its authoritative balance
func (h *AccountHandler) GetByID(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// ValidateDebit answers whether the account can cover a debit of the given
// amount. Calls arriving in quick succession for the same account are
// coalesced; only the latest one is answered.
func (h *AccountHandler) ValidateDebit(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req ValidateDebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	check, err := h.accountService.ValidateDebit(c.Request.Context(),
		accountID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, check)
}

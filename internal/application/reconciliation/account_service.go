package reconciliation

import (
	"context"
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest is the payload for opening a settlement account
type OpenAccountRequest struct {
	Name           string          `json:"name" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// AccountResponse is the API representation of a settlement account
type AccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToAccountResponse converts a domain account to its API representation
func ToAccountResponse(a *ledger.SettlementAccount) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		CurrentBalance: a.CurrentBalance,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountService handles settlement account lifecycle and balance reads.
// Balance mutations go through the orchestrator and reversal service only.
type AccountService struct {
	accounts  ledger.AccountRepository
	validator *BalanceValidator
	cache     BalanceCache
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts ledger.AccountRepository, validator *BalanceValidator, cache BalanceCache) *AccountService {
	return &AccountService{
		accounts:  accounts,
		validator: validator,
		cache:     cache,
	}
}

// Open creates a settlement account with an opening balance
func (s *AccountService) Open(ctx context.Context, req OpenAccountRequest, actorID uuid.UUID) (*AccountResponse, error) {
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}
	account, err := ledger.NewSettlementAccount(req.Name, req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, mapStoreError(err)
	}
	response := ToAccountResponse(account)
	return &response, nil
}

// GetByID retrieves an account with its authoritative balance from the
// store, bypassing the cache
func (s *AccountService) GetByID(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if s.cache != nil {
		s.cache.Set(accountID, account.CurrentBalance)
	}
	response := ToAccountResponse(account)
	return &response, nil
}

// ValidateDebit answers whether the account can absorb the debit. This is
// the debounced entry point the UI calls as the user types an amount.
func (s *AccountService) ValidateDebit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*BalanceCheck, error) {
	return s.validator.Validate(ctx, accountID, amount)
}

package reconciliation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/partner"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memoryStore is an in-memory stand-in for the transactional ledger store.
// SaveWithLock mirrors the production compare-and-set: the write succeeds
// only when the stored version is exactly one behind the aggregate's.
type memoryStore struct {
	txMu sync.Mutex // serializes units of work, like row locks would
	mu   sync.Mutex

	purchases map[uuid.UUID]*ledger.Purchase
	payments  []*ledger.Payment
	accounts  map[uuid.UUID]*ledger.SettlementAccount
	suppliers map[uuid.UUID]*partner.Supplier
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		purchases: make(map[uuid.UUID]*ledger.Purchase),
		accounts:  make(map[uuid.UUID]*ledger.SettlementAccount),
		suppliers: make(map[uuid.UUID]*partner.Supplier),
	}
}

func (m *memoryStore) addPurchase(p *ledger.Purchase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.purchases[p.ID] = &cp
}

func (m *memoryStore) addAccount(a *ledger.SettlementAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.accounts[a.ID] = &cp
}

func (m *memoryStore) addSupplier(s *partner.Supplier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.suppliers[s.ID] = &cp
}

type storeSnapshot struct {
	purchases map[uuid.UUID]*ledger.Purchase
	payments  []*ledger.Payment
	accounts  map[uuid.UUID]*ledger.SettlementAccount
}

func (m *memoryStore) snapshot() storeSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := storeSnapshot{
		purchases: make(map[uuid.UUID]*ledger.Purchase, len(m.purchases)),
		accounts:  make(map[uuid.UUID]*ledger.SettlementAccount, len(m.accounts)),
		payments:  make([]*ledger.Payment, len(m.payments)),
	}
	for id, p := range m.purchases {
		cp := *p
		snap.purchases[id] = &cp
	}
	for id, a := range m.accounts {
		cp := *a
		snap.accounts[id] = &cp
	}
	for i, pm := range m.payments {
		cp := *pm
		snap.payments[i] = &cp
	}
	return snap
}

func (m *memoryStore) restore(snap storeSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases = snap.purchases
	m.accounts = snap.accounts
	m.payments = snap.payments
}

// memoryPurchaseRepo implements ledger.PurchaseRepository

type memoryPurchaseRepo struct{ store *memoryStore }

func (r *memoryPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Purchase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.purchases[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPurchaseRepo) FindPayableBySupplier(_ context.Context, supplierID uuid.UUID) ([]*ledger.Purchase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*ledger.Purchase
	for _, p := range r.store.purchases {
		if p.SupplierID == supplierID && p.Status.CanApplyPayment() {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.Before(out[j].PurchasedAt) })
	return out, nil
}

func (r *memoryPurchaseRepo) FindAll(_ context.Context, _ shared.Filter) ([]*ledger.Purchase, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*ledger.Purchase, 0, len(r.store.purchases))
	for _, p := range r.store.purchases {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryPurchaseRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.purchases)), nil
}

func (r *memoryPurchaseRepo) Save(_ context.Context, p *ledger.Purchase) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *p
	r.store.purchases[p.ID] = &cp
	return nil
}

func (r *memoryPurchaseRepo) SaveWithLock(_ context.Context, p *ledger.Purchase) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.purchases[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != p.Version-1 {
		return fmt.Errorf("%w: purchase %s", shared.ErrConcurrencyConflict, p.ID)
	}
	cp := *p
	r.store.purchases[p.ID] = &cp
	return nil
}

// memoryPaymentRepo implements ledger.PaymentRepository

type memoryPaymentRepo struct{ store *memoryStore }

func (r *memoryPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, pm := range r.store.payments {
		if pm.ID == id {
			cp := *pm
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryPaymentRepo) FindByPurchase(_ context.Context, purchaseID uuid.UUID) ([]*ledger.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*ledger.Payment
	for _, pm := range r.store.payments {
		if pm.PurchaseID == purchaseID {
			cp := *pm
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) FindActiveByPurchase(_ context.Context, purchaseID uuid.UUID) ([]*ledger.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*ledger.Payment
	for _, pm := range r.store.payments {
		if pm.PurchaseID == purchaseID && !pm.Reversed {
			cp := *pm
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) Create(_ context.Context, pm *ledger.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *pm
	r.store.payments = append(r.store.payments, &cp)
	return nil
}

func (r *memoryPaymentRepo) Update(_ context.Context, pm *ledger.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, existing := range r.store.payments {
		if existing.ID == pm.ID {
			cp := *pm
			r.store.payments[i] = &cp
			return nil
		}
	}
	return shared.ErrNotFound
}

// memoryAccountRepo implements ledger.AccountRepository

type memoryAccountRepo struct{ store *memoryStore }

func (r *memoryAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.SettlementAccount, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memoryAccountRepo) Save(_ context.Context, a *ledger.SettlementAccount) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *a
	r.store.accounts[a.ID] = &cp
	return nil
}

func (r *memoryAccountRepo) SaveWithLock(_ context.Context, a *ledger.SettlementAccount) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.accounts[a.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != a.Version-1 {
		return fmt.Errorf("%w: account %s", shared.ErrConcurrencyConflict, a.ID)
	}
	cp := *a
	r.store.accounts[a.ID] = &cp
	return nil
}

// memorySupplierRepo implements partner.SupplierRepository

type memorySupplierRepo struct{ store *memoryStore }

func (r *memorySupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Supplier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.suppliers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memorySupplierRepo) FindByCode(_ context.Context, code string) (*partner.Supplier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.suppliers {
		if s.Code == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memorySupplierRepo) FindAll(_ context.Context, _ shared.Filter) ([]*partner.Supplier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*partner.Supplier, 0, len(r.store.suppliers))
	for _, s := range r.store.suppliers {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memorySupplierRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.suppliers)), nil
}

func (r *memorySupplierRepo) Save(_ context.Context, s *partner.Supplier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *s
	r.store.suppliers[s.ID] = &cp
	return nil
}

func (r *memorySupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.suppliers, id)
	return nil
}

// memoryScope serializes units of work and rolls the store back when the
// function fails, approximating the store's transaction semantics
type memoryScope struct{ store *memoryStore }

func (s *memoryScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.store.txMu.Lock()
	defer s.store.txMu.Unlock()

	snap := s.store.snapshot()
	if err := fn(&memoryRepos{store: s.store}); err != nil {
		s.store.restore(snap)
		return err
	}
	return nil
}

type memoryRepos struct{ store *memoryStore }

func (r *memoryRepos) Purchases() ledger.PurchaseRepository { return &memoryPurchaseRepo{r.store} }
func (r *memoryRepos) Payments() ledger.PaymentRepository   { return &memoryPaymentRepo{r.store} }
func (r *memoryRepos) Accounts() ledger.AccountRepository   { return &memoryAccountRepo{r.store} }

// mapCache is a plain map-backed BalanceCache without TTL
type mapCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]decimal.Decimal
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[uuid.UUID]decimal.Decimal)}
}

func (c *mapCache) Get(accountID uuid.UUID) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	balance, ok := c.entries[accountID]
	return balance, ok
}

func (c *mapCache) Set(accountID uuid.UUID, balance decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accountID] = balance
}

func (c *mapCache) Invalidate(accountID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, accountID)
}

// memoryIdempotencyStore is a map-backed shared.IdempotencyStore
type memoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{entries: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) Lookup(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.entries[key]
	return payload, ok, nil
}

func (s *memoryIdempotencyStore) Remember(_ context.Context, key string, payload []byte, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = payload
	return true, nil
}

func (s *memoryIdempotencyStore) Complete(_ context.Context, key string, payload []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = payload
	return nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

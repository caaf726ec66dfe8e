package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is what every ledger object exposes: a stable identity plus the
// audit timestamps the back office reports on.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and timestamps shared by purchases,
// payments, accounts and suppliers. IDs are assigned at construction, never
// by the store, so an aggregate is addressable before its first save.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity assigns a fresh ID with both timestamps at now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt; mutating aggregate operations call it so the
// persisted row reflects when the ledger last changed.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

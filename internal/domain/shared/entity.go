package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps every persisted
// financial record shares.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch stamps the record as modified now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// TouchAt stamps the record as modified at the given instant, for
// state changes that record the same moment in several fields
func (e *BaseEntity) TouchAt(t time.Time) {
	e.UpdatedAt = t
}

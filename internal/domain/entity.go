package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType classifies a legal/reporting unit in the consolidation
// hierarchy.
type EntityType string

const (
	EntityTypeParent     EntityType = "parent"
	EntityTypeSubsidiary EntityType = "subsidiary"
	EntityTypeDivision   EntityType = "division"
	EntityTypeDepartment EntityType = "department"
)

var validEntityTypes = map[EntityType]bool{
	EntityTypeParent:     true,
	EntityTypeSubsidiary: true,
	EntityTypeDivision:   true,
	EntityTypeDepartment: true,
}

// IsValid checks the entity type is known.
func (t EntityType) IsValid() bool {
	return validEntityTypes[t]
}

// Entity is a node of a tenant's reporting hierarchy. Each entity keeps
// its books in its own functional currency.
type Entity struct {
	ID        string
	TenantID  string
	ParentID  *string
	Name      string
	Type      EntityType
	Currency  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks entity fields.
func (e *Entity) Validate() error {
	if !e.Type.IsValid() {
		return ErrInvalidEntityType
	}
	if err := ValidateAccountName(e.Name); err != nil {
		return err
	}
	return ValidateCurrency(e.Currency)
}

// EntityNode is an entity with its resolved children, forming the
// hierarchy tree returned to callers.
type EntityNode struct {
	Entity   *Entity
	Children []*EntityNode
}

// IntercompanyTransaction is a transaction between two entities of the
// same tenant. It is eliminated exactly once when both parties are
// consolidated together.
type IntercompanyTransaction struct {
	ID              string
	TenantID        string
	FromEntityID    string
	ToEntityID      string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	TransactionDate time.Time
	Eliminated      bool
	EliminatedAt    *time.Time
	CreatedAt       time.Time
}

package domain

import "github.com/bwmarrin/snowflake"

// BillableType is the tagged discriminator of what a bill charges against.
// Exactly two variants exist; anything else is rejected at the boundary.
type BillableType string

const (
	BillableContract BillableType = "contract"
	BillableSale     BillableType = "sale"
)

func ParseBillableType(value string) (BillableType, bool) {
	switch BillableType(value) {
	case BillableContract, BillableSale:
		return BillableType(value), true
	default:
		return "", false
	}
}

// BillableRef identifies a contract or sale by (variant, id). Resolution is
// a keyed lookup against the referenced table, never reflection.
type BillableRef struct {
	Type BillableType `json:"type"`
	ID   snowflake.ID `json:"id"`
}

func (r BillableRef) Valid() bool {
	_, ok := ParseBillableType(string(r.Type))
	return ok && r.ID != 0
}

package enums

// PurchaseStatus tracks the state of a materialized purchase row.
type PurchaseStatus string

const (
	PurchaseStatusActive PurchaseStatus = "ACTIVE"
)

// String implements fmt.Stringer.
func (p PurchaseStatus) String() string {
	return string(p)
}

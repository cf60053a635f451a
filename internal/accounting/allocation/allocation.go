// Package allocation spreads a paid amount across outstanding invoice
// references, first come first served.
package allocation

import (
	"github.com/shopspring/decimal"
)

// Reference is an outstanding invoice a payment can be applied to.
type Reference struct {
	ReferenceDoctype  string          `json:"reference_doctype"`
	ReferenceName     string          `json:"reference_name"`
	DueDate           string          `json:"due_date,omitempty"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
}

// Allocate returns a copy of refs where, in order, each reference receives
// min(outstanding, remaining) until the paid amount is used up.
func Allocate(paid decimal.Decimal, refs []Reference) []Reference {
	if len(refs) == 0 {
		return refs
	}
	out := make([]Reference, len(refs))
	remaining := paid
	for i, ref := range refs {
		if !remaining.IsPositive() {
			ref.AllocatedAmount = decimal.Zero
			out[i] = ref
			continue
		}
		alloc := decimal.Min(ref.OutstandingAmount, remaining)
		ref.AllocatedAmount = alloc
		remaining = remaining.Sub(alloc)
		out[i] = ref
	}
	return out
}

// Allocated sums the allocations.
func Allocated(refs []Reference) decimal.Decimal {
	total := decimal.Zero
	for _, ref := range refs {
		total = total.Add(ref.AllocatedAmount)
	}
	return total
}

// Unallocated is the part of paid not applied to any reference.
func Unallocated(paid decimal.Decimal, refs []Reference) decimal.Decimal {
	return paid.Sub(Allocated(refs))
}

// Draft tracks the allocation state of a payment being prepared.
type Draft struct {
	paid decimal.Decimal
	refs []Reference
}

// NewDraft allocates paid across refs.
func NewDraft(paid decimal.Decimal, refs []Reference) *Draft {
	return &Draft{paid: paid, refs: Allocate(paid, refs)}
}

// PaidAmount returns the current paid amount.
func (d *Draft) PaidAmount() decimal.Decimal {
	return d.paid
}

// References returns a copy of the current references.
func (d *Draft) References() []Reference {
	return append([]Reference(nil), d.refs...)
}

// SetPaidAmount recomputes every allocation, discarding manual edits.
func (d *Draft) SetPaidAmount(paid decimal.Decimal) {
	d.paid = paid
	d.refs = Allocate(paid, d.refs)
}

// ReplaceReferences swaps the reference list and recomputes.
func (d *Draft) ReplaceReferences(refs []Reference) {
	d.refs = Allocate(d.paid, refs)
}

// Override sets one reference's allocation as entered, without recomputing
// the others or checking it against the outstanding amount. It reports
// whether a reference with that name exists.
func (d *Draft) Override(referenceName string, amount decimal.Decimal) bool {
	for i := range d.refs {
		if d.refs[i].ReferenceName == referenceName {
			d.refs[i].AllocatedAmount = amount
			return true
		}
	}
	return false
}

// Unallocated is the paid amount not applied to references.
func (d *Draft) Unallocated() decimal.Decimal {
	return Unallocated(d.paid, d.refs)
}

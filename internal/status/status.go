// Package status derives display labels for submittable ERP documents.
package status

// DocStatus is the ERP submission state.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// Display labels.
const (
	LabelDraft     = "Draft"
	LabelCancelled = "Cancelled"
	LabelCompleted = "Completed"
	LabelSubmitted = "Submitted"
	LabelUnknown   = "Unknown"
)

// Actions names the two pending steps a submitted document tracks.
type Actions struct {
	First  string
	Second string
}

var (
	// PurchaseOrder tracks per_received then per_billed.
	PurchaseOrder = Actions{First: "Receive", Second: "Bill"}
	// SalesOrder tracks per_delivered then per_billed.
	SalesOrder = Actions{First: "Deliver", Second: "Bill"}
)

// Label maps docstatus and the two completion percentages to a label.
func (a Actions) Label(docstatus DocStatus, first, second float64) string {
	switch docstatus {
	case DocStatusDraft:
		return LabelDraft
	case DocStatusCancelled:
		return LabelCancelled
	case DocStatusSubmitted:
	default:
		return LabelUnknown
	}
	switch {
	case first >= 100 && second >= 100:
		return LabelCompleted
	case first < 100 && second < 100:
		return "To " + a.First + " and " + a.Second
	case first < 100:
		return "To " + a.First
	case second < 100:
		return "To " + a.Second
	}
	return LabelSubmitted
}

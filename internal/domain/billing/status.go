package billing

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusDue       InvoiceStatus = "due"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// AllStatuses lists every status, including the derived overdue state
var AllStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusDue,
	InvoiceStatusPartial,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

// PendingStatuses are the stored states that still expect money
var PendingStatuses = []InvoiceStatus{InvoiceStatusDue, InvoiceStatusPartial}

// IsValid checks if the status is a known value
func (s InvoiceStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsStored reports whether the status can be persisted. Overdue is derived.
func (s InvoiceStatus) IsStored() bool {
	return s.IsValid() && s != InvoiceStatusOverdue
}

// IsTerminal reports states that accept no further processing
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsPending reports states that still expect payment
func (s InvoiceStatus) IsPending() bool {
	return s == InvoiceStatusDue || s == InvoiceStatusPartial
}

// AcceptsPayment reports states in which a payment may be recorded
func (s InvoiceStatus) AcceptsPayment() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusDue || s == InvoiceStatusPartial
}

// String returns the string representation
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusDue || target == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return target == InvoiceStatusDue || target == InvoiceStatusPartial ||
			target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusDue:
		return target == InvoiceStatusPartial || target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPartial:
		return target == InvoiceStatusPaid
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false // Terminal states
	}
	return false
}

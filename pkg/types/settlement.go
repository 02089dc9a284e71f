package types

// SettlementState is the derived state of a recorded payment. It is never
// stored; it is computed from the payment row and its settlement attempts.
type SettlementState string

const (
	// SettlementStateUnlinked: the payment could not be tied to a bill.
	SettlementStateUnlinked SettlementState = "unlinked"
	// SettlementStateLinkedUnsettled: tied to a bill, the billing service has
	// not yet acknowledged a mark-paid call.
	SettlementStateLinkedUnsettled SettlementState = "linked_unsettled"
	// SettlementStateLinkedSettled: tied to a bill and acknowledged.
	SettlementStateLinkedSettled SettlementState = "linked_settled"
)

// DeriveSettlementState is the only constructor of SettlementState values.
func DeriveSettlementState(linked, settled bool) SettlementState {
	switch {
	case !linked:
		return SettlementStateUnlinked
	case settled:
		return SettlementStateLinkedSettled
	default:
		return SettlementStateLinkedUnsettled
	}
}

func (s SettlementState) IsLinked() bool {
	return s == SettlementStateLinkedUnsettled || s == SettlementStateLinkedSettled
}

// SettlementTrigger records which path issued a mark-paid call.
type SettlementTrigger string

const (
	SettlementTriggerWebhook SettlementTrigger = "webhook"
	SettlementTriggerSweep   SettlementTrigger = "sweep"
)

// UnlinkedReason explains why a payment was recorded without a bill.
type UnlinkedReason string

const (
	UnlinkedReasonNone UnlinkedReason = ""
	// UnlinkedReasonNoReference: no bill reference could be read from the memo.
	UnlinkedReasonNoReference      UnlinkedReason = "unlinked"
	UnlinkedReasonBillNotFound     UnlinkedReason = "bill-not-found"
	UnlinkedReasonBillLookupFailed UnlinkedReason = "bill-lookup-failed"
	UnlinkedReasonNotCredit        UnlinkedReason = "not-credit"
)

package domain

// AmendmentState is the single tagged-union state of an ATO. It encodes the
// legal (status, workflow_status) pairs; combinations not listed here are
// not reachable by any transition.
type AmendmentState string

const (
	// StateInPMReview: status=draft, workflow=pending_pm_review. Items are
	// being individually reviewed by the PM.
	StateInPMReview AmendmentState = "in_pm_review"
	// StateNeedsRevision: status=draft, workflow=needs_revision. The PM
	// rejected the amendment as a whole and the requester must rework it.
	StateNeedsRevision AmendmentState = "needs_revision"
	// StateTechnicalComplete: status=draft, workflow=completed. Every item is
	// resolved; the amendment awaits commercial review.
	StateTechnicalComplete AmendmentState = "technical_complete"
	// StatePendingApproval: status=pending_approval, workflow=completed, not
	// yet sent. The requested discount exceeds the threshold and a commercial
	// approver must clear it.
	StatePendingApproval AmendmentState = "pending_approval"
	// StateSentToClient: status=pending_approval, workflow=completed, sent_at
	// set. Awaiting the client's decision.
	StateSentToClient AmendmentState = "sent_to_client"
	// StateApproved: status=approved, workflow=approved. Terminal; spawns
	// reversal amendments only.
	StateApproved AmendmentState = "approved"
	// StateRejected: status=rejected, workflow=rejected. Terminal.
	StateRejected AmendmentState = "rejected"
	// StateCancelled: status=cancelled. Terminal.
	StateCancelled AmendmentState = "cancelled"
	// StateLegacyApproved: status=approved, workflow=null. Imported from the
	// old ERP with no structured review; can be reopened into commercial
	// review.
	StateLegacyApproved AmendmentState = "legacy_approved"
	// StateUnknown marks a (status, workflow_status) pair no transition
	// produces. Persisted rows in this state indicate external tampering.
	StateUnknown AmendmentState = "unknown"
)

// amendmentTransitions is the closed transition table of the ATO workflow.
var amendmentTransitions = map[AmendmentState][]AmendmentState{
	StateInPMReview:        {StateNeedsRevision, StateTechnicalComplete, StateCancelled},
	StateNeedsRevision:     {StateInPMReview, StateCancelled},
	StateTechnicalComplete: {StateInPMReview, StatePendingApproval, StateSentToClient, StateCancelled},
	StatePendingApproval:   {StateInPMReview, StateTechnicalComplete, StateSentToClient, StateCancelled},
	StateSentToClient:      {StateApproved, StateRejected, StateCancelled},
	StateLegacyApproved:    {StatePendingApproval, StateTechnicalComplete},
	StateApproved:          {},
	StateRejected:          {},
	StateCancelled:         {},
}

// StateOf derives the tagged state from the loosely-coupled status pair
// stored on the amendment record.
func (a *Amendment) StateOf() AmendmentState {
	if a.Status == AmendmentStatusCancelled {
		return StateCancelled
	}
	if a.IsLegacy() {
		if a.Status == AmendmentStatusApproved {
			return StateLegacyApproved
		}
		return StateUnknown
	}
	switch *a.WorkflowStatus {
	case WorkflowPendingPMReview:
		if a.Status == AmendmentStatusDraft {
			return StateInPMReview
		}
	case WorkflowNeedsRevision:
		if a.Status == AmendmentStatusDraft {
			return StateNeedsRevision
		}
	case WorkflowCompleted:
		switch a.Status {
		case AmendmentStatusDraft:
			return StateTechnicalComplete
		case AmendmentStatusPendingApproval:
			if a.SentAt != nil {
				return StateSentToClient
			}
			return StatePendingApproval
		}
	case WorkflowApproved:
		if a.Status == AmendmentStatusApproved {
			return StateApproved
		}
	case WorkflowRejected:
		if a.Status == AmendmentStatusRejected {
			return StateRejected
		}
	}
	return StateUnknown
}

// CanTransition reports whether the workflow permits moving from one state
// to another.
func CanTransition(from, to AmendmentState) bool {
	for _, next := range amendmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the state
func (s AmendmentState) IsTerminal() bool {
	return len(amendmentTransitions[s]) == 0
}

// Apply writes the (status, workflow_status) pair for the target state onto
// the amendment. It does not touch timestamps; callers stamp those.
func (a *Amendment) Apply(target AmendmentState) {
	set := func(w WorkflowStatus) { a.WorkflowStatus = &w }
	switch target {
	case StateInPMReview:
		a.Status = AmendmentStatusDraft
		set(WorkflowPendingPMReview)
	case StateNeedsRevision:
		a.Status = AmendmentStatusDraft
		set(WorkflowNeedsRevision)
	case StateTechnicalComplete:
		a.Status = AmendmentStatusDraft
		set(WorkflowCompleted)
	case StatePendingApproval, StateSentToClient:
		a.Status = AmendmentStatusPendingApproval
		set(WorkflowCompleted)
	case StateApproved:
		a.Status = AmendmentStatusApproved
		set(WorkflowApproved)
	case StateRejected:
		a.Status = AmendmentStatusRejected
		set(WorkflowRejected)
	case StateCancelled:
		a.Status = AmendmentStatusCancelled
	}
}

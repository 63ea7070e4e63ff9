package domain

import "fmt"

// SideEffectKind names a billing action a status transition requires.
type SideEffectKind string

const (
	EffectDebit  SideEffectKind = "debit"
	EffectRefund SideEffectKind = "refund"
)

// SideEffect is a billing action the caller of Transition must execute.
// Transitions do not touch the ledger themselves; returning the effects
// keeps the transition auditable and testable without a live billing
// backend.
type SideEffect struct {
	Kind       SideEffectKind
	OwnerID    int64
	CampaignID int64
	Amount     int64
}

var transitions = map[CampaignStatus][]CampaignStatus{
	StatusDraft:    {StatusWaiting},
	StatusWaiting:  {StatusApproved, StatusRejected, StatusDraft},
	StatusApproved: {StatusRejected},
	StatusRejected: {StatusDraft},
}

// Transition validates the status change and returns the billing side
// effects it implies: approving a campaign debits its total budget,
// rejecting an approved campaign refunds what was not spent. The caller
// applies the new status and executes the effects.
func Transition(c *Campaign, to CampaignStatus) ([]SideEffect, error) {
	allowed := false
	for _, s := range transitions[c.Status] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("campaign %d: invalid status transition %s -> %s", c.ID, c.Status, to)
	}

	var effects []SideEffect
	switch {
	case to == StatusApproved:
		effects = append(effects, SideEffect{
			Kind:       EffectDebit,
			OwnerID:    c.OwnerID,
			CampaignID: c.ID,
			Amount:     c.TotalBudget,
		})
	case c.Status == StatusApproved && to == StatusRejected:
		effects = append(effects, SideEffect{
			Kind:       EffectRefund,
			OwnerID:    c.OwnerID,
			CampaignID: c.ID,
			Amount:     c.TotalBudget - c.FinishBalance,
		})
	}
	return effects, nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// StatusService executes campaign status transitions and the billing side
// effects they imply. The domain decides which effects a transition
// carries; this service is the caller that runs them, which replaces the
// old save-hook coupling with an explicit, auditable operation.
type StatusService struct {
	campaigns port.CampaignRepository
	billing   port.Billing
	logger    *slog.Logger
}

func NewStatusService(campaigns port.CampaignRepository, billing port.Billing, logger *slog.Logger) *StatusService {
	return &StatusService{campaigns: campaigns, billing: billing, logger: logger}
}

// ChangeStatus validates the transition, runs its billing effects and
// persists the new status. A debit is preceded by a balance check so an
// underfunded owner cannot approve a campaign.
func (s *StatusService) ChangeStatus(ctx context.Context, campaignID int64, to domain.CampaignStatus) error {
	c, err := s.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}

	effects, err := domain.Transition(c, to)
	if err != nil {
		return fmt.Errorf("%w: %s", port.ErrInvalidTransition, err)
	}

	for _, effect := range effects {
		switch effect.Kind {
		case domain.EffectDebit:
			balance, err := s.billing.Balance(ctx, effect.OwnerID)
			if err != nil {
				return err
			}
			if balance < effect.Amount {
				return port.ErrInsufficientBalance
			}
			if err = s.billing.Debit(ctx, effect.OwnerID, effect.Amount, effect.CampaignID); err != nil {
				return err
			}
		case domain.EffectRefund:
			if err := s.billing.Refund(ctx, effect.OwnerID, effect.Amount, effect.CampaignID); err != nil {
				return err
			}
		}
		s.logger.Info("billing effect executed",
			slog.String("kind", string(effect.Kind)),
			slog.Int64("campaign", effect.CampaignID),
			slog.Int64("amount", effect.Amount))
	}

	return s.campaigns.SetStatus(ctx, c.ID, to, c.FinishBalance)
}

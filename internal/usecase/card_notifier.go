package usecase

import (
	"context"
	"fmt"

	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
)

// FightAlertSender is the push collaborator. Delivery is fire-and-forget
// from the pipeline's perspective.
type FightAlertSender interface {
	NotifyFightStarting(ctx context.Context, fightID, sideAName, sideBName string) error
}

type noopAlertSender struct{}

func (noopAlertSender) NotifyFightStarting(context.Context, string, string, string) error {
	return nil
}

func NewNoopAlertSender() FightAlertSender {
	return noopAlertSender{}
}

// CardNotifier reacts to a completed fight by alerting for the next bout up
// the card: the not-yet-notified UPCOMING fight with the highest order
// strictly below the completed one.
type CardNotifier struct {
	fightRepo fight.Repository
	sender    FightAlertSender
	logger    *logging.Logger
}

func NewCardNotifier(fightRepo fight.Repository, sender FightAlertSender, logger *logging.Logger) *CardNotifier {
	if sender == nil {
		sender = NewNoopAlertSender()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CardNotifier{fightRepo: fightRepo, sender: sender, logger: logger}
}

// OnFightCompleted is a no-op when the card has no next fight left or the
// next fight was already notified. A failed delivery is logged and not
// retried; the notified flag stays unset so a later tick can try again.
func (n *CardNotifier) OnFightCompleted(ctx context.Context, eventID string, completedOrder int) error {
	next, exists, err := n.fightRepo.NextUpcomingBefore(ctx, eventID, completedOrder)
	if err != nil {
		return fmt.Errorf("find next upcoming fight event=%s order<%d: %w", eventID, completedOrder, err)
	}
	if !exists {
		return nil
	}

	if err := n.sender.NotifyFightStarting(ctx, next.ID, next.FighterA, next.FighterB); err != nil {
		n.logger.WarnContext(ctx, "fight starting alert failed",
			"fight_id", next.ID,
			"error", err,
		)
		return nil
	}

	notified := true
	if err := n.fightRepo.Update(ctx, next.ID, fight.Update{Notified: &notified}); err != nil {
		return fmt.Errorf("mark fight notified fight=%s: %w", next.ID, err)
	}

	n.logger.InfoContext(ctx, "fight starting alert sent",
		"fight_id", next.ID,
		"side_a", next.FighterA,
		"side_b", next.FighterB,
	)
	return nil
}

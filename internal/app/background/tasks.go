package background

import (
	"context"
	"time"

	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/usecase/settlement"
)

type BackgroundTasks struct {
	SettlementUsecase *settlement.Usecase
	SweepInterval     time.Duration
}

func NewBackgroundTasks(settlementUC *settlement.Usecase, sweepInterval time.Duration) *BackgroundTasks {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Second
	}
	return &BackgroundTasks{
		SettlementUsecase: settlementUC,
		SweepInterval:     sweepInterval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startSettlementSweep(ctx)
}

// startSettlementSweep periodically ends and settles auctions whose end time
// has passed. Lazy activation means there is no scheduled->active sweep: the
// clock derives the active state at read time.
func (bt *BackgroundTasks) startSettlementSweep(ctx context.Context) {
	ticker := time.NewTicker(bt.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.SettlementUsecase.SweepDueAuctions(ctx); err != nil {
				logger.Error("settlement sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

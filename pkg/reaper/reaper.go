package reaper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/entities"
	"github.com/b1gw1z/frn-backend/pkg/activity"
	"github.com/b1gw1z/frn-backend/pkg/clock"
	"github.com/b1gw1z/frn-backend/pkg/donation"
)

const DefaultInterval = time.Minute

// Reaper periodically transitions Open donations past their freshness
// deadline to Expired. Each expiry goes through the store's conditional
// transition, so running several reapers at once, or racing a live claim,
// never expires a donation twice: the loser of any race observes a stale
// state and moves on.
type Reaper struct {
	donationRepository donation.DonationRepository
	activityRepository activity.ActivityRepository
	clock              clock.Clock
	interval           time.Duration
}

func New(
	donationRepository donation.DonationRepository,
	activityRepository activity.ActivityRepository,
	clk clock.Clock,
	interval time.Duration,
) *Reaper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reaper{
		donationRepository: donationRepository,
		activityRepository: activityRepository,
		clock:              clk,
		interval:           interval,
	}
}

// Run sweeps on a fixed interval until the context is cancelled. No state is
// carried between cycles.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := r.Sweep(ctx)
			if err != nil {
				log.Printf("reaper sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("reaper: marked %d donations as expired", expired)
			}
		}
	}
}

// Sweep runs a single cycle and returns how many donations it expired.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	overdue, err := r.donationRepository.GetDonationsPastDeadline(ctx, r.clock.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, d := range overdue {
		err := r.donationRepository.TransitionStatus(
			ctx,
			d.ID.String(),
			entities.DonationStatusOpen,
			entities.DonationStatusExpired,
		)
		if errors.Is(err, domain.ErrStaleState) {
			// Claimed, cancelled or expired by someone else since the
			// scan; nothing left to do for this donation.
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++

		// The transition is already committed; an audit miss must not
		// abort the sweep.
		_ = r.activityRepository.Append(ctx, d.DonorID, "EXPIRE_DONATION",
			fmt.Sprintf("%s expired unclaimed", d.Description))
	}
	return expired, nil
}

package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IBroadcaster pushes quote snapshots to connected subscribers.
// -----------------------------------------------------------------------------

type IBroadcaster interface {
	// -----------------------------------------------------------------------------
	// Broadcast sends the full snapshot to every open subscriber.
	Broadcast(quotes []models.MQuoteSnapshot)
}

// -----------------------------------------------------------------------------
// IPoller drives watchlist polls outside the regular schedule.
// -----------------------------------------------------------------------------

type IPoller interface {
	// TriggerNow requests an extra poll without waiting for it.
	TriggerNow()

	// PollOnce runs one poll synchronously and returns the quote count.
	PollOnce(ctx context.Context) int
}

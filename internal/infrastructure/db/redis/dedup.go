package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const dedupTTL = time.Hour

// DedupChecker remembers processed position pings for dedupTTL.
// Key format: <namespace>:dedup:position:<demande_id>:<lat>:<lng>:<unix_millis>
type DedupChecker struct {
	store *Store
}

func NewDedupChecker(store *Store) *DedupChecker {
	return &DedupChecker{store: store}
}

// IsDuplicate reports whether this exact ping has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, demandeID string, lat, lng float64, ts time.Time) (bool, error) {
	n, err := d.store.Client.Exists(ctx, d.key(demandeID, lat, lng, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records the ping as processed.
func (d *DedupChecker) Mark(ctx context.Context, demandeID string, lat, lng float64, ts time.Time) error {
	if err := d.store.Client.Set(ctx, d.key(demandeID, lat, lng, ts), "1", dedupTTL).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

func (d *DedupChecker) key(demandeID string, lat, lng float64, ts time.Time) string {
	return d.store.Key("dedup", "position", demandeID,
		strconv.FormatFloat(lat, 'f', 6, 64),
		strconv.FormatFloat(lng, 'f', 6, 64),
		strconv.FormatInt(ts.UnixMilli(), 10))
}

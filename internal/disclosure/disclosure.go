// Package disclosure implements redis-backed storage for the disclosure
// tracker service: an append-only log of every layer ShareRecord issued,
// so a seller or auditor can answer "who has seen section X of transaction
// Y" without trusting the recipients to self-report.
package disclosure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/luxfi/dvpguard/pkg/share"
)

const (
	recordKeyPrefix = "dvpguard:disclosure:record:"
	txIndexPrefix   = "dvpguard:disclosure:by_tx:"
)

// ErrExists is returned by Append when a ShareRecord with the same id has
// already been logged.
var ErrExists = fmt.Errorf("disclosure: record already exists")

// Store wraps a redis client with the disclosure tracker's key layout.
type Store struct {
	rdb *redis.Client
}

// New wraps an already-connected redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func recordKey(id string) string    { return recordKeyPrefix + id }
func txIndexKey(txID string) string { return txIndexPrefix + txID }

// Append logs rec as a new disclosure event, keyed by its own id (uniqueness
// is the id's job, not the tracker's), and indexes it by tx_id for later
// lookup. Duplicate ids are rejected rather than overwritten, since the
// tracker is meant to be an append-only audit trail.
func (s *Store) Append(ctx context.Context, rec *share.ShareRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("disclosure: marshal record: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, recordKey(rec.ID), blob, 0).Result()
	if err != nil {
		return fmt.Errorf("disclosure: append record: %w", err)
	}
	if !ok {
		return ErrExists
	}
	if err := s.rdb.SAdd(ctx, txIndexKey(rec.TxID), rec.ID).Err(); err != nil {
		return fmt.Errorf("disclosure: index record: %w", err)
	}
	return nil
}

// ForTransaction returns every disclosure logged for txID, optionally
// filtered to a single section (pass "" for all sections).
func (s *Store) ForTransaction(ctx context.Context, txID, section string) ([]*share.ShareRecord, error) {
	ids, err := s.rdb.SMembers(ctx, txIndexKey(txID)).Result()
	if err != nil {
		return nil, fmt.Errorf("disclosure: list index: %w", err)
	}
	out := make([]*share.ShareRecord, 0, len(ids))
	for _, id := range ids {
		blob, err := s.rdb.Get(ctx, recordKey(id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("disclosure: get record: %w", err)
		}
		var rec share.ShareRecord
		if err := json.Unmarshal(blob, &rec); err != nil {
			return nil, fmt.Errorf("disclosure: decode record: %w", err)
		}
		if section != "" && rec.Section != section {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

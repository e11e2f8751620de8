// Package registry implements redis-backed storage for the transaction
// registry service: published company public keys and the
// ProtectedTransaction documents sellers and buyers exchange through it.
// Transactions are stored as their JSON encoding, keyed by tx_id,
// so the registry never has to understand envelope internals — it is a
// dumb, authenticated bulletin board.
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/identity"
	"github.com/luxfi/dvpguard/pkg/share"
)

const (
	companyKeyPrefix    = "dvpguard:registry:company:"
	txKeyPrefix         = "dvpguard:registry:tx:"
	shareKeyPrefix      = "dvpguard:registry:share:"
	txSharesSetPrefix   = "dvpguard:registry:tx-shares:"
)

// ErrTransactionExists is returned by PutTransactionIfAbsent when a
// transaction with the same tx_id is already registered.
var ErrTransactionExists = fmt.Errorf("registry: transaction already exists")

// Store wraps a redis client with the registry's key layout.
type Store struct {
	rdb *redis.Client
}

// New wraps an already-connected redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func companyKey(name string) string  { return companyKeyPrefix + name }
func txKey(txID string) string      { return txKeyPrefix + txID }
func shareKey(id string) string     { return shareKeyPrefix + id }
func txSharesKey(txID string) string { return txSharesSetPrefix + txID }

// RegisterCompany publishes a company's public key material, overwriting
// any prior registration under the same name.
func (s *Store) RegisterCompany(ctx context.Context, pub *identity.CompanyIdentity) error {
	blob, err := identity.Serialize(identity.PublicOnly(pub))
	if err != nil {
		return fmt.Errorf("registry: serialize company: %w", err)
	}
	if err := s.rdb.Set(ctx, companyKey(pub.Name), blob, 0).Err(); err != nil {
		return fmt.Errorf("registry: register company: %w", err)
	}
	return nil
}

// LookupCompany returns a previously registered company's public key
// material, or nil if no company by that name has registered.
func (s *Store) LookupCompany(ctx context.Context, name string) (*identity.CompanyIdentity, error) {
	blob, err := s.rdb.Get(ctx, companyKey(name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: lookup company: %w", err)
	}
	pub, err := identity.Deserialize(blob)
	if err != nil {
		return nil, fmt.Errorf("registry: decode company: %w", err)
	}
	return pub, nil
}

// PutTransaction stores pt under its own tx_id, overwriting any existing
// record — the caller (e.g. buyer_sign) is expected to have already merged
// in anything worth keeping.
func (s *Store) PutTransaction(ctx context.Context, pt *envelope.ProtectedTransaction) error {
	blob, err := json.Marshal(pt)
	if err != nil {
		return fmt.Errorf("registry: marshal transaction: %w", err)
	}
	if err := s.rdb.Set(ctx, txKey(pt.TxID), blob, 0).Err(); err != nil {
		return fmt.Errorf("registry: put transaction: %w", err)
	}
	return nil
}

// GetTransaction returns a previously stored transaction, or nil if txID is
// unknown.
func (s *Store) GetTransaction(ctx context.Context, txID string) (*envelope.ProtectedTransaction, error) {
	blob, err := s.rdb.Get(ctx, txKey(txID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: get transaction: %w", err)
	}
	var pt envelope.ProtectedTransaction
	if err := json.Unmarshal(blob, &pt); err != nil {
		return nil, fmt.Errorf("registry: decode transaction: %w", err)
	}
	return &pt, nil
}

// PutTransactionIfAbsent stores pt only if tx_id is not already registered,
// matching the "transaction already exists" rejection the original registry
// enforces on the seller's initial publish.
func (s *Store) PutTransactionIfAbsent(ctx context.Context, pt *envelope.ProtectedTransaction) error {
	blob, err := json.Marshal(pt)
	if err != nil {
		return fmt.Errorf("registry: marshal transaction: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, txKey(pt.TxID), blob, 0).Result()
	if err != nil {
		return fmt.Errorf("registry: put transaction: %w", err)
	}
	if !ok {
		return ErrTransactionExists
	}
	return nil
}

// SetBuyerSignature merges buyerSig into the stored transaction's sig_buyer
// field. If txID is unknown it returns a nil *ProtectedTransaction and a nil
// error.
func (s *Store) SetBuyerSignature(ctx context.Context, txID, buyerSig string) (*envelope.ProtectedTransaction, error) {
	pt, err := s.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, nil
	}
	pt.SigBuyer = &buyerSig
	if err := s.PutTransaction(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

// PutShare records a full-transaction ShareRecord, indexed by its own id and
// by its parent tx_id so third parties can discover shares addressed to
// them.
func (s *Store) PutShare(ctx context.Context, rec *share.ShareRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("registry: marshal share: %w", err)
	}
	if err := s.rdb.Set(ctx, shareKey(rec.ID), blob, 0).Err(); err != nil {
		return fmt.Errorf("registry: put share: %w", err)
	}
	if err := s.rdb.SAdd(ctx, txSharesKey(rec.TxID), rec.ID).Err(); err != nil {
		return fmt.Errorf("registry: index share: %w", err)
	}
	return nil
}

// ListShares returns every full-transaction share record issued against
// txID.
func (s *Store) ListShares(ctx context.Context, txID string) ([]*share.ShareRecord, error) {
	ids, err := s.rdb.SMembers(ctx, txSharesKey(txID)).Result()
	if err != nil {
		return nil, fmt.Errorf("registry: list shares: %w", err)
	}
	out := make([]*share.ShareRecord, 0, len(ids))
	for _, id := range ids {
		blob, err := s.rdb.Get(ctx, shareKey(id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("registry: get share: %w", err)
		}
		var rec share.ShareRecord
		if err := json.Unmarshal(blob, &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

// ListTransactions scans every stored transaction. It is intended for
// small demo deployments and test fixtures, not production-scale listing.
func (s *Store) ListTransactions(ctx context.Context) ([]*envelope.ProtectedTransaction, error) {
	var out []*envelope.ProtectedTransaction
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, txKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("registry: scan transactions: %w", err)
		}
		for _, key := range keys {
			blob, err := s.rdb.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var pt envelope.ProtectedTransaction
			if err := json.Unmarshal(blob, &pt); err != nil {
				continue
			}
			out = append(out, &pt)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return out, nil
}

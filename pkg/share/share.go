// Package share implements delegated disclosure: a ShareRecord lets a
// company that already holds a transaction's (or one of its layers')
// symmetric key re-wrap that key for a third party, without either the
// seller or buyer re-running Protect. The grantor signs the record so a
// verifier can confirm who authorized the delegation.
package share

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/luxfi/dvpguard/pkg/canon"
	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/identity"
	"github.com/luxfi/dvpguard/pkg/ids"
	"github.com/luxfi/dvpguard/pkg/keywrap"
	"github.com/luxfi/dvpguard/pkg/primitives"
)

// ShareRecord grants ToCompany access to one transaction (Section empty)
// or one of its layers (Section set), by re-wrapping the symmetric key
// under ToCompany's encryption public key. FromCompany signs the record so
// any holder can confirm which company authorized it. EKTo is carried as a
// base64 string — the encoded keywrap.WrappedKey blob, not a nested JSON
// object — so the signed canonical bytes reproduce byte-for-byte across
// implementations.
type ShareRecord struct {
	ID          string `json:"id"`
	TxID        string `json:"tx_id"`
	Section     string `json:"section,omitempty"`
	FromCompany string `json:"from_company"`
	ToCompany   string `json:"to_company"`
	EKTo        string `json:"ek_to"`
	Timestamp   string `json:"timestamp"`
	LayerHash   string `json:"layer_hash,omitempty"`
	SigShare    string `json:"sig_share"`
}

// signingPayload returns the canonical bytes a ShareRecord's signature
// covers: every field except sig_share itself.
func signingPayload(s *ShareRecord) ([]byte, error) {
	fields := map[string]any{
		"id":           s.ID,
		"tx_id":        s.TxID,
		"from_company": s.FromCompany,
		"to_company":   s.ToCompany,
		"ek_to":        s.EKTo,
		"timestamp":    s.Timestamp,
	}
	if s.Section != "" {
		fields["section"] = s.Section
	}
	if s.LayerHash != "" {
		fields["layer_hash"] = s.LayerHash
	}
	return canon.Bytes(fields)
}

// CreateShareRecord lets fromName — who must already hold a wrapped key in
// pt's ek_map — delegate full-transaction access to toName.
func CreateShareRecord(pt *envelope.ProtectedTransaction, fromKeys *identity.CompanyIdentity, toName string, toEncPublic *ecdh.PublicKey, fromName string) (*ShareRecord, error) {
	wk, ok, err := pt.WrappedKeyFor(fromName)
	if err != nil {
		return nil, fmt.Errorf("share: decode wrapped key: %w", err)
	}
	if !ok {
		return nil, &envelope.ErrNoKeyForCompany{Company: fromName}
	}
	return buildShareRecord(wk, pt.TxID, "", "", fromKeys, fromName, toName, toEncPublic)
}

// CreateLayerShareRecords lets fromName delegate access to one or more of
// pt's layers to toName, one record per section. Every section must
// already exist in pt.Layers and carry a wrapped key for fromName.
func CreateLayerShareRecords(pt *envelope.ProtectedTransaction, sections []string, fromKeys *identity.CompanyIdentity, toName string, toEncPublic *ecdh.PublicKey, fromName string) ([]*ShareRecord, error) {
	records := make([]*ShareRecord, 0, len(sections))
	for _, section := range sections {
		layer, ok := pt.Layer(section)
		if !ok {
			return nil, &envelope.ErrNoSuchLayer{Section: section}
		}
		wk, ok, err := layer.WrappedKeyFor(fromName)
		if err != nil {
			return nil, fmt.Errorf("share: decode wrapped key for section %q: %w", section, err)
		}
		if !ok {
			return nil, &envelope.ErrNoKeyForCompany{Company: fromName}
		}
		rec, err := buildShareRecord(wk, pt.TxID, section, layer.HashT, fromKeys, fromName, toName, toEncPublic)
		if err != nil {
			return nil, fmt.Errorf("share: section %q: %w", section, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func buildShareRecord(fromWK *keywrap.WrappedKey, txID, section, layerHashB64 string, fromKeys *identity.CompanyIdentity, fromName, toName string, toEncPublic *ecdh.PublicKey) (*ShareRecord, error) {
	fromPriv, err := fromKeys.EncryptionPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("share: grantor decryption key: %w", err)
	}
	symKey, err := keywrap.Unwrap(fromPriv, fromWK)
	if err != nil {
		return nil, fmt.Errorf("share: grantor key: %w", err)
	}

	ekTo, err := keywrap.Wrap(toEncPublic, symKey)
	if err != nil {
		return nil, fmt.Errorf("share: wrap for recipient: %w", err)
	}
	ekToBlob, err := keywrap.Encode(ekTo)
	if err != nil {
		return nil, fmt.Errorf("share: encode wrapped key for recipient: %w", err)
	}

	id, err := ids.New()
	if err != nil {
		return nil, fmt.Errorf("share: generate id: %w", err)
	}

	record := &ShareRecord{
		ID:          id,
		TxID:        txID,
		Section:     section,
		FromCompany: fromName,
		ToCompany:   toName,
		EKTo:        primitives.B64Encode(ekToBlob),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		LayerHash:   layerHashB64,
	}

	payload, err := signingPayload(record)
	if err != nil {
		return nil, fmt.Errorf("share: sign: %w", err)
	}
	fromSignPriv, err := fromKeys.SigningPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("share: grantor signing key: %w", err)
	}
	record.SigShare = primitives.B64Encode(primitives.Sign(fromSignPriv, primitives.Sum256(payload)))

	return record, nil
}

// Verify confirms s.SigShare was produced by fromSigningPublic over s's
// other fields, i.e. that FromCompany really authorized this delegation. A
// nil key always fails rather than panicking, matching the protocol's rule
// that an unknown signer's share is reported invalid, never thrown.
func Verify(s *ShareRecord, fromSigningPublic ed25519.PublicKey) bool {
	if len(fromSigningPublic) == 0 {
		return false
	}
	payload, err := signingPayload(s)
	if err != nil {
		return false
	}
	sig, err := primitives.B64Decode(s.SigShare)
	if err != nil {
		return false
	}
	return primitives.Verify(fromSigningPublic, primitives.Sum256(payload), sig)
}

// Ref converts a ShareRecord into the minimal envelope.ShareRef the core
// needs to open a transaction or layer on the recipient's behalf.
func (s *ShareRecord) Ref() (*envelope.ShareRef, error) {
	blob, err := primitives.B64Decode(s.EKTo)
	if err != nil {
		return nil, fmt.Errorf("share: decode ek_to: %w", err)
	}
	wk, err := keywrap.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("share: decode ek_to: %w", err)
	}
	return &envelope.ShareRef{
		TxID:    s.TxID,
		Section: s.Section,
		EKTo:    wk,
	}, nil
}

// Package check implements the protocol's non-throwing verification
// aggregator: given a ProtectedTransaction and the public keys and share
// records a caller wants to audit, it reports what verifies and what
// doesn't without ever returning an error itself. It is the tool an
// auditor or a UI status line reaches for instead of calling Unprotect and
// inspecting which error came back.
package check

import (
	"crypto/ed25519"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/primitives"
	"github.com/luxfi/dvpguard/pkg/share"
)

// ShareCheck reports the verification result for one ShareRecord.
type ShareCheck struct {
	ID          string  `json:"id"`
	FromCompany string  `json:"from_company"`
	Valid       bool    `json:"valid"`
	Section     *string `json:"section,omitempty"`
	LayerHashOK *bool   `json:"layer_hash_ok,omitempty"`
}

// Report is the full result of Check: whether the seller's and (if present)
// buyer's signatures verify over hash_T, and the verification result of
// every share record supplied.
type Report struct {
	SellerSigOK bool         `json:"seller_sig_ok"`
	BuyerSigOK  *bool        `json:"buyer_sig_ok"`
	Shares      []ShareCheck `json:"shares"`
}

// Check verifies pt's seller and (if present) buyer signature over hash_T,
// and every entry in records against sharePublicKeys — keyed by
// from_company name. A share record signed by an unknown company verifies
// as invalid rather than erroring; buyerSigningPublic may be nil, in which
// case a present sig_buyer is reported invalid (not null — null means
// "absent", distinct from "present but unverifiable").
func Check(pt *envelope.ProtectedTransaction, sellerSigningPublic ed25519.PublicKey, buyerSigningPublic ed25519.PublicKey, records []*share.ShareRecord, sharePublicKeys map[string]ed25519.PublicKey) *Report {
	report := &Report{Shares: make([]ShareCheck, 0, len(records))}

	hashT, hashErr := primitives.B64Decode(pt.HashT)

	if hashErr == nil {
		if sigSeller, err := primitives.B64Decode(pt.SigSeller); err == nil {
			report.SellerSigOK = primitives.Verify(sellerSigningPublic, hashT, sigSeller)
		}
	}

	if pt.SigBuyer != nil {
		ok := false
		if hashErr == nil && len(buyerSigningPublic) > 0 {
			if sigBuyer, err := primitives.B64Decode(*pt.SigBuyer); err == nil {
				ok = primitives.Verify(buyerSigningPublic, hashT, sigBuyer)
			}
		}
		report.BuyerSigOK = &ok
	}

	for _, rec := range records {
		report.Shares = append(report.Shares, checkShare(pt, rec, sharePublicKeys))
	}

	return report
}

func checkShare(pt *envelope.ProtectedTransaction, rec *share.ShareRecord, sharePublicKeys map[string]ed25519.PublicKey) ShareCheck {
	result := ShareCheck{ID: rec.ID, FromCompany: rec.FromCompany}

	fromPub := sharePublicKeys[rec.FromCompany]
	result.Valid = share.Verify(rec, fromPub)

	if rec.Section != "" {
		section := rec.Section
		result.Section = &section
		layerOK := false
		if layer, ok := pt.Layer(rec.Section); ok {
			layerOK = layer.HashT == rec.LayerHash
		}
		result.LayerHashOK = &layerOK
	}

	return result
}

package envelope

import (
	"errors"
	"fmt"
)

// Sentinel and structured errors for the envelope core. Names mirror the
// taxonomy the protocol specifies; callers are expected to use errors.Is /
// errors.As rather than match on message text.
var (
	// ErrSellerSignatureInvalid is returned by BuyerSign when the seller's
	// signature over hash_T does not verify; the buyer refuses to
	// countersign rather than propagate a silently-tampered envelope.
	ErrSellerSignatureInvalid = errors.New("envelope: seller signature invalid, refusing to countersign")

	// ErrDecryptFailed covers AES-GCM authentication failure on the
	// envelope ciphertext: tampering, wrong key, or wrong AAD.
	ErrDecryptFailed = errors.New("envelope: decrypt failed")

	// ErrWrongShareTx is returned when a ShareRecord's tx_id does not
	// match the envelope being opened.
	ErrWrongShareTx = errors.New("envelope: share record tx_id mismatch")

	// ErrWrongShareSection is returned when a ShareRecord's section does
	// not match the layer being opened, or when a layer share is used
	// against the full transaction (or vice versa).
	ErrWrongShareSection = errors.New("envelope: share record section mismatch")
)

// ErrNoKeyForCompany is returned when ek_map has no entry for the company
// asked to decrypt.
type ErrNoKeyForCompany struct {
	Company string
}

func (e *ErrNoKeyForCompany) Error() string {
	return fmt.Sprintf("envelope: no wrapped key for company %q", e.Company)
}

// ErrNoSuchLayer is returned when a named section has no protected layer.
type ErrNoSuchLayer struct {
	Section string
}

func (e *ErrNoSuchLayer) Error() string {
	return fmt.Sprintf("envelope: no such layer %q", e.Section)
}

// ErrMissingFields is returned by ProtectWithLayers when a section names
// fields absent from the source document.
type ErrMissingFields struct {
	Section string
	Fields  []string
}

func (e *ErrMissingFields) Error() string {
	return fmt.Sprintf("envelope: section %q references missing fields %v", e.Section, e.Fields)
}

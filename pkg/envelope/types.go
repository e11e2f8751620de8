// Package envelope implements the authenticated envelope at the heart of
// the protocol: ProtectedTransaction (and its layered sibling,
// LayeredEnvelope) encrypt a canonical document once under a random
// symmetric key, wrap that key for every authorized reader, and bind the
// whole thing to a transaction hash the seller — and later the buyer —
// sign.
package envelope

import (
	"github.com/luxfi/dvpguard/pkg/keywrap"
	"github.com/luxfi/dvpguard/pkg/primitives"
)

// Document is the opaque JSON value the protocol protects. The core never
// interprets document semantics beyond top-level field access for tx_id
// derivation and layering.
type Document map[string]any

// Meta carries the fixed algorithm tags every envelope advertises, plus —
// for a layer — the section name and the ordered field list it discloses.
type Meta struct {
	HashAlg string   `json:"hash_alg"`
	Cipher  string   `json:"cipher"`
	Wrap    string   `json:"wrap"`
	Section string   `json:"section,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// defaultMeta returns the fixed algorithm tags every envelope carries.
func defaultMeta() Meta {
	return Meta{
		HashAlg: "sha256",
		Cipher:  "AES-256-GCM",
		Wrap:    "X25519+AESGCM",
	}
}

// ProtectedTransaction is the main envelope: an encrypted, key-wrapped,
// seller-signed (and later buyer-countersigned) DvP document, optionally
// accompanied by independently-protected disclosure layers.
type ProtectedTransaction struct {
	TxID       string                      `json:"tx_id"`
	Ciphertext string                      `json:"ciphertext"`
	Tag        string                      `json:"tag"`
	Nonce      string                      `json:"nonce"`
	EKMap      map[string]string           `json:"ek_map"`
	HashT      string                      `json:"hash_T"`
	SigSeller  string                      `json:"sig_seller"`
	SigBuyer   *string                     `json:"sig_buyer"`
	CreatedAt  string                      `json:"created_at"`
	Meta       Meta                        `json:"meta"`
	Layers     map[string]*LayeredEnvelope `json:"layers,omitempty"`
}

// LayeredEnvelope is an independently-protected subset of a parent
// document's fields. It shares the parent's tx_id but carries its own
// symmetric key, wrapped separately for seller and buyer; it never nests
// further layers and never carries a buyer signature of its own.
type LayeredEnvelope struct {
	TxID       string            `json:"tx_id"`
	Ciphertext string            `json:"ciphertext"`
	Tag        string            `json:"tag"`
	Nonce      string            `json:"nonce"`
	EKMap      map[string]string `json:"ek_map"`
	HashT      string            `json:"hash_T"`
	SigSeller  string            `json:"sig_seller"`
	CreatedAt  string            `json:"created_at"`
	Meta       Meta              `json:"meta"`
}

// ShareRef is the minimal view of a ShareRecord the envelope core needs to
// open a transaction or layer on a third party's behalf. Issuing and
// verifying the full signed ShareRecord lives in package share, which
// depends on envelope — not the other way around — so ShareRef is the seam
// between the two.
type ShareRef struct {
	TxID string
	// Section is empty for a full-transaction share and set for a layer
	// share.
	Section string
	EKTo    *keywrap.WrappedKey
}

// wrappedKeyEntry decodes one ek_map value back into a WrappedKey.
func wrappedKeyEntry(ekMap map[string]string, company string) (*keywrap.WrappedKey, bool, error) {
	encoded, ok := ekMap[company]
	if !ok {
		return nil, false, nil
	}
	blob, err := primitives.B64Decode(encoded)
	if err != nil {
		return nil, true, err
	}
	wk, err := keywrap.Decode(blob)
	if err != nil {
		return nil, true, err
	}
	return wk, true, nil
}

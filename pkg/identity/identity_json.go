package identity

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/dvpguard/pkg/primitives"
)

// keyPairJSON mirrors the prototype's on-disk key file shape: each PEM blob
// is itself base64-encoded before going into JSON, so PEM headers and
// newlines never have to survive a JSON string literal.
type keyPairJSON struct {
	Private string `json:"private"`
	Public  string `json:"public"`
}

type identityJSON struct {
	Name       string      `json:"name"`
	Signing    keyPairJSON `json:"signing"`
	Encryption keyPairJSON `json:"encryption"`
}

// Serialize renders a CompanyIdentity as the PEM-in-base64-in-JSON
// interchange format used by the key file store and the CLI.
func Serialize(c *CompanyIdentity) ([]byte, error) {
	doc := identityJSON{
		Name: c.Name,
		Signing: keyPairJSON{
			Private: primitives.B64Encode(c.SigningPrivatePEM),
			Public:  primitives.B64Encode(c.SigningPublicPEM),
		},
		Encryption: keyPairJSON{
			Private: primitives.B64Encode(c.EncryptionPrivatePEM),
			Public:  primitives.B64Encode(c.EncryptionPublicPEM),
		},
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("identity: serialize: %w", err)
	}
	return out, nil
}

// Deserialize parses the interchange format produced by Serialize.
func Deserialize(raw []byte) (*CompanyIdentity, error) {
	var doc identityJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("identity: deserialize: %w", err)
	}
	signPriv, err := primitives.B64Decode(doc.Signing.Private)
	if err != nil {
		return nil, fmt.Errorf("identity: decode signing private: %w", err)
	}
	signPub, err := primitives.B64Decode(doc.Signing.Public)
	if err != nil {
		return nil, fmt.Errorf("identity: decode signing public: %w", err)
	}
	encPriv, err := primitives.B64Decode(doc.Encryption.Private)
	if err != nil {
		return nil, fmt.Errorf("identity: decode encryption private: %w", err)
	}
	encPub, err := primitives.B64Decode(doc.Encryption.Public)
	if err != nil {
		return nil, fmt.Errorf("identity: decode encryption public: %w", err)
	}
	// A public-only identity carries "" for its private fields; keep those
	// nil, as PublicOnly produces them, rather than empty slices.
	if len(signPriv) == 0 {
		signPriv = nil
	}
	if len(encPriv) == 0 {
		encPriv = nil
	}
	return &CompanyIdentity{
		Name:                 doc.Name,
		SigningPrivatePEM:    signPriv,
		SigningPublicPEM:     signPub,
		EncryptionPrivatePEM: encPriv,
		EncryptionPublicPEM:  encPub,
	}, nil
}

// PublicOnly returns a copy of c with private key material stripped, safe to
// publish or register with a counterparty.
func PublicOnly(c *CompanyIdentity) *CompanyIdentity {
	return &CompanyIdentity{
		Name:                c.Name,
		SigningPublicPEM:    c.SigningPublicPEM,
		EncryptionPublicPEM: c.EncryptionPublicPEM,
	}
}

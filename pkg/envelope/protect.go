package envelope

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/luxfi/dvpguard/pkg/canon"
	"github.com/luxfi/dvpguard/pkg/identity"
	"github.com/luxfi/dvpguard/pkg/ids"
	"github.com/luxfi/dvpguard/pkg/keywrap"
	"github.com/luxfi/dvpguard/pkg/primitives"
)

// sealRecipient names one party a sealed document's symmetric key is
// wrapped for.
type sealRecipient struct {
	name string
	pub  *ecdh.PublicKey
}

// Protect seals document into a ProtectedTransaction: a fresh symmetric key
// encrypts the canonical document once under AES-256-GCM (AAD-bound to the
// transaction hash), the key is wrapped separately for seller and buyer,
// and the seller signs the resulting transaction hash.
func Protect(document Document, seller, buyer *identity.CompanyIdentity) (*ProtectedTransaction, error) {
	txID, err := deriveTxID(document)
	if err != nil {
		return nil, fmt.Errorf("envelope: protect: %w", err)
	}

	sellerEncPub, err := seller.EncryptionPublicKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: protect: seller key: %w", err)
	}
	buyerEncPub, err := buyer.EncryptionPublicKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: protect: buyer key: %w", err)
	}
	sellerSignPriv, err := seller.SigningPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: protect: seller signing key: %w", err)
	}

	return sealDocument(document, txID, "", []sealRecipient{
		{name: seller.Name, pub: sellerEncPub},
		{name: buyer.Name, pub: buyerEncPub},
	}, sellerSignPriv)
}

// sealDocument is the shared core of Protect and ProtectWithLayers:
// canonicalize, derive hash_T, encrypt once, wrap per recipient, sign with
// the seller's key. section is empty for a full transaction and the layer
// name for a layer.
func sealDocument(document Document, txID, section string, recipients []sealRecipient, sellerSignPriv ed25519.PrivateKey) (*ProtectedTransaction, error) {
	plaintext, err := canon.Bytes(document)
	if err != nil {
		return nil, fmt.Errorf("envelope: protect: canonicalize: %w", err)
	}
	hashT := primitives.Sum256(plaintext)

	symKey, err := primitives.RandomBytes(primitives.SymKeySize)
	if err != nil {
		return nil, fmt.Errorf("envelope: protect: generate key: %w", err)
	}
	// hash_T is the AAD: it cryptographically binds this ciphertext to the
	// hash the seller (and later the buyer) signs, so a ciphertext cannot be
	// spliced onto a different hash_T without breaking decryption.
	ciphertext, tag, nonce, err := primitives.SealAESGCM(symKey, plaintext, hashT)
	if err != nil {
		return nil, fmt.Errorf("envelope: protect: seal: %w", err)
	}

	ekMap := make(map[string]string, len(recipients))
	for _, r := range recipients {
		wk, err := keywrap.Wrap(r.pub, symKey)
		if err != nil {
			return nil, fmt.Errorf("envelope: protect: wrap key for %q: %w", r.name, err)
		}
		encoded, err := keywrap.Encode(wk)
		if err != nil {
			return nil, fmt.Errorf("envelope: protect: encode wrapped key for %q: %w", r.name, err)
		}
		ekMap[r.name] = primitives.B64Encode(encoded)
	}

	sigSeller := primitives.Sign(sellerSignPriv, hashT)

	meta := defaultMeta()
	if section != "" {
		meta.Section = section
	}

	return &ProtectedTransaction{
		TxID:       txID,
		Ciphertext: primitives.B64Encode(ciphertext),
		Tag:        primitives.B64Encode(tag),
		Nonce:      primitives.B64Encode(nonce),
		EKMap:      ekMap,
		HashT:      primitives.B64Encode(hashT),
		SigSeller:  primitives.B64Encode(sigSeller),
		SigBuyer:   nil,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Meta:       meta,
	}, nil
}

// deriveTxID uses the document's own "id" field when it is already a
// string, and generates a fresh random id otherwise. A non-string "id" is
// rejected rather than coerced, to avoid collision ambiguity between a
// stringified id and a genuinely different document that happens to
// stringify the same way.
func deriveTxID(document Document) (string, error) {
	if raw, ok := document["id"]; ok {
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("document \"id\" field must be a string, got %T", raw)
		}
		return s, nil
	}
	return ids.New()
}

// BuyerSign countersigns pt's transaction hash after verifying the seller's
// existing signature. It is non-destructive: it returns a new
// ProtectedTransaction rather than mutating pt, and it refuses to
// countersign when the seller's signature does not verify.
func BuyerSign(pt *ProtectedTransaction, buyer *identity.CompanyIdentity, sellerSigningPublic ed25519.PublicKey) (*ProtectedTransaction, error) {
	hashT, err := primitives.B64Decode(pt.HashT)
	if err != nil {
		return nil, fmt.Errorf("envelope: buyer_sign: decode hash: %w", err)
	}
	sigSeller, err := primitives.B64Decode(pt.SigSeller)
	if err != nil {
		return nil, fmt.Errorf("envelope: buyer_sign: decode seller signature: %w", err)
	}
	if !primitives.Verify(sellerSigningPublic, hashT, sigSeller) {
		return nil, ErrSellerSignatureInvalid
	}

	buyerSignPriv, err := buyer.SigningPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: buyer_sign: buyer signing key: %w", err)
	}
	sigBuyer := primitives.B64Encode(primitives.Sign(buyerSignPriv, hashT))

	out := *pt
	out.SigBuyer = &sigBuyer
	out.EKMap = copyStringMap(pt.EKMap)
	if pt.Layers != nil {
		out.Layers = make(map[string]*LayeredEnvelope, len(pt.Layers))
		for k, v := range pt.Layers {
			out.Layers[k] = v
		}
	}
	return &out, nil
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

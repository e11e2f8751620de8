package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/luxfi/dvpguard/pkg/identity"
	"github.com/luxfi/dvpguard/pkg/keywrap"
	"github.com/luxfi/dvpguard/pkg/primitives"
)

// Unprotect decrypts pt for companyName, which must either hold its own
// entry in pt's ek_map or present a ShareRef delegating access. It returns
// the recovered Document.
func Unprotect(pt *ProtectedTransaction, keys *identity.CompanyIdentity, companyName string, share *ShareRef) (Document, error) {
	symKey, err := resolveSymKey(pt.EKMap, pt.TxID, "", keys, companyName, share)
	if err != nil {
		return nil, err
	}
	hashT, err := primitives.B64Decode(pt.HashT)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	plaintext, err := decryptEnvelope(pt.Ciphertext, pt.Tag, pt.Nonce, hashT, symKey)
	if err != nil {
		return nil, err
	}
	return decodeDocument(plaintext)
}

// UnprotectLayer decrypts the named layer of pt for companyName.
func UnprotectLayer(pt *ProtectedTransaction, keys *identity.CompanyIdentity, companyName, section string, share *ShareRef) (Document, error) {
	layer, ok := pt.Layers[section]
	if !ok {
		return nil, &ErrNoSuchLayer{Section: section}
	}
	symKey, err := resolveSymKey(layer.EKMap, pt.TxID, section, keys, companyName, share)
	if err != nil {
		return nil, err
	}
	hashT, err := primitives.B64Decode(layer.HashT)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	plaintext, err := decryptEnvelope(layer.Ciphertext, layer.Tag, layer.Nonce, hashT, symKey)
	if err != nil {
		return nil, err
	}
	return decodeDocument(plaintext)
}

// resolveSymKey recovers the symmetric key either from the caller's own
// ek_map entry, or — when none exists — from a ShareRef delegating a third
// party's access. The ShareRef's tx_id and section must match what is being
// opened; a mismatch is refused rather than silently ignored.
func resolveSymKey(ekMap map[string]string, txID, section string, keys *identity.CompanyIdentity, companyName string, share *ShareRef) ([]byte, error) {
	if share != nil {
		if share.TxID != txID {
			return nil, ErrWrongShareTx
		}
		if share.Section != section {
			return nil, ErrWrongShareSection
		}
	}
	if wk, ok, err := wrappedKeyEntry(ekMap, companyName); err != nil {
		return nil, fmt.Errorf("envelope: unprotect: decode wrapped key: %w", err)
	} else if ok {
		priv, err := keys.EncryptionPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("envelope: unprotect: decryption key: %w", err)
		}
		symKey, err := keywrap.Unwrap(priv, wk)
		if err != nil {
			return nil, fmt.Errorf("envelope: unprotect: %w", err)
		}
		return symKey, nil
	}

	if share == nil {
		return nil, &ErrNoKeyForCompany{Company: companyName}
	}
	priv, err := keys.EncryptionPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: unprotect: decryption key: %w", err)
	}
	symKey, err := keywrap.Unwrap(priv, share.EKTo)
	if err != nil {
		return nil, fmt.Errorf("envelope: unprotect: %w", err)
	}
	return symKey, nil
}

func decryptEnvelope(ciphertextB64, tagB64, nonceB64 string, aad, symKey []byte) ([]byte, error) {
	ciphertext, err := primitives.B64Decode(ciphertextB64)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	tag, err := primitives.B64Decode(tagB64)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	nonce, err := primitives.B64Decode(nonceB64)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	plaintext, err := primitives.OpenAESGCM(symKey, ciphertext, tag, nonce, aad)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

func decodeDocument(plaintext []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(plaintext))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("envelope: unprotect: decode document: %w", err)
	}
	return doc, nil
}

package envelope

import (
	"fmt"
	"sort"

	"github.com/luxfi/dvpguard/pkg/identity"
)

// ProtectWithLayers seals document as a full ProtectedTransaction exactly as
// Protect does, then additionally seals one independent LayeredEnvelope per
// entry in layers: each names a disclosure section and the subset of
// top-level document fields it carries. A layer's symmetric key is distinct
// from the parent's and from every other layer's, so granting access to one
// section never grants access to another.
func ProtectWithLayers(document Document, seller, buyer *identity.CompanyIdentity, layers map[string][]string) (*ProtectedTransaction, error) {
	pt, err := Protect(document, seller, buyer)
	if err != nil {
		return nil, err
	}

	sellerEncPub, err := seller.EncryptionPublicKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: protect_with_layers: seller key: %w", err)
	}
	buyerEncPub, err := buyer.EncryptionPublicKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: protect_with_layers: buyer key: %w", err)
	}
	sellerSignPriv, err := seller.SigningPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("envelope: protect_with_layers: seller signing key: %w", err)
	}

	sections := make([]string, 0, len(layers))
	for section := range layers {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	pt.Layers = make(map[string]*LayeredEnvelope, len(sections))
	for _, section := range sections {
		fields := layers[section]
		subset, missing := projectFields(document, fields)
		if len(missing) > 0 {
			return nil, &ErrMissingFields{Section: section, Fields: missing}
		}

		sealed, err := sealDocument(subset, pt.TxID, section, []sealRecipient{
			{name: seller.Name, pub: sellerEncPub},
			{name: buyer.Name, pub: buyerEncPub},
		}, sellerSignPriv)
		if err != nil {
			return nil, fmt.Errorf("envelope: protect_with_layers: section %q: %w", section, err)
		}
		sealed.Meta.Fields = append([]string(nil), fields...)

		pt.Layers[section] = &LayeredEnvelope{
			TxID:       sealed.TxID,
			Ciphertext: sealed.Ciphertext,
			Tag:        sealed.Tag,
			Nonce:      sealed.Nonce,
			EKMap:      sealed.EKMap,
			HashT:      sealed.HashT,
			SigSeller:  sealed.SigSeller,
			CreatedAt:  sealed.CreatedAt,
			Meta:       sealed.Meta,
		}
	}

	return pt, nil
}

// projectFields returns the subset of document holding exactly the named
// top-level fields, along with any names absent from document.
func projectFields(document Document, fields []string) (Document, []string) {
	subset := make(Document, len(fields))
	var missing []string
	for _, f := range fields {
		v, ok := document[f]
		if !ok {
			missing = append(missing, f)
			continue
		}
		subset[f] = v
	}
	return subset, missing
}

package check

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/identity"
	"github.com/luxfi/dvpguard/pkg/share"
	"github.com/stretchr/testify/require"
)

func mustIdentities(t *testing.T) (seller, buyer, third *identity.CompanyIdentity) {
	t.Helper()
	s, err := identity.Generate("seller")
	require.NoError(t, err)
	b, err := identity.Generate("buyer")
	require.NoError(t, err)
	c, err := identity.Generate("auditor")
	require.NoError(t, err)
	return s, b, c
}

func TestCheckReportsSellerSigOnly(t *testing.T) {
	require := require.New(t)
	seller, buyer, _ := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(err)

	sellerPub, err := seller.SigningPublicKey()
	require.NoError(err)
	buyerPub, err := buyer.SigningPublicKey()
	require.NoError(err)

	report := Check(pt, sellerPub, buyerPub, nil, nil)
	require.True(report.SellerSigOK)
	require.Nil(report.BuyerSigOK)
	require.Empty(report.Shares)
}

func TestCheckReportsBuyerSigAfterSigning(t *testing.T) {
	require := require.New(t)
	seller, buyer, _ := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(err)
	sellerPub, err := seller.SigningPublicKey()
	require.NoError(err)

	signed, err := envelope.BuyerSign(pt, buyer, sellerPub)
	require.NoError(err)

	buyerPub, err := buyer.SigningPublicKey()
	require.NoError(err)
	report := Check(signed, sellerPub, buyerPub, nil, nil)
	require.True(report.SellerSigOK)
	require.NotNil(report.BuyerSigOK)
	require.True(*report.BuyerSigOK)
}

func TestCheckReportsInvalidBuyerSigWhenKeyMissing(t *testing.T) {
	require := require.New(t)
	seller, buyer, _ := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(err)
	sellerPub, err := seller.SigningPublicKey()
	require.NoError(err)
	signed, err := envelope.BuyerSign(pt, buyer, sellerPub)
	require.NoError(err)

	report := Check(signed, sellerPub, nil, nil, nil)
	require.NotNil(report.BuyerSigOK)
	require.False(*report.BuyerSigOK)
}

func TestCheckDetectsInvalidSellerSig(t *testing.T) {
	require := require.New(t)
	seller, buyer, _ := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(err)

	wrongPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(err)

	report := Check(pt, wrongPub, nil, nil, nil)
	require.False(report.SellerSigOK)
}

func TestCheckSharesUnknownSignerIsInvalid(t *testing.T) {
	require := require.New(t)
	seller, buyer, third := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(err)

	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(err)
	rec, err := share.CreateShareRecord(pt, seller, "auditor", thirdEncPub, "seller")
	require.NoError(err)

	sellerPub, err := seller.SigningPublicKey()
	require.NoError(err)
	buyerPub, err := buyer.SigningPublicKey()
	require.NoError(err)

	// sharePublicKeys deliberately omits "seller"
	report := Check(pt, sellerPub, buyerPub, []*share.ShareRecord{rec}, map[string]ed25519.PublicKey{})
	require.Len(report.Shares, 1)
	require.False(report.Shares[0].Valid)
}

func TestCheckSharesKnownSignerIsValid(t *testing.T) {
	require := require.New(t)
	seller, buyer, third := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(err)

	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(err)
	rec, err := share.CreateShareRecord(pt, seller, "auditor", thirdEncPub, "seller")
	require.NoError(err)

	sellerPub, err := seller.SigningPublicKey()
	require.NoError(err)
	buyerPub, err := buyer.SigningPublicKey()
	require.NoError(err)

	report := Check(pt, sellerPub, buyerPub, []*share.ShareRecord{rec},
		map[string]ed25519.PublicKey{"seller": sellerPub})
	require.Len(report.Shares, 1)
	require.True(report.Shares[0].Valid)
	require.Nil(report.Shares[0].Section)
}

func TestCheckLayerShareReportsLayerHash(t *testing.T) {
	require := require.New(t)
	seller, buyer, third := mustIdentities(t)
	pt, err := envelope.ProtectWithLayers(
		envelope.Document{"amount": 1}, seller, buyer, map[string][]string{"pricing": {"amount"}},
	)
	require.NoError(err)

	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(err)
	recs, err := share.CreateLayerShareRecords(pt, []string{"pricing"}, seller, "auditor", thirdEncPub, "seller")
	require.NoError(err)

	sellerPub, err := seller.SigningPublicKey()
	require.NoError(err)

	report := Check(pt, sellerPub, nil, recs, map[string]ed25519.PublicKey{"seller": sellerPub})
	require.Len(report.Shares, 1)
	require.NotNil(report.Shares[0].Section)
	require.Equal("pricing", *report.Shares[0].Section)
	require.NotNil(report.Shares[0].LayerHashOK)
	require.True(*report.Shares[0].LayerHashOK)
}

package share

import (
	"testing"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/identity"
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

func TestCreateShareRecordGrantsThirdPartyAccess(t *testing.T) {
	require := require.New(t)
	seller, buyer, third := mustIdentities(t)

	pt, err := envelope.Protect(envelope.Document{"product": "widget"}, seller, buyer)
	require.NoError(err)

	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(err)

	rec, err := CreateShareRecord(pt, buyer, "auditor", thirdEncPub, "buyer")
	require.NoError(err)
	require.Equal(pt.TxID, rec.TxID)
	require.Empty(rec.Section)
	require.Equal("buyer", rec.FromCompany)
	require.Equal("auditor", rec.ToCompany)

	ref, err := rec.Ref()
	require.NoError(err)
	doc, err := envelope.Unprotect(pt, third, "auditor", ref)
	require.NoError(err)
	require.Equal("widget", doc["product"])
}

func TestCreateShareRecordFailsForUnknownGrantor(t *testing.T) {
	seller, buyer, third := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(t, err)

	outsider, err := identity.Generate("outsider")
	require.NoError(t, err)
	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(t, err)

	_, err = CreateShareRecord(pt, outsider, "auditor", thirdEncPub, "outsider")
	var target *envelope.ErrNoKeyForCompany
	require.ErrorAs(t, err, &target)
}

func TestVerifyAcceptsValidSignatureAndRejectsTamper(t *testing.T) {
	require := require.New(t)
	seller, buyer, third := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(err)

	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(err)
	rec, err := CreateShareRecord(pt, seller, "auditor", thirdEncPub, "seller")
	require.NoError(err)

	sellerSignPub, err := seller.SigningPublicKey()
	require.NoError(err)
	require.True(Verify(rec, sellerSignPub))

	rec.ToCompany = "someone-else"
	require.False(Verify(rec, sellerSignPub))
}

func TestVerifyRejectsUnknownSigner(t *testing.T) {
	seller, buyer, third := mustIdentities(t)
	pt, err := envelope.Protect(envelope.Document{"x": 1}, seller, buyer)
	require.NoError(t, err)
	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(t, err)
	rec, err := CreateShareRecord(pt, seller, "auditor", thirdEncPub, "seller")
	require.NoError(t, err)

	require.False(t, Verify(rec, nil))
}

func TestCreateLayerShareRecordsPerSection(t *testing.T) {
	require := require.New(t)
	seller, buyer, third := mustIdentities(t)

	pt, err := envelope.ProtectWithLayers(
		envelope.Document{"amount": 1200, "route": "A->B"},
		seller, buyer,
		map[string][]string{"pricing": {"amount"}, "logistics": {"route"}},
	)
	require.NoError(err)

	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(err)

	recs, err := CreateLayerShareRecords(pt, []string{"pricing"}, seller, "auditor", thirdEncPub, "seller")
	require.NoError(err)
	require.Len(recs, 1)
	require.Equal("pricing", recs[0].Section)
	require.NotEmpty(recs[0].LayerHash)

	ref, err := recs[0].Ref()
	require.NoError(err)
	doc, err := envelope.UnprotectLayer(pt, third, "auditor", "pricing", ref)
	require.NoError(err)
	require.Equal(float64(1200), doc["amount"])
}

func TestCreateLayerShareRecordsRejectsUnknownSection(t *testing.T) {
	seller, buyer, third := mustIdentities(t)
	pt, err := envelope.ProtectWithLayers(
		envelope.Document{"amount": 1}, seller, buyer, map[string][]string{"pricing": {"amount"}},
	)
	require.NoError(t, err)
	thirdEncPub, err := third.EncryptionPublicKey()
	require.NoError(t, err)

	_, err = CreateLayerShareRecords(pt, []string{"missing"}, seller, "auditor", thirdEncPub, "seller")
	var target *envelope.ErrNoSuchLayer
	require.ErrorAs(t, err, &target)
}

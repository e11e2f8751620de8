package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/dvpguard/pkg/check"
	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/share"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEndToEndProtectSignCheckUnprotect(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")

	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "seller"}))
	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "buyer"}))

	docPath := writeFile(t, dir, "doc.json", `{"product":"widget","amount":1200}`)
	protectedPath := filepath.Join(dir, "protected.json")
	require.NoError(runProtect([]string{
		"-keys-dir", keysDir, "-seller", "seller", "-buyer", "buyer",
		"-doc", docPath, "-out", protectedPath,
	}))

	var pt envelope.ProtectedTransaction
	require.NoError(readJSON(protectedPath, &pt))
	require.NotEmpty(pt.TxID)
	require.Nil(pt.SigBuyer)

	signedPath := filepath.Join(dir, "signed.json")
	require.NoError(runBuyerSign([]string{
		"-keys-dir", keysDir, "-seller", "seller", "-buyer", "buyer",
		"-in", protectedPath, "-out", signedPath,
	}))

	var signed envelope.ProtectedTransaction
	require.NoError(readJSON(signedPath, &signed))
	require.NotNil(signed.SigBuyer)

	reportPath := filepath.Join(dir, "report.json")
	require.NoError(runCheck([]string{
		"-keys-dir", keysDir, "-seller", "seller", "-buyer", "buyer",
		"-in", signedPath, "-out", reportPath,
	}))
	var report check.Report
	require.NoError(readJSON(reportPath, &report))
	require.True(report.SellerSigOK)
	require.NotNil(report.BuyerSigOK)
	require.True(*report.BuyerSigOK)

	plainPath := filepath.Join(dir, "plain.json")
	require.NoError(runUnprotect([]string{
		"-keys-dir", keysDir, "-as", "buyer", "-in", signedPath, "-out", plainPath,
	}))
	var doc envelope.Document
	require.NoError(readJSON(plainPath, &doc))
	require.Equal("widget", doc["product"])
}

func TestEndToEndProtectLayersAndShareWithThirdParty(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")

	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "seller"}))
	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "buyer"}))
	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "auditor"}))

	docPath := writeFile(t, dir, "doc.json", `{"amount":1200,"route":"A->B"}`)
	layersPath := writeFile(t, dir, "layers.json", `{"pricing":["amount"],"logistics":["route"]}`)
	protectedPath := filepath.Join(dir, "protected.json")

	require.NoError(runProtectLayers([]string{
		"-keys-dir", keysDir, "-seller", "seller", "-buyer", "buyer",
		"-doc", docPath, "-layers", layersPath, "-out", protectedPath,
	}))

	sharePath := filepath.Join(dir, "share.json")
	require.NoError(runShare([]string{
		"-keys-dir", keysDir, "-from", "seller", "-to", "auditor",
		"-in", protectedPath, "-section", "pricing", "-out", sharePath,
	}))

	var rec share.ShareRecord
	require.NoError(readJSON(sharePath, &rec))
	require.Equal("pricing", rec.Section)

	layerPlainPath := filepath.Join(dir, "layer_plain.json")
	require.NoError(runUnprotectLayer([]string{
		"-keys-dir", keysDir, "-as", "auditor", "-in", protectedPath,
		"-section", "pricing", "-share", sharePath, "-out", layerPlainPath,
	}))

	var doc envelope.Document
	require.NoError(readJSON(layerPlainPath, &doc))
	require.Equal(float64(1200), doc["amount"])
}

func TestGenerateKeysRequiresName(t *testing.T) {
	err := runGenerateKeys([]string{"-keys-dir", t.TempDir()})
	require.Error(t, err)
}

func TestProtectFailsForUnknownSeller(t *testing.T) {
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	require.NoError(t, runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "buyer"}))
	docPath := writeFile(t, dir, "doc.json", `{"x":1}`)

	err := runProtect([]string{
		"-keys-dir", keysDir, "-seller", "nobody", "-buyer", "buyer",
		"-doc", docPath, "-out", filepath.Join(dir, "out.json"),
	})
	require.Error(t, err)
}

func TestUnprotectFailsForUnauthorizedCompany(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "seller"}))
	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "buyer"}))
	require.NoError(runGenerateKeys([]string{"-keys-dir", keysDir, "-name", "outsider"}))

	docPath := writeFile(t, dir, "doc.json", `{"x":1}`)
	protectedPath := filepath.Join(dir, "protected.json")
	require.NoError(runProtect([]string{
		"-keys-dir", keysDir, "-seller", "seller", "-buyer", "buyer",
		"-doc", docPath, "-out", protectedPath,
	}))

	err := runUnprotect([]string{
		"-keys-dir", keysDir, "-as", "outsider", "-in", protectedPath,
		"-out", filepath.Join(dir, "plain.json"),
	})
	require.Error(err)
}

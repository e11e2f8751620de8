// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command dvp-auditor is the third-party side of the demo DvP workflow: a
// company with no entry of its own in a transaction's ek_map, relying on a
// ShareRecord the buyer or seller delegated to it, fetched from the
// registry.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/luxfi/dvpguard/internal/keyfile"
	"github.com/luxfi/dvpguard/internal/txclient"
	"github.com/luxfi/dvpguard/pkg/check"
	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/share"
)

func main() {
	keysDir := flag.String("keys-dir", "./keys", "directory holding company identity files")
	company := flag.String("company", "auditor", "this third party's company name")
	seller := flag.String("seller", "seller", "seller company name")
	buyer := flag.String("buyer", "buyer", "buyer company name")
	registry := flag.String("registry", "http://localhost:8090", "transaction registry base URL")
	txID := flag.String("tx-id", "", "transaction id to fetch")
	outputPlain := flag.String("output-plain", "auditor_plain.json", "where to write the decrypted document")
	flag.Parse()

	if *txID == "" {
		fmt.Fprintln(os.Stderr, "dvp-auditor: -tx-id is required")
		os.Exit(2)
	}

	if err := run(*keysDir, *company, *seller, *buyer, *registry, *txID, *outputPlain); err != nil {
		fmt.Fprintln(os.Stderr, "dvp-auditor:", err)
		os.Exit(1)
	}
}

func run(keysDir, companyName, sellerName, buyerName, registryURL, txID, outputPlain string) error {
	ctx := context.Background()

	store, err := keyfile.Open(keysDir)
	if err != nil {
		return err
	}
	companyIdent, err := store.LoadOrGenerate(companyName)
	if err != nil {
		return err
	}
	sellerIdent, err := store.LoadOrGenerate(sellerName)
	if err != nil {
		return err
	}
	buyerIdent, err := store.LoadOrGenerate(buyerName)
	if err != nil {
		return err
	}

	client := txclient.New(registryURL, "")
	if err := client.RegisterCompany(ctx, companyIdent); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not register", companyName, ":", err)
	}

	pt, err := client.GetTransaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("fetch transaction: %w", err)
	}

	shares, err := client.ListShares(ctx, txID)
	if err != nil {
		return fmt.Errorf("fetch shares: %w", err)
	}
	var shareForMe *share.ShareRecord
	for _, s := range shares {
		if s.ToCompany == companyName {
			shareForMe = s
			break
		}
	}
	if shareForMe == nil {
		return fmt.Errorf("no share record addressed to %q", companyName)
	}

	sellerSignPub, err := sellerIdent.SigningPublicKey()
	if err != nil {
		return err
	}
	buyerSignPub, err := buyerIdent.SigningPublicKey()
	if err != nil {
		return err
	}
	sharePublicKeys := map[string]ed25519.PublicKey{
		sellerName: sellerSignPub,
		buyerName:  buyerSignPub,
	}

	report := check.Check(pt, sellerSignPub, buyerSignPub, []*share.ShareRecord{shareForMe}, sharePublicKeys)
	reportBlob, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println("check result:", string(reportBlob))

	ref, err := shareForMe.Ref()
	if err != nil {
		return fmt.Errorf("decode share record: %w", err)
	}
	doc, err := envelope.Unprotect(pt, companyIdent, companyName, ref)
	if err != nil {
		return fmt.Errorf("unprotect: %w", err)
	}
	docBlob, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(outputPlain, docBlob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPlain, err)
	}
	fmt.Printf("plaintext written to %s\n", outputPlain)
	return nil
}

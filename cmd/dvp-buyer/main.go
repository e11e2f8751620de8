// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command dvp-buyer is the buyer side of the demo DvP workflow: it fetches
// a transaction from the registry, runs the check engine over it,
// decrypts its own copy, countersigns, pushes the signature back, and
// optionally delegates access to a third party.
package main

import (
	"context"
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
	seller := flag.String("seller", "seller", "seller company name")
	buyer := flag.String("buyer", "buyer", "buyer company name")
	registry := flag.String("registry", "http://localhost:8090", "transaction registry base URL")
	txID := flag.String("tx-id", "", "transaction id to fetch")
	outputPlain := flag.String("output-plain", "buyer_plain.json", "where to write the decrypted document")
	outputProtected := flag.String("output-protected", "buyer_signed.json", "where to write the countersigned transaction")
	shareWith := flag.String("share-with", "", "optional third-party company name to delegate full-transaction access to")
	shareOutput := flag.String("share-output", "share_record.json", "where to write the share record, if --share-with is set")
	flag.Parse()

	if *txID == "" {
		fmt.Fprintln(os.Stderr, "dvp-buyer: -tx-id is required")
		os.Exit(2)
	}

	if err := run(*keysDir, *seller, *buyer, *registry, *txID, *outputPlain, *outputProtected, *shareWith, *shareOutput); err != nil {
		fmt.Fprintln(os.Stderr, "dvp-buyer:", err)
		os.Exit(1)
	}
}

func run(keysDir, sellerName, buyerName, registryURL, txID, outputPlain, outputProtected, shareWith, shareOutput string) error {
	ctx := context.Background()

	store, err := keyfile.Open(keysDir)
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
	if err := client.RegisterCompany(ctx, buyerIdent); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not register buyer:", err)
	}

	pt, err := client.GetTransaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("fetch transaction: %w", err)
	}

	sellerSignPub, err := sellerIdent.SigningPublicKey()
	if err != nil {
		return err
	}
	buyerSignPub, err := buyerIdent.SigningPublicKey()
	if err != nil {
		return err
	}

	report := check.Check(pt, sellerSignPub, buyerSignPub, nil, nil)
	reportBlob, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println("check result:", string(reportBlob))

	doc, err := envelope.Unprotect(pt, buyerIdent, buyerName, nil)
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

	signed, err := envelope.BuyerSign(pt, buyerIdent, sellerSignPub)
	if err != nil {
		return fmt.Errorf("buyer sign: %w", err)
	}
	signedBlob, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal signed transaction: %w", err)
	}
	if err := os.WriteFile(outputProtected, signedBlob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputProtected, err)
	}

	if err := client.PushBuyerSignature(ctx, txID, *signed.SigBuyer); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not push buyer signature:", err)
	} else {
		fmt.Printf("buyer signature stored for tx %s\n", txID)
	}

	if shareWith == "" {
		return nil
	}

	toIdent, err := store.LoadOrGenerate(shareWith)
	if err != nil {
		return err
	}
	if err := client.RegisterCompany(ctx, toIdent); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not register", shareWith, ":", err)
	}
	toEncPub, err := toIdent.EncryptionPublicKey()
	if err != nil {
		return err
	}
	rec, err := share.CreateShareRecord(signed, buyerIdent, shareWith, toEncPub, buyerName)
	if err != nil {
		return fmt.Errorf("create share record: %w", err)
	}
	recBlob, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal share record: %w", err)
	}
	if err := os.WriteFile(shareOutput, recBlob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", shareOutput, err)
	}
	if err := client.PushShare(ctx, txID, rec); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not push share:", err)
	} else {
		fmt.Printf("share stored for tx %s\n", txID)
	}
	return nil
}

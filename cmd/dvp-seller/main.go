// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command dvp-seller is the seller side of the demo DvP workflow: it
// protects a transaction document, optionally layers it into
// independently-disclosable sections, and publishes the result to the
// transaction registry. It carries no cryptographic logic of its own —
// everything here is a thin translation of files and flags into
// pkg/envelope calls.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/luxfi/dvpguard/internal/dvpdoc"
	"github.com/luxfi/dvpguard/internal/keyfile"
	"github.com/luxfi/dvpguard/internal/txclient"
	"github.com/luxfi/dvpguard/pkg/envelope"
)

func main() {
	keysDir := flag.String("keys-dir", "./keys", "directory holding company identity files")
	seller := flag.String("seller", "seller", "seller company name")
	buyer := flag.String("buyer", "buyer", "buyer company name")
	registry := flag.String("registry", "http://localhost:8090", "transaction registry base URL")
	input := flag.String("input", "", "path to a plaintext DvP JSON document; a sample document is scaffolded if omitted")
	output := flag.String("output", "protected_tx.json", "where to write the protected transaction")
	layersPath := flag.String("layers", "", `optional path to a JSON object mapping section name to field list, e.g. {"pricing":["product","amount"]}`)
	flag.Parse()

	if err := run(*keysDir, *seller, *buyer, *registry, *input, *output, *layersPath); err != nil {
		fmt.Fprintln(os.Stderr, "dvp-seller:", err)
		os.Exit(1)
	}
}

func run(keysDir, sellerName, buyerName, registryURL, input, output, layersPath string) error {
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
	if err := client.RegisterCompany(ctx, sellerIdent); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not register seller:", err)
	}
	if err := client.RegisterCompany(ctx, buyerIdent); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not register buyer:", err)
	}

	doc, err := loadOrScaffoldDocument(input)
	if err != nil {
		return err
	}

	var pt *envelope.ProtectedTransaction
	if layersPath != "" {
		layers, err := loadLayers(layersPath)
		if err != nil {
			return err
		}
		pt, err = envelope.ProtectWithLayers(doc, sellerIdent, buyerIdent, layers)
		if err != nil {
			return fmt.Errorf("protect with layers: %w", err)
		}
	} else {
		pt, err = envelope.Protect(doc, sellerIdent, buyerIdent)
		if err != nil {
			return fmt.Errorf("protect: %w", err)
		}
	}

	blob, err := json.MarshalIndent(pt, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal protected transaction: %w", err)
	}
	if err := os.WriteFile(output, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	if err := client.CreateTransaction(ctx, pt); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not publish to registry:", err)
	} else {
		fmt.Printf("transaction %s published to registry\n", pt.TxID)
	}

	fmt.Printf("protected transaction saved to %s\n", output)
	return nil
}

func loadOrScaffoldDocument(path string) (envelope.Document, error) {
	if path == "" {
		return dvpdoc.NewDocument(dvpdoc.DefaultSample()), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc envelope.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func loadLayers(path string) (map[string][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var layers map[string][]string
	if err := json.Unmarshal(raw, &layers); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return layers, nil
}

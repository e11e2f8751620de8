package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/luxfi/dvpguard/pkg/envelope"
)

func runProtect(args []string) error {
	fs := flag.NewFlagSet("protect", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	sellerName := fs.String("seller", "", "seller company name")
	buyerName := fs.String("buyer", "", "buyer company name")
	docPath := fs.String("doc", "", "path to the JSON document to protect")
	out := fs.String("out", "-", "output path for the protected transaction (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sellerName == "" || *buyerName == "" || *docPath == "" {
		return fmt.Errorf("-seller, -buyer and -doc are required")
	}

	store, err := openKeys(*keysDir)
	if err != nil {
		return err
	}
	seller, err := store.Load(*sellerName)
	if err != nil {
		return err
	}
	if seller == nil {
		return fmt.Errorf("unknown seller %q; run generate-keys first", *sellerName)
	}
	buyer, err := store.Load(*buyerName)
	if err != nil {
		return err
	}
	if buyer == nil {
		return fmt.Errorf("unknown buyer %q; run generate-keys first", *buyerName)
	}

	doc, err := readDocument(*docPath)
	if err != nil {
		return err
	}

	pt, err := envelope.Protect(doc, seller, buyer)
	if err != nil {
		return err
	}
	return writeJSON(*out, pt)
}

func runProtectLayers(args []string) error {
	fs := flag.NewFlagSet("protect-layers", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	sellerName := fs.String("seller", "", "seller company name")
	buyerName := fs.String("buyer", "", "buyer company name")
	docPath := fs.String("doc", "", "path to the JSON document to protect")
	layersPath := fs.String("layers", "", `path to a JSON object mapping section name to field list, e.g. {"pricing":["unit_price","total"]}`)
	out := fs.String("out", "-", "output path for the protected transaction (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sellerName == "" || *buyerName == "" || *docPath == "" || *layersPath == "" {
		return fmt.Errorf("-seller, -buyer, -doc and -layers are required")
	}

	store, err := openKeys(*keysDir)
	if err != nil {
		return err
	}
	seller, err := store.Load(*sellerName)
	if err != nil {
		return err
	}
	if seller == nil {
		return fmt.Errorf("unknown seller %q; run generate-keys first", *sellerName)
	}
	buyer, err := store.Load(*buyerName)
	if err != nil {
		return err
	}
	if buyer == nil {
		return fmt.Errorf("unknown buyer %q; run generate-keys first", *buyerName)
	}

	doc, err := readDocument(*docPath)
	if err != nil {
		return err
	}

	var layers map[string][]string
	raw, err := os.ReadFile(*layersPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", *layersPath, err)
	}
	if err := json.Unmarshal(raw, &layers); err != nil {
		return fmt.Errorf("parse %s: %w", *layersPath, err)
	}

	pt, err := envelope.ProtectWithLayers(doc, seller, buyer, layers)
	if err != nil {
		return err
	}
	return writeJSON(*out, pt)
}

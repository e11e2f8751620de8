package main

import (
	"crypto/ed25519"
	"flag"
	"fmt"

	"github.com/luxfi/dvpguard/pkg/check"
	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/share"
)

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	sellerName := fs.String("seller", "", "seller company name")
	buyerName := fs.String("buyer", "", "buyer company name")
	in := fs.String("in", "", "path to the protected transaction to verify")
	sharesPath := fs.String("shares", "", "optional path to a JSON array of share records to verify alongside it")
	out := fs.String("out", "-", "output path for the check report (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sellerName == "" || *buyerName == "" || *in == "" {
		return fmt.Errorf("-seller, -buyer and -in are required")
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
	sellerSignPub, err := seller.SigningPublicKey()
	if err != nil {
		return err
	}
	buyerSignPub, err := buyer.SigningPublicKey()
	if err != nil {
		return err
	}

	var pt envelope.ProtectedTransaction
	if err := readJSON(*in, &pt); err != nil {
		return err
	}

	var records []*share.ShareRecord
	sharePublicKeys := map[string]ed25519.PublicKey{
		*sellerName: sellerSignPub,
		*buyerName:  buyerSignPub,
	}
	if *sharesPath != "" {
		if err := readJSON(*sharesPath, &records); err != nil {
			return err
		}
		for _, rec := range records {
			if _, known := sharePublicKeys[rec.FromCompany]; known {
				continue
			}
			signer, err := store.Load(rec.FromCompany)
			if err != nil {
				return err
			}
			if signer == nil {
				continue
			}
			pub, err := signer.SigningPublicKey()
			if err != nil {
				return err
			}
			sharePublicKeys[rec.FromCompany] = pub
		}
	}

	report := check.Check(&pt, sellerSignPub, buyerSignPub, records, sharePublicKeys)
	return writeJSON(*out, report)
}

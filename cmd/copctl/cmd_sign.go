package main

import (
	"flag"
	"fmt"

	"github.com/luxfi/dvpguard/pkg/envelope"
)

func runBuyerSign(args []string) error {
	fs := flag.NewFlagSet("buyer-sign", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	sellerName := fs.String("seller", "", "seller company name")
	buyerName := fs.String("buyer", "", "buyer company name")
	in := fs.String("in", "", "path to the protected transaction to countersign")
	out := fs.String("out", "-", "output path for the countersigned transaction (- for stdout)")
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

	var pt envelope.ProtectedTransaction
	if err := readJSON(*in, &pt); err != nil {
		return err
	}

	signed, err := envelope.BuyerSign(&pt, buyer, sellerSignPub)
	if err != nil {
		return err
	}
	return writeJSON(*out, signed)
}

package main

import (
	"flag"
	"fmt"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/share"
)

func runShare(args []string) error {
	fs := flag.NewFlagSet("share", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	fromName := fs.String("from", "", "company granting access (must already hold a wrapped key)")
	toName := fs.String("to", "", "company to delegate access to")
	in := fs.String("in", "", "path to the protected transaction being shared")
	section := fs.String("section", "", "layer section to share (omit to share the full transaction)")
	out := fs.String("out", "-", "output path for the share record (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fromName == "" || *toName == "" || *in == "" {
		return fmt.Errorf("-from, -to and -in are required")
	}

	store, err := openKeys(*keysDir)
	if err != nil {
		return err
	}
	from, err := store.Load(*fromName)
	if err != nil {
		return err
	}
	if from == nil {
		return fmt.Errorf("unknown company %q; run generate-keys first", *fromName)
	}
	to, err := store.Load(*toName)
	if err != nil {
		return err
	}
	if to == nil {
		return fmt.Errorf("unknown recipient %q; run generate-keys first", *toName)
	}
	toEncPub, err := to.EncryptionPublicKey()
	if err != nil {
		return err
	}

	var pt envelope.ProtectedTransaction
	if err := readJSON(*in, &pt); err != nil {
		return err
	}

	if *section == "" {
		record, err := share.CreateShareRecord(&pt, from, *toName, toEncPub, *fromName)
		if err != nil {
			return err
		}
		return writeJSON(*out, record)
	}

	records, err := share.CreateLayerShareRecords(&pt, []string{*section}, from, *toName, toEncPub, *fromName)
	if err != nil {
		return err
	}
	return writeJSON(*out, records[0])
}

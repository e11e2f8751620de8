package main

import (
	"flag"
	"fmt"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/share"
)

func runUnprotect(args []string) error {
	fs := flag.NewFlagSet("unprotect", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	as := fs.String("as", "", "company name to decrypt as")
	in := fs.String("in", "", "path to the protected transaction to open")
	sharePath := fs.String("share", "", "optional path to a ShareRecord delegating access")
	out := fs.String("out", "-", "output path for the recovered document (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *as == "" || *in == "" {
		return fmt.Errorf("-as and -in are required")
	}

	store, err := openKeys(*keysDir)
	if err != nil {
		return err
	}
	ident, err := store.Load(*as)
	if err != nil {
		return err
	}
	if ident == nil {
		return fmt.Errorf("unknown company %q; run generate-keys first", *as)
	}

	var pt envelope.ProtectedTransaction
	if err := readJSON(*in, &pt); err != nil {
		return err
	}

	var ref *envelope.ShareRef
	if *sharePath != "" {
		var rec share.ShareRecord
		if err := readJSON(*sharePath, &rec); err != nil {
			return err
		}
		ref, err = rec.Ref()
		if err != nil {
			return err
		}
	}

	doc, err := envelope.Unprotect(&pt, ident, *as, ref)
	if err != nil {
		return err
	}
	return writeJSON(*out, doc)
}

func runUnprotectLayer(args []string) error {
	fs := flag.NewFlagSet("unprotect-layer", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	as := fs.String("as", "", "company name to decrypt as")
	in := fs.String("in", "", "path to the protected transaction to open")
	section := fs.String("section", "", "layer section name")
	sharePath := fs.String("share", "", "optional path to a ShareRecord delegating access to this layer")
	out := fs.String("out", "-", "output path for the recovered layer document (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *as == "" || *in == "" || *section == "" {
		return fmt.Errorf("-as, -in and -section are required")
	}

	store, err := openKeys(*keysDir)
	if err != nil {
		return err
	}
	ident, err := store.Load(*as)
	if err != nil {
		return err
	}
	if ident == nil {
		return fmt.Errorf("unknown company %q; run generate-keys first", *as)
	}

	var pt envelope.ProtectedTransaction
	if err := readJSON(*in, &pt); err != nil {
		return err
	}

	var ref *envelope.ShareRef
	if *sharePath != "" {
		var rec share.ShareRecord
		if err := readJSON(*sharePath, &rec); err != nil {
			return err
		}
		ref, err = rec.Ref()
		if err != nil {
			return err
		}
	}

	doc, err := envelope.UnprotectLayer(&pt, ident, *as, *section, ref)
	if err != nil {
		return err
	}
	return writeJSON(*out, doc)
}

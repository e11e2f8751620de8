package main

import (
	"flag"
	"fmt"
)

func runGenerateKeys(args []string) error {
	fs := flag.NewFlagSet("generate-keys", flag.ExitOnError)
	keysDir := fs.String("keys-dir", "./keys", "directory holding company identity files")
	name := fs.String("name", "", "company name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("-name is required")
	}

	store, err := openKeys(*keysDir)
	if err != nil {
		return err
	}
	ident, err := store.LoadOrGenerate(*name)
	if err != nil {
		return err
	}
	fmt.Printf("identity %q ready in %s\n", ident.Name, *keysDir)
	return nil
}

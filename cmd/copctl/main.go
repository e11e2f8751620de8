// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command copctl is the operator CLI for the envelope protocol: generate
// company key material, protect a document for a buyer, countersign,
// audit with check, open a protected transaction, and delegate access to
// a third party. It runs these operations against local files, for
// scripting and demos; the transaction registry and disclosure tracker
// services only store and list the resulting documents.
package main

import (
	"fmt"
	"os"
)

type subcommand struct {
	name string
	desc string
	run  func(args []string) error
}

func main() {
	subs := []subcommand{
		{"generate-keys", "generate an identity and store it in the keys directory", runGenerateKeys},
		{"protect", "seal a document for a seller/buyer pair", runProtect},
		{"protect-layers", "seal a document plus independently-disclosable layers", runProtectLayers},
		{"buyer-sign", "countersign a protected transaction as the buyer", runBuyerSign},
		{"check", "verify signatures and shares without raising", runCheck},
		{"unprotect", "decrypt a protected transaction as an authorized company", runUnprotect},
		{"unprotect-layer", "decrypt one disclosure layer as an authorized company", runUnprotectLayer},
		{"share", "delegate access to a third party", runShare},
	}

	if len(os.Args) < 2 {
		usage(subs)
		os.Exit(2)
	}
	name := os.Args[1]
	for _, s := range subs {
		if s.name == name {
			if err := s.run(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, "copctl:", err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintf(os.Stderr, "copctl: unknown subcommand %q\n", name)
	usage(subs)
	os.Exit(2)
}

func usage(subs []subcommand) {
	fmt.Fprintln(os.Stderr, "usage: copctl <subcommand> [flags]")
	fmt.Fprintln(os.Stderr, "subcommands:")
	for _, s := range subs {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", s.name, s.desc)
	}
}

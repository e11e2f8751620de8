package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/luxfi/dvpguard/internal/keyfile"
	"github.com/luxfi/dvpguard/pkg/envelope"
)

func openKeys(dir string) (*keyfile.Store, error) {
	return keyfile.Open(dir)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(raw, '\n'))
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readDocument(path string) (envelope.Document, error) {
	var doc envelope.Document
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

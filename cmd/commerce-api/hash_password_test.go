package main

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader("pw1\n"))
	root.SetOut(&out)
	root.SetArgs([]string{"hash-password", "--cost", "4"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw1")); err != nil {
		t.Fatalf("printed hash does not verify: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != 4 {
		t.Fatalf("expected cost 4, got %d", cost)
	}
}

func TestHashFromReader_Empty(t *testing.T) {
	if _, err := hashFromReader(strings.NewReader("\n"), 4); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

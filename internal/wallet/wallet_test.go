package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house-wallet.json")

	created, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	loaded, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if created.Address() != loaded.Address() {
		t.Fatalf("address changed across reload: %s vs %s", created.Address(), loaded.Address())
	}
}

func TestSignVerifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house-wallet.json")
	w, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	msg := []byte("transfer 100")
	sig := w.Sign(msg)
	pub, err := hex.DecodeString(string(w.Address()))
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		t.Fatal("signature did not verify against the wallet address")
	}
}

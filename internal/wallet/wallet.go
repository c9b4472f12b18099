package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"token-slots/internal/chain"
)

// Wallet is the house's signing identity. The address is the hex public
// key; the secret stays on disk next to the server.
type Wallet struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

type walletFile struct {
	SecretKey string `json:"secret_key"`
}

// LoadOrCreate reads the wallet at path, generating and persisting a
// fresh keypair on first run.
func LoadOrCreate(path string) (*Wallet, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		var wf walletFile
		if err := json.Unmarshal(raw, &wf); err != nil {
			return nil, fmt.Errorf("parse wallet file: %w", err)
		}
		seed, err := hex.DecodeString(wf.SecretKey)
		if err != nil || len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("wallet file %s holds an invalid secret key", path)
		}
		priv := ed25519.NewKeyFromSeed(seed)
		log.Info().Str("path", path).Msg("loaded house wallet")
		return &Wallet{pub: priv.Public().(ed25519.PublicKey), priv: priv}, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	raw, err = json.Marshal(walletFile{SecretKey: hex.EncodeToString(priv.Seed())})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return nil, fmt.Errorf("persist wallet: %w", err)
	}
	w := &Wallet{pub: pub, priv: priv}
	log.Info().Str("path", path).Str("address", string(w.Address())).Msg("created house wallet")
	return w, nil
}

func (w *Wallet) Address() chain.Address {
	return chain.Address(hex.EncodeToString(w.pub))
}

// Sign is exposed for ledger gateways that require the house to sign
// its own transfer authority.
func (w *Wallet) Sign(msg []byte) []byte {
	return ed25519.Sign(w.priv, msg)
}

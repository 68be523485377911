// Package receipt produces signed settlement receipts.
//
// A receipt is the tamper-evident record of one settled spend request,
// intended for handoff to whatever external collaborator reconciles the
// session ledger against the source of truth. Receipts are signed with
// secp256k1 ECDSA over a canonical encoding of the receipt fields.
package receipt

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Outcome records how a request settled.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Receipt describes one settled spend request.
type Receipt struct {
	RequestID    string
	FeatureKey   string
	Cost         int
	Outcome      Outcome
	BalanceAfter int
	IssuedAt     time.Time
}

// SignedReceipt is a Receipt plus its signature and the signer's public key.
type SignedReceipt struct {
	Receipt

	// Signature is the base64-encoded raw ECDSA signature (r || s, 64 bytes).
	Signature string

	// PublicKey is the hex-encoded compressed public key (33 bytes).
	PublicKey string
}

// Signer signs receipts with a secp256k1 private key.
type Signer struct {
	priv *secp256k1.PrivateKey
}

// NewSigner creates a Signer from a hex-encoded 32-byte private key.
// A leading "0x" prefix is accepted.
func NewSigner(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	hexKey = strings.TrimPrefix(hexKey, "0X")

	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("receipt: invalid private key hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("receipt: private key must be 32 bytes, got %d", len(keyBytes))
	}

	priv := secp256k1.PrivKeyFromBytes(keyBytes)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("receipt: private key is zero")
	}

	return &Signer{priv: priv}, nil
}

// PublicKey returns the signer's hex-encoded compressed public key.
func (s *Signer) PublicKey() string {
	return hex.EncodeToString(s.priv.PubKey().SerializeCompressed())
}

// Sign produces a SignedReceipt for r.
func (s *Signer) Sign(r Receipt) SignedReceipt {
	d := digest(r)

	// RFC6979 deterministic, low-S by default in dcrd.
	compactSig := ecdsa.SignCompact(s.priv, d[:], false)
	// compactSig: [recovery_flag, r(32), s(32)] = 65 bytes
	rawSig := compactSig[1:65]

	return SignedReceipt{
		Receipt:   r,
		Signature: base64.StdEncoding.EncodeToString(rawSig),
		PublicKey: s.PublicKey(),
	}
}

// Verify checks a signed receipt against its embedded public key.
func Verify(sr SignedReceipt) error {
	pubBytes, err := hex.DecodeString(sr.PublicKey)
	if err != nil {
		return fmt.Errorf("receipt: invalid public key hex: %w", err)
	}
	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return fmt.Errorf("receipt: parse public key: %w", err)
	}

	rawSig, err := base64.StdEncoding.DecodeString(sr.Signature)
	if err != nil {
		return fmt.Errorf("receipt: invalid signature encoding: %w", err)
	}
	if len(rawSig) != 64 {
		return fmt.Errorf("receipt: signature must be 64 bytes, got %d", len(rawSig))
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(rawSig[:32]); overflow {
		return fmt.Errorf("receipt: signature r overflows")
	}
	if overflow := s.SetByteSlice(rawSig[32:]); overflow {
		return fmt.Errorf("receipt: signature s overflows")
	}

	d := digest(sr.Receipt)
	if !ecdsa.NewSignature(&r, &s).Verify(d[:], pub) {
		return fmt.Errorf("receipt: signature does not match receipt")
	}
	return nil
}

// digest computes SHA256 over the canonical field encoding.
func digest(r Receipt) [32]byte {
	payload := strings.Join([]string{
		r.RequestID,
		r.FeatureKey,
		strconv.Itoa(r.Cost),
		string(r.Outcome),
		strconv.Itoa(r.BalanceAfter),
		strconv.FormatInt(r.IssuedAt.UnixNano(), 10),
	}, "|")
	return sha256.Sum256([]byte(payload))
}

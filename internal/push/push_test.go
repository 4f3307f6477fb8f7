package push

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	// Uncompressed P-256 point is 65 bytes, the scalar is 32.
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestMarkSent(t *testing.T) {
	s := &Scheduler{sent: make(map[string]time.Time)}
	now := time.Now()

	if !s.markSent("appointment-1", now) {
		t.Error("first mark should report new")
	}
	if s.markSent("appointment-1", now) {
		t.Error("second mark should report already sent")
	}

	// Old entries get pruned and become sendable again.
	s.pruneSent(now.Add(72 * time.Hour))
	if !s.markSent("appointment-1", now) {
		t.Error("mark after prune should report new")
	}
}

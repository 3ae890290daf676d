package seal

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goAudit/internal/audit"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

const event = `{"timestamp":"2018-03-20T10:23:45.123456+1300","type":"Authentication","Authentication":{"status":"NT_STATUS_OK"}}`

func TestSealOpenRoundTripEd25519(t *testing.T) {
	_, priv := newEdKeys(t)
	s, err := NewSealer(Config{SigningMethod: MethodEd25519, PrivateKey: priv, Issuer: "dc1"})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	token, err := s.Seal("Authentication", []byte(event))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	claims, err := s.Open(token)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if string(claims.Event) != event {
		t.Fatalf("event changed in transit: %s", claims.Event)
	}
	if claims.Topic != "Authentication" || claims.Issuer != "dc1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected uuid jti, got %q", claims.ID)
	}
}

func TestSealAssignsUniqueIDs(t *testing.T) {
	s, err := NewSealer(Config{SigningMethod: MethodHS256, PrivateKey: []byte(strings.Repeat("k", 32))})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	a, _ := s.Seal("t", []byte(`{}`))
	b, _ := s.Seal("t", []byte(`{}`))
	ca, err := s.Open(a)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	cb, err := s.Open(b)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	if ca.ID == cb.ID {
		t.Fatal("expected distinct jti per sealed event")
	}
}

func TestSealRejectsInvalidPayload(t *testing.T) {
	_, priv := newEdKeys(t)
	s, err := NewSealer(Config{SigningMethod: MethodEd25519, PrivateKey: priv})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	if _, err := s.Seal("t", []byte(`{"truncated":`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	_, priv := newEdKeys(t)
	s, err := NewSealer(Config{SigningMethod: MethodEd25519, PrivateKey: priv})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	token, err := s.Seal("t", []byte(event))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact jws, got %q", token)
	}
	forged, err := s.Seal("t", []byte(`{"type":"forged"}`))
	if err != nil {
		t.Fatalf("seal forged: %v", err)
	}
	spliced := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]
	if _, err := s.Open(spliced); err == nil {
		t.Fatal("expected spliced body to fail verification")
	}
}

func TestOpenRejectsWrongAlgorithmAndIssuer(t *testing.T) {
	pub, priv := newEdKeys(t)
	verifier, err := NewSealer(Config{SigningMethod: MethodEd25519, PublicKey: pub, Issuer: "dc1"})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	claims := Claims{Event: []byte(`{}`), RegisteredClaims: gjwt.RegisteredClaims{
		ID:       "x",
		Issuer:   "dc1",
		IssuedAt: gjwt.NewNumericDate(time.Now()),
	}}
	hsTok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := verifier.Open(hsTok); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}

	claims.Issuer = "other"
	otherTok, err := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := verifier.Open(otherTok); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}

	if _, err := verifier.Seal("t", []byte(`{}`)); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("verify-only sealer must not sign, got %v", err)
	}
}

func TestOpenResolvesKeyID(t *testing.T) {
	pub1, priv1 := newEdKeys(t)
	pub2, _ := newEdKeys(t)

	signer, err := NewSealer(Config{
		SigningMethod: MethodEd25519,
		PrivateKey:    priv1,
		KeyID:         "k1",
		VerifyKeys:    map[string][]byte{"k1": pub1, "k2": pub2},
	})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	token, err := signer.Seal("t", []byte(`{}`))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := signer.Open(token); err != nil {
		t.Fatalf("expected kid k1 to verify: %v", err)
	}

	rotated, err := NewSealer(Config{
		SigningMethod: MethodEd25519,
		VerifyKeys:    map[string][]byte{"k2": pub2},
	})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	if _, err := rotated.Open(token); err == nil {
		t.Fatal("expected unknown kid to fail")
	}
}

func TestNewSealerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown method", cfg: Config{SigningMethod: "rs256", PrivateKey: []byte("x")}},
		{name: "hs256 without key", cfg: Config{SigningMethod: MethodHS256}},
		{name: "ed25519 without keys", cfg: Config{SigningMethod: MethodEd25519}},
		{name: "ed25519 bad key", cfg: Config{SigningMethod: MethodEd25519, PrivateKey: []byte("short")}},
		{name: "leeway too large", cfg: Config{SigningMethod: MethodHS256, PrivateKey: []byte("k"), Leeway: time.Hour}},
		{name: "kid missing from verify set", cfg: Config{
			SigningMethod: MethodHS256,
			PrivateKey:    []byte("k"),
			KeyID:         "k1",
			VerifyKeys:    map[string][]byte{"k2": []byte("k")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSealer(tt.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestSinkForwardsSealedToken(t *testing.T) {
	_, priv := newEdKeys(t)
	s, err := NewSealer(Config{SigningMethod: MethodEd25519, PrivateKey: priv})
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	var got audit.Message
	next := audit.SinkFunc(func(_ context.Context, msg audit.Message) error {
		got = msg
		return nil
	})
	sink := NewSink(s, next)

	if err := sink.Deliver(context.Background(), audit.Message{Topic: "dsdbChange", Payload: []byte(event)}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if got.Topic != "dsdbChange" {
		t.Fatalf("expected topic to be kept, got %q", got.Topic)
	}
	claims, err := s.Open(string(got.Payload))
	if err != nil {
		t.Fatalf("open forwarded token: %v", err)
	}
	if string(claims.Event) != event {
		t.Fatalf("unexpected event %s", claims.Event)
	}

	if err := sink.Deliver(context.Background(), audit.Message{Topic: "t", Payload: []byte("not json")}); err == nil {
		t.Fatal("expected invalid payload to fail before reaching next")
	}
}

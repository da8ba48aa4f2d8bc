package jwt

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var uuidV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueEmbedsSessionClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 15, 0, time.UTC)
	m, err := NewManager(Config{PrivateKey: []byte("test-secret"), Now: fixedClock(now)})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	sid, token, err := m.Issue("a@b.com", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !uuidV4.MatchString(sid) {
		t.Fatalf("session id %q is not a UUID v4", sid)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "a@b.com" {
		t.Fatalf("expected email a@b.com, got %q", claims.Email)
	}
	if claims.SessionID != sid {
		t.Fatalf("expected session id %q, got %q", sid, claims.SessionID)
	}
	if claims.Application != "awsBB" {
		t.Fatalf("expected application awsBB, got %q", claims.Application)
	}
	if claims.Roles == nil || len(claims.Roles) != 0 {
		t.Fatalf("expected empty role list, got %#v", claims.Roles)
	}

	lifetime := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	if lifetime != 12*24*time.Hour {
		t.Fatalf("expected 12 day lifetime, got %v", lifetime)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("expected iat %v, got %v", now, claims.IssuedAt.Time)
	}
}

func TestIssueSerializesEmptyRolesAsArray(t *testing.T) {
	m, err := NewManager(Config{PrivateKey: []byte("test-secret")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	_, token, err := m.Issue("a@b.com", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var raw map[string]any
	payload := strings.Split(token, ".")[1]
	decoded, err := gjwt.NewParser().DecodeSegment(payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if err := json.Unmarshal(decoded, &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	roles, ok := raw["roles"].([]any)
	if !ok || len(roles) != 0 {
		t.Fatalf("expected roles to be an empty array, got %#v", raw["roles"])
	}
}

func TestIssueProducesUniqueSessionIDs(t *testing.T) {
	m, err := NewManager(Config{PrivateKey: []byte("test-secret")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		sid, _, err := m.Issue("a@b.com", nil)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, dup := seen[sid]; dup {
			t.Fatalf("duplicate session id %q after %d issues", sid, i)
		}
		seen[sid] = struct{}{}
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewManager(Config{PrivateKey: []byte("secret-one")})
	verifier, _ := NewManager(Config{PrivateKey: []byte("secret-two")})

	_, token, err := issuer.Issue("a@b.com", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-13 * 24 * time.Hour)
	issuer, _ := NewManager(Config{PrivateKey: []byte("test-secret"), Now: fixedClock(issuedAt)})
	verifier, _ := NewManager(Config{PrivateKey: []byte("test-secret")})

	_, token, err := issuer.Issue("a@b.com", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTTLDefaults(t *testing.T) {
	m, err := NewManager(Config{PrivateKey: []byte("test-secret")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if m.TTL() != DefaultTTL {
		t.Fatalf("expected default TTL %v, got %v", DefaultTTL, m.TTL())
	}
}

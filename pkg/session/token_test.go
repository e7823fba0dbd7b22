package session

import (
	"testing"
	"time"
)

func TestIssueAndVerifyToken(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s, err := IssueToken("driver1", secret, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := VerifyToken(s, secret, now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Username != "driver1" {
		t.Fatalf("username mismatch: %q", got.Username)
	}
	if got.Credential != Credential(s) {
		t.Fatalf("credential must be the raw token")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s, err := IssueToken("driver1", secret, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := VerifyToken(s, secret, now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s, err := IssueToken("driver1", "secret_a", now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := VerifyToken(s, "secret_b", now); err == nil {
		t.Fatalf("expected signature error")
	}
}

package auth

import (
	"testing"
	"time"

	"github.com/support-qa/backend/internal/models"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Fatalf("expected mismatch to fail")
	}
}

func TestTokenIssueAndParse(t *testing.T) {
	svc := New("test-secret", time.Hour)
	user := models.User{ID: "u1", Name: "Lena", Role: models.RoleTeamLeader}

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != models.RoleTeamLeader {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenRejectedAcrossSecrets(t *testing.T) {
	token, err := New("secret-a", time.Hour).IssueToken(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := New("secret-b", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("expected parse to fail with the wrong secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := New("test-secret", -time.Minute)
	token, err := svc.IssueToken(models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

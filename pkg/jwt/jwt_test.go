package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRoundTrip(t *testing.T) {
	m := NewManager("secret", "identity")
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "org-1", RoleReviewer, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID || claims.OrgID != "org-1" || !claims.HasRole(RoleReviewer, RoleAdmin) {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.HasRole(RoleAdmin) {
		t.Fatalf("reviewer must not be admin")
	}
}

func TestRejectsBadTokens(t *testing.T) {
	m := NewManager("secret", "identity")
	userID := uuid.New()

	expired, _ := m.GenerateAccessToken(userID, "org", RoleAdmin, -time.Minute)
	if _, err := m.ValidateAccessToken(expired); err == nil {
		t.Fatalf("expired token accepted")
	}

	foreign, _ := NewManager("other", "identity").GenerateAccessToken(userID, "org", RoleAdmin, time.Minute)
	if _, err := m.ValidateAccessToken(foreign); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}

	wrongIssuer, _ := NewManager("secret", "elsewhere").GenerateAccessToken(userID, "org", RoleAdmin, time.Minute)
	if _, err := m.ValidateAccessToken(wrongIssuer); err == nil {
		t.Fatalf("token from another issuer accepted")
	}

	anonymous, _ := m.GenerateAccessToken(uuid.Nil, "org", RoleAdmin, time.Minute)
	if _, err := m.ValidateAccessToken(anonymous); err == nil {
		t.Fatalf("token without user accepted")
	}
}

package utils_test

import (
	"errors"
	"testing"
	"time"

	"github.com/davitp/timesheet-tracker/internal/utils"
)

const secret = "test-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := utils.NewSessionToken(secret, 42, "ann@x.com", "Ann Lee", 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("NewSessionToken returned an empty token")
	}
	wantExp := time.Now().UTC().Add(7 * 24 * time.Hour)
	if d := tok.Exp.Sub(wantExp); d < -time.Minute || d > time.Minute {
		t.Errorf("token expiry = %v, want ~%v", tok.Exp, wantExp)
	}

	claims, err := utils.ParseSessionToken(secret, tok.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "ann@x.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "ann@x.com")
	}
	if claims.Name != "Ann Lee" {
		t.Errorf("Name = %q, want %q", claims.Name, "Ann Lee")
	}
}

func TestParseSessionTokenExpired(t *testing.T) {
	tok, err := utils.NewSessionToken(secret, 42, "ann@x.com", "Ann Lee", -1)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	_, err = utils.ParseSessionToken(secret, tok.Token)
	if !errors.Is(err, utils.ErrTokenExpired) {
		t.Errorf("ParseSessionToken on expired token = %v, want ErrTokenExpired", err)
	}
}

func TestParseSessionTokenMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := utils.ParseSessionToken(secret, tt.raw)
			if !errors.Is(err, utils.ErrTokenMalformed) {
				t.Errorf("ParseSessionToken(%q) = %v, want ErrTokenMalformed", tt.raw, err)
			}
		})
	}
}

func TestParseSessionTokenWrongSecret(t *testing.T) {
	tok, err := utils.NewSessionToken(secret, 42, "ann@x.com", "Ann Lee", 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	_, err = utils.ParseSessionToken("other-secret", tok.Token)
	if !errors.Is(err, utils.ErrTokenMalformed) {
		t.Errorf("ParseSessionToken with wrong secret = %v, want ErrTokenMalformed", err)
	}
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	at, err := NewAccessToken(secret, 42, "amine", "amine@example.com", "CLIENT", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if at.Exp.Before(time.Now().UTC()) {
		t.Fatal("token already expired")
	}
	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse: %v valid=%v", err, tok.Valid)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["username"] != "amine" || claims["email"] != "amine@example.com" || claims["role"] != "CLIENT" {
		t.Errorf("unexpected claims: %v", claims)
	}
	if sub, ok := claims["sub"].(float64); !ok || uint64(sub) != 42 {
		t.Errorf("sub claim = %v", claims["sub"])
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret-a", 1, "u", "u@example.com", "ADMIN", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	}); err == nil {
		t.Fatal("expected signature verification failure")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Errorf("raw length = %d, want 96", len(rt.Raw))
	}
	h1, h2 := HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw)
	if h1 != h2 {
		t.Error("hash is not deterministic")
	}
	other, _ := NewRefreshToken(7)
	if HashRefreshRaw(other.Raw) == h1 {
		t.Error("distinct tokens hashed equal")
	}
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	// Out-of-range costs fall back to the bcrypt default instead of
	// erroring out.
	for _, cost := range []int{0, -1, 99} {
		hash, err := HashPassword("s3cret", cost)
		if err != nil {
			t.Fatalf("HashPassword(cost=%d): %v", cost, err)
		}
		got, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			t.Fatalf("Cost(cost=%d): %v", cost, err)
		}
		if got != bcrypt.DefaultCost {
			t.Errorf("cost %d hashed with cost %d, want default %d", cost, got, bcrypt.DefaultCost)
		}
	}
}

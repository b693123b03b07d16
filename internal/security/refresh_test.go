package security

import (
	"encoding/base64"
	"testing"
)

func TestNewRefreshToken(t *testing.T) {
	tok, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	b, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(b) != refreshTokenBytes {
		t.Fatalf("decoded length = %d, want %d", len(b), refreshTokenBytes)
	}

	tok2, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if tok == tok2 {
		t.Fatal("two tokens are identical")
	}
}

func TestHashRefreshToken(t *testing.T) {
	h1 := HashRefreshToken("abc")
	h2 := HashRefreshToken("abc")
	if h1 != h2 {
		t.Fatal("hash is not deterministic")
	}
	if len(h1) != 64 {
		t.Fatalf("hex digest length = %d, want 64", len(h1))
	}
	if h1 == HashRefreshToken("abd") {
		t.Fatal("distinct tokens share a digest")
	}
}

func TestRefreshTokenHashEqual(t *testing.T) {
	stored := HashRefreshToken("the-token")
	if !RefreshTokenHashEqual("the-token", stored) {
		t.Error("matching token rejected")
	}
	if RefreshTokenHashEqual("other-token", stored) {
		t.Error("non-matching token accepted")
	}
}

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
)

func TestOIDCVerifier_RejectsUnsignedTokens(t *testing.T) {
	v := NewOIDCVerifierWithKeys("https://issuer.example.com", "foodlens", &oidc.StaticKeySet{})

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := v.Verify(context.Background(), token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

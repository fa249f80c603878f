package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Verifier_Round_Trip(t *testing.T) {
	req := require.New(t)
	v := NewVerifier("test-secret")
	req.False(v.Insecure())

	tok, err := v.Sign("u1", time.Minute)
	req.NoError(err)

	r := httptest.NewRequest("GET", "/api/v1/chat/ws?token="+tok, nil)
	userID, err := v.UserID(r)
	req.NoError(err)
	req.Equal("u1", userID)
}

func Test_Verifier_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)
	signer := NewVerifier("their-secret")
	verifier := NewVerifier("our-secret")

	tok, err := signer.Sign("u1", time.Minute)
	req.NoError(err)

	r := httptest.NewRequest("GET", "/ws?token="+tok, nil)
	_, err = verifier.UserID(r)
	req.ErrorIs(err, ErrInvalidToken)
}

func Test_Verifier_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	v := NewVerifier("test-secret")

	tok, err := v.Sign("u1", -time.Minute)
	req.NoError(err)

	r := httptest.NewRequest("GET", "/ws?token="+tok, nil)
	_, err = v.UserID(r)
	req.ErrorIs(err, ErrInvalidToken)
}

func Test_Verifier_Requires_Token(t *testing.T) {
	req := require.New(t)
	v := NewVerifier("test-secret")

	r := httptest.NewRequest("GET", "/ws", nil)
	_, err := v.UserID(r)
	req.ErrorIs(err, ErrMissingToken)

	// user_id is not a substitute when a secret is configured
	r = httptest.NewRequest("GET", "/ws?user_id=u1", nil)
	_, err = v.UserID(r)
	req.ErrorIs(err, ErrMissingToken)
}

func Test_Insecure_Mode_Trusts_Query_Parameter(t *testing.T) {
	req := require.New(t)
	v := NewVerifier("")
	req.True(v.Insecure())

	r := httptest.NewRequest("GET", "/ws?user_id=u1", nil)
	userID, err := v.UserID(r)
	req.NoError(err)
	req.Equal("u1", userID)

	r = httptest.NewRequest("GET", "/ws", nil)
	_, err = v.UserID(r)
	req.Error(err)

	_, err = v.Sign("u1", time.Minute)
	req.Error(err)
}

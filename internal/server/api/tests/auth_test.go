package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

func TestRegister_Created(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodPost, "/users", "", models.CredentialsRequest{Email: "alice@example.com", Password: "password123"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "User created", decode[models.MessageResponse](t, rec).Message)
	// токен при регистрации не выдаётся
	require.NotContains(t, rec.Body.String(), "token")
}

// Email сравнивается без учёта регистра
func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.registerAndSignIn("alice@example.com")

	rec := s.json(http.MethodPost, "/users", "", models.CredentialsRequest{Email: "ALICE@example.com", Password: "another-pass"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, api.MsgEmailInUse, decode[models.ErrorResponse](t, rec).Message)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodPost, "/users", "", models.CredentialsRequest{Email: "not-an-email", Password: "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[models.ErrorResponse](t, rec)
	require.Equal(t, api.MsgValidationFailed, resp.Message)
	require.Contains(t, resp.Errors, "email")
	require.Contains(t, resp.Errors, "password")
}

func TestRegister_BadJSON(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]string{
		"broken":        `{bad json`,
		"unknown field": `{"email":"a@b.co","password":"password123","admin":true}`,
		"trailing data": `{"email":"a@b.co","password":"password123"}{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.json(http.MethodPost, "/users", "", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, api.MsgBadJSON, decode[models.ErrorResponse](t, rec).Message)
		})
	}
}

func TestSignIn_OK(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndSignIn("alice@example.com")

	rec := s.json(http.MethodGet, "/artworks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

// Неверный пароль и неизвестный email дают одинаковый ответ
func TestSignIn_NoEnumeration(t *testing.T) {
	s := newTestServer(t)
	s.registerAndSignIn("alice@example.com")

	wrongPass := s.json(http.MethodPost, "/users/sign-in", "", models.CredentialsRequest{Email: "alice@example.com", Password: "wrong-password"})
	noUser := s.json(http.MethodPost, "/users/sign-in", "", models.CredentialsRequest{Email: "ghost@example.com", Password: "password123"})

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, noUser.Code)
	require.Equal(t, wrongPass.Body.String(), noUser.Body.String())
	require.Equal(t, api.MsgInvalidCredentials, decode[models.ErrorResponse](t, noUser).Message)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/artworks", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Missing token", decode[models.ErrorResponse](t, rec).Message)

	rec = s.json(http.MethodGet, "/categories", "garbage.token.value", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token", decode[models.ErrorResponse](t, rec).Message)
}

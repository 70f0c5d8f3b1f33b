// HTTP-хендлеры регистрации и входа
package api

import (
	"net/http"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// Register обрабатывает регистрацию пользователя.
//
// Токен не выдаётся: после регистрации нужен отдельный вход.
//
// Ответы:
//   - 201 Created: {"message":"User created"};
//   - 400 Bad Request: неверный JSON или невалидные email/пароль;
//   - 409 Conflict: email уже занят (без учёта регистра);
//   - 500 Internal Server Error: прочие ошибки.
//
// @Summary      Register user
// @Description  Creates a user with a lower-cased email and a salted password hash.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body models.CredentialsRequest true "Credentials"
// @Success      201 {object} models.MessageResponse
// @Failure      400 {object} models.ErrorResponse "Validation failed or bad JSON"
// @Failure      409 {object} models.ErrorResponse "Email already in use"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, "register", err)
		return
	}

	if _, err := h.Svc.Auth.Register(r.Context(), req.Email, req.Password); err != nil {
		h.fail(w, r, "register", err)
		return
	}

	WriteJSON(w, http.StatusCreated, models.MessageResponse{Message: "User created"})
}

// SignIn обрабатывает вход пользователя и выдачу токена.
//
// Нет пользователя и неверный пароль дают один и тот же ответ.
//
// Ответы:
//   - 200 OK: {"token":"..."};
//   - 400 Bad Request: неверный JSON;
//   - 401 Unauthorized: неверные учётные данные;
//   - 500 Internal Server Error: прочие ошибки.
//
// @Summary      Sign in
// @Description  Verifies credentials and returns a signed bearer token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body models.CredentialsRequest true "Credentials"
// @Success      200 {object} models.SignInResponse
// @Failure      400 {object} models.ErrorResponse "Bad JSON"
// @Failure      401 {object} models.ErrorResponse "Invalid email or password"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /users/sign-in [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, "sign-in", err)
		return
	}

	token, err := h.Svc.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "sign-in", err)
		return
	}

	WriteJSON(w, http.StatusOK, models.SignInResponse{Token: token})
}

package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projetocarbone/roma-backend/internal/config"
	"github.com/projetocarbone/roma-backend/internal/handler"
	"github.com/projetocarbone/roma-backend/internal/mail"
	"github.com/projetocarbone/roma-backend/internal/repository"
	"github.com/projetocarbone/roma-backend/internal/router"
	"github.com/projetocarbone/roma-backend/internal/service"
)

func testConfig() config.Config {
	return config.Config{
		Env:             "dev",
		Port:            "0",
		Store:           "memory",
		JWTSecret:       "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTTLMin:    15,
		RefreshTTLDays:  7,
		RememberTTLDays: 30,
		ResetTTLMin:     60,
		BcryptCost:      4, // min cost keeps the suite fast
	}
}

// newTestServer wires the real router over the in-memory stores. The
// activity recorder runs with a no-op publisher so no broker is needed.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := testConfig()

	users := repository.NewMemoryUserStore()
	tokens := repository.NewMemoryTokenStore()
	activities := repository.NewMemoryActivityStore()
	recorder := &service.ActivityRecorder{Store: activities}
	mailer := &mail.Mailer{}

	authH := handler.NewAuthHandler(cfg, users, tokens, recorder, mailer)
	couponH := handler.NewCouponHandler(repository.NewCouponRepo())

	e := echo.New()
	router.RegisterAuth(e, authH, nil, config.RateLimitConfig{}, nil)
	router.RegisterCoupons(e, couponH, cfg.JWTSecret)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func signup(t *testing.T, e *echo.Echo, nome, email, senha string) map[string]any {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/auth/cadastro", "", echo.Map{
		"nomeCompleto": nome,
		"email":        email,
		"senha":        senha,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)
}

func TestCadastroLoginMe(t *testing.T) {
	e := newTestServer(t)

	created := signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")
	assert.Equal(t, true, created["success"])
	assert.NotEmpty(t, created["token"])
	assert.NotEmpty(t, created["refreshToken"])
	assert.NotContains(t, created["user"], "senha")
	assert.NotContains(t, created["user"], "senhaHash")

	rec := doJSON(t, e, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "ana@example.com",
		"senha": "Abc12345!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	logged := decode(t, rec)
	token := logged["token"].(string)

	rec = doJSON(t, e, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	user := me["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "Ana Silva", user["nome"])
}

func TestCadastroDuplicateEmail(t *testing.T) {
	e := newTestServer(t)
	signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")

	rec := doJSON(t, e, http.MethodPost, "/api/auth/cadastro", "", echo.Map{
		"nomeCompleto": "Outra Ana",
		"email":        "ana@example.com",
		"senha":        "Abc12345!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", body["errorCode"])
}

func TestCadastroWeakPassword(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(t, e, http.MethodPost, "/api/auth/cadastro", "", echo.Map{
		"nomeCompleto": "Ana",
		"email":        "ana@example.com",
		"senha":        "abc",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WEAK_PASSWORD", decode(t, rec)["errorCode"])
}

func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	e := newTestServer(t)
	signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")

	wrongPass := doJSON(t, e, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "ana@example.com",
		"senha": "Errada123!",
	})
	unknown := doJSON(t, e, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "ninguem@example.com",
		"senha": "Errada123!",
	})
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrongPass.Body.String(), unknown.Body.String())
}

func TestRefreshFlow(t *testing.T) {
	e := newTestServer(t)
	created := signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")
	refresh := created["refreshToken"].(string)

	rec := doJSON(t, e, http.MethodPost, "/api/auth/refresh-token", "", echo.Map{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	renewed := decode(t, rec)
	newToken := renewed["token"].(string)

	// The refreshed access token must open the protected surface.
	rec = doJSON(t, e, http.MethodGet, "/api/auth/me", newToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/auth/refresh-token", "", echo.Map{
		"refreshToken": "garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "REFRESH_INVALID", decode(t, rec)["errorCode"])
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	e := newTestServer(t)
	created := signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")
	token := created["token"].(string)
	refresh := created["refreshToken"].(string)

	rec := doJSON(t, e, http.MethodPost, "/api/auth/logout", token, echo.Map{
		"refreshToken": refresh,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/api/auth/refresh-token", "", echo.Map{
		"refreshToken": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The access token keeps working until it expires on its own.
	rec = doJSON(t, e, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordRoundTrip(t *testing.T) {
	e := newTestServer(t)
	created := signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")
	token := created["token"].(string)

	rec := doJSON(t, e, http.MethodPut, "/api/auth/change-password", token, echo.Map{
		"senhaAtual": "Errada123!",
		"novaSenha":  "Nova12345!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_PASSWORD", decode(t, rec)["errorCode"])

	rec = doJSON(t, e, http.MethodPut, "/api/auth/change-password", token, echo.Map{
		"senhaAtual": "Abc12345!",
		"novaSenha":  "Nova12345!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	old := doJSON(t, e, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "ana@example.com",
		"senha": "Abc12345!",
	})
	assert.Equal(t, http.StatusUnauthorized, old.Code)

	fresh := doJSON(t, e, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "ana@example.com",
		"senha": "Nova12345!",
	})
	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestUpdateProfileAndSettings(t *testing.T) {
	e := newTestServer(t)
	created := signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")
	token := created["token"].(string)

	rec := doJSON(t, e, http.MethodPut, "/api/auth/profile", token, echo.Map{
		"nome":    "Ana S.",
		"empresa": "Carbone",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Ana S.", user["nome"])
	assert.Equal(t, "Carbone", user["empresa"])

	// Omitted flags keep their value, explicit false lands.
	rec = doJSON(t, e, http.MethodPut, "/api/auth/settings", token, echo.Map{
		"modoEscuro": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	user = decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, true, user["modoEscuro"])
	assert.Equal(t, true, user["notificacoes"])

	rec = doJSON(t, e, http.MethodPut, "/api/auth/settings", token, echo.Map{
		"notificacoes": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	user = decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, false, user["notificacoes"])
	assert.Equal(t, true, user["modoEscuro"])
}

func TestActivitiesPagination(t *testing.T) {
	e := newTestServer(t)
	created := signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")
	token := created["token"].(string)

	// Signup already logged one CADASTRO entry; add 11 LOGIN entries.
	for i := 0; i < 11; i++ {
		rec := doJSON(t, e, http.MethodPost, "/api/auth/login", "", echo.Map{
			"email": "ana@example.com",
			"senha": "Abc12345!",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, e, http.MethodGet, "/api/auth/activities?page=1&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	items := body["activities"].([]any)
	assert.Len(t, items, 5)
	first := items[0].(map[string]any)
	assert.Equal(t, "LOGIN", first["action"])

	pg := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pg["page"])
	assert.Equal(t, float64(5), pg["limit"])
	assert.Equal(t, float64(12), pg["total"])
	assert.Equal(t, float64(3), pg["pages"])

	rec = doJSON(t, e, http.MethodGet, "/api/auth/activities?page=3&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	items = body["activities"].([]any)
	assert.Len(t, items, 2)
	last := items[len(items)-1].(map[string]any)
	assert.Equal(t, "CADASTRO", last["action"]) // oldest entry on the last page
}

func TestPasswordRecoveryFlow(t *testing.T) {
	e := newTestServer(t)
	signup(t, e, "Ana Silva", "ana@example.com", "Abc12345!")

	rec := doJSON(t, e, http.MethodPost, "/api/auth/recuperar-senha", "", echo.Map{
		"email": "ana@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	dev, ok := body["_dev"].(map[string]any)
	require.True(t, ok, "dev env exposes the reset token")
	resetToken := dev["resetToken"].(string)
	require.NotEmpty(t, resetToken)

	// Unknown email answers with the same outer message and no token.
	rec = doJSON(t, e, http.MethodPost, "/api/auth/recuperar-senha", "", echo.Map{
		"email": "ninguem@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	other := decode(t, rec)
	assert.Equal(t, body["message"], other["message"])
	assert.NotContains(t, other, "_dev")

	rec = doJSON(t, e, http.MethodPost, "/api/auth/redefinir-senha", "", echo.Map{
		"token":     resetToken,
		"novaSenha": "Nova12345!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	fresh := doJSON(t, e, http.MethodPost, "/api/auth/login", "", echo.Map{
		"email": "ana@example.com",
		"senha": "Nova12345!",
	})
	assert.Equal(t, http.StatusOK, fresh.Code)

	// A consumed token cannot be replayed.
	rec = doJSON(t, e, http.MethodPost, "/api/auth/redefinir-senha", "", echo.Map{
		"token":     resetToken,
		"novaSenha": "Outra12345!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RESET_TOKEN_INVALID", decode(t, rec)["errorCode"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestServer(t)
	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPut, "/api/auth/profile"},
		{http.MethodPut, "/api/auth/change-password"},
		{http.MethodGet, "/api/auth/activities"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodPost, "/api/cupons/validar"},
	} {
		rec := doJSON(t, e, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code,
			fmt.Sprintf("%s %s", route.method, route.path))
	}
}

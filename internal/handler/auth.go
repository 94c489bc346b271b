package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/projetocarbone/roma-backend/internal/config"
	"github.com/projetocarbone/roma-backend/internal/mail"
	"github.com/projetocarbone/roma-backend/internal/middleware"
	"github.com/projetocarbone/roma-backend/internal/model"
	"github.com/projetocarbone/roma-backend/internal/repository"
	"github.com/projetocarbone/roma-backend/internal/service"
	"github.com/projetocarbone/roma-backend/internal/utils"
	"github.com/projetocarbone/roma-backend/internal/validation"
)

// AuthHandler bundles dependencies for the authentication endpoints.
type AuthHandler struct {
	Cfg        config.Config
	Users      repository.UserStore
	Tokens     repository.TokenStore
	Activities *service.ActivityRecorder
	Mailer     *mail.Mailer
}

func NewAuthHandler(cfg config.Config, u repository.UserStore, t repository.TokenStore, a *service.ActivityRecorder, m *mail.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Activities: a, Mailer: m}
}

// ----- DTOs -----

type loginReq struct {
	Email   string `json:"email" validate:"required,email"`
	Senha   string `json:"senha" validate:"required"`
	Lembrar bool   `json:"lembrar"`
}

type cadastroReq struct {
	Nome              string `json:"nome"`
	NomeCompleto      string `json:"nomeCompleto"`
	Email             string `json:"email" validate:"required,email"`
	Senha             string `json:"senha" validate:"required"`
	Telefone          string `json:"telefone"`
	Empresa           string `json:"empresa"`
	Cargo             string `json:"cargo"`
	CodigoPromocional string `json:"codigoPromocional"` // accepted, unused downstream
}

type recuperarReq struct {
	Email string `json:"email" validate:"required,email"`
}

type redefinirReq struct {
	Token     string `json:"token" validate:"required"`
	NovaSenha string `json:"novaSenha" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type authResp struct {
	Success      bool       `json:"success"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	User         model.User `json:"user"`
	Message      string     `json:"message,omitempty"`
}

// Login verifies credentials and returns a fresh access+refresh pair.
// Unknown email and wrong password answer with the same body so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Corpo da requisição inválido", "")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, http.StatusBadRequest, "Email e senha são obrigatórios", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "Email ou senha inválidos", "INVALID_CREDENTIALS")
		}
		return fail(c, http.StatusInternalServerError, "Erro ao fazer login", "")
	}
	if !utils.VerifyPassword(u.SenhaHash, req.Senha) {
		return fail(c, http.StatusUnauthorized, "Email ou senha inválidos", "INVALID_CREDENTIALS")
	}

	refreshDays := h.Cfg.RefreshTTLDays
	if req.Lembrar {
		refreshDays = h.Cfg.RememberTTLDays
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao fazer login", "")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, u.Email, refreshDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao fazer login", "")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao fazer login", "")
	}

	h.Activities.Record(ctx, u.ID, u.Email, model.ActionLogin, "Login realizado com sucesso", c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, authResp{
		Success:      true,
		Token:        access.Token,
		RefreshToken: refresh.Raw, // raw back to client, only the hash is stored
		User:         u,
	})
}

// Cadastro creates an account and logs the user straight in.
func (h *AuthHandler) Cadastro(c echo.Context) error {
	var req cadastroReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Corpo da requisição inválido", "")
	}
	nome := strings.TrimSpace(req.NomeCompleto)
	if nome == "" {
		nome = strings.TrimSpace(req.Nome)
	}
	if nome == "" || validate.Struct(req) != nil {
		return fail(c, http.StatusBadRequest, "Nome, email e senha são obrigatórios", "")
	}
	if msg := validation.ValidarSenha(req.Senha); msg != "" {
		return fail(c, http.StatusBadRequest, msg, "WEAK_PASSWORD")
	}

	hash, err := utils.HashPassword(req.Senha, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao criar conta", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := model.User{
		Nome:         nome,
		Email:        req.Email,
		SenhaHash:    hash,
		Telefone:     req.Telefone,
		Empresa:      req.Empresa,
		Cargo:        req.Cargo,
		Notificacoes: true,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusBadRequest, "Este email já está em uso", "EMAIL_ALREADY_EXISTS")
		}
		return fail(c, http.StatusInternalServerError, "Erro ao criar conta", "")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao criar conta", "")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, u.Email, h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao criar conta", "")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao criar conta", "")
	}

	h.Activities.Record(ctx, u.ID, u.Email, model.ActionCadastro, "Nova conta criada", c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusCreated, authResp{
		Success:      true,
		Token:        access.Token,
		RefreshToken: refresh.Raw,
		User:         u,
		Message:      "Conta criada com sucesso!",
	})
}

// RecuperarSenha starts the password recovery flow. The response is
// identical whether or not the email exists; existence only shows in
// server logs and in the outbound email itself.
func (h *AuthHandler) RecuperarSenha(c echo.Context) error {
	var req recuperarReq
	if err := c.Bind(&req); err != nil || validate.Struct(req) != nil {
		return fail(c, http.StatusBadRequest, "Email é obrigatório", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := echo.Map{
		"success": true,
		"message": "Se o email existir, um link de recuperação será enviado",
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Unknown email answers the same way; nothing to do.
		return c.JSON(http.StatusOK, resp)
	}

	token, err := utils.NewResetToken()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao processar recuperação de senha", "")
	}
	expiry := time.Now().UTC().Add(time.Duration(h.Cfg.ResetTTLMin) * time.Minute)
	if err := h.Users.SetResetToken(ctx, u.ID, token, expiry); err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao processar recuperação de senha", "")
	}

	h.Activities.Record(ctx, u.ID, u.Email, model.ActionRecuperarSenha, "Solicitação de recuperação de senha", c.RealIP(), c.Request().UserAgent())

	if h.Mailer.Enabled() {
		go func(to, nome, token string) {
			if err := h.Mailer.SendRecovery(to, nome, token); err != nil {
				log.Printf("recuperar-senha: send mail to %s failed: %v", to, err)
			}
		}(u.Email, u.Nome, token)
	} else {
		log.Printf("recuperar-senha: mailer disabled, reset token for %s: %s", u.Email, token)
	}

	if h.Cfg.Env == "dev" {
		resp["_dev"] = echo.Map{"resetToken": token}
	}
	return c.JSON(http.StatusOK, resp)
}

// RedefinirSenha consumes a reset token and stores the new password.
func (h *AuthHandler) RedefinirSenha(c echo.Context) error {
	var req redefinirReq
	if err := c.Bind(&req); err != nil || validate.Struct(req) != nil {
		return fail(c, http.StatusBadRequest, "Token e nova senha são obrigatórios", "")
	}
	if msg := validation.ValidarSenha(req.NovaSenha); msg != "" {
		return fail(c, http.StatusBadRequest, msg, "WEAK_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrExpired) {
			return fail(c, http.StatusBadRequest, "Token inválido ou expirado", "RESET_TOKEN_INVALID")
		}
		return fail(c, http.StatusInternalServerError, "Erro ao redefinir senha", "")
	}

	hash, err := utils.HashPassword(req.NovaSenha, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao redefinir senha", "")
	}
	if err := h.Users.ResetPassword(ctx, u.ID, hash); err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao redefinir senha", "")
	}

	h.Activities.Record(ctx, u.ID, u.Email, model.ActionRedefinirSenha, "Senha redefinida com sucesso", c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Senha redefinida com sucesso",
	})
}

// Refresh exchanges a stored, unexpired, signature-valid refresh token for
// a new access token. The refresh token is deliberately not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusUnauthorized, "Refresh token não fornecido", "REFRESH_INVALID")
	}
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The token must still be present in the store (logout deletes it)...
	if _, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(raw)); err != nil {
		if errors.Is(err, repository.ErrExpired) {
			return fail(c, http.StatusUnauthorized, "Refresh token inválido ou expirado", "REFRESH_EXPIRED")
		}
		return fail(c, http.StatusUnauthorized, "Refresh token inválido ou expirado", "REFRESH_INVALID")
	}
	// ...and carry a valid signature under the refresh secret.
	claims, err := utils.VerifyToken(h.Cfg.RefreshSecret, raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return fail(c, http.StatusUnauthorized, "Refresh token inválido ou expirado", "REFRESH_EXPIRED")
		}
		return fail(c, http.StatusUnauthorized, "Refresh token inválido ou expirado", "REFRESH_INVALID")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, claims.UserID, claims.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao renovar token", "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   access.Token,
	})
}

// Logout invalidates the presented refresh token. The access token that
// authenticated this call stays valid until it expires on its own.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid := middleware.UserID(c)
	email := middleware.UserEmail(c)

	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return fail(c, http.StatusInternalServerError, "Erro ao fazer logout", "")
		}
	}

	h.Activities.Record(ctx, uid, email, model.ActionLogout, "Logout realizado", c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Logout realizado com sucesso",
	})
}

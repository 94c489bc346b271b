package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/projetocarbone/roma-backend/internal/middleware"
	"github.com/projetocarbone/roma-backend/internal/model"
	"github.com/projetocarbone/roma-backend/internal/repository"
	"github.com/projetocarbone/roma-backend/internal/storage"
	"github.com/projetocarbone/roma-backend/internal/utils"
	"github.com/projetocarbone/roma-backend/internal/validation"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

type profileReq struct {
	Nome     string `json:"nome"`
	Telefone string `json:"telefone"`
	Empresa  string `json:"empresa"`
	Cargo    string `json:"cargo"`
}

type changePasswordReq struct {
	SenhaAtual string `json:"senhaAtual" validate:"required"`
	NovaSenha  string `json:"novaSenha" validate:"required"`
}

// settingsReq uses pointers so an omitted flag keeps its stored value
// while an explicit false still lands.
type settingsReq struct {
	Notificacoes    *bool `json:"notificacoes"`
	Autenticacao2FA *bool `json:"autenticacao2FA"`
	ModoEscuro      *bool `json:"modoEscuro"`
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Usuário não encontrado", "")
		}
		return fail(c, http.StatusInternalServerError, "Erro ao buscar dados do usuário", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

// UpdateProfile overwrites the editable profile fields.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Corpo da requisição inválido", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid := middleware.UserID(c)
	u, err := h.Users.UpdateProfile(ctx, uid, req.Nome, req.Telefone, req.Empresa, req.Cargo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Usuário não encontrado", "")
		}
		return fail(c, http.StatusInternalServerError, "Erro ao atualizar perfil", "")
	}

	h.Activities.Record(ctx, uid, u.Email, model.ActionAtualizarPerfil, "Perfil atualizado", c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    u,
		"message": "Perfil atualizado com sucesso",
	})
}

// ChangePassword swaps the password after verifying the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil || validate.Struct(req) != nil {
		return fail(c, http.StatusBadRequest, "Senha atual e nova senha são obrigatórias", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid := middleware.UserID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Usuário não encontrado", "")
		}
		return fail(c, http.StatusInternalServerError, "Erro ao trocar senha", "")
	}
	if !utils.VerifyPassword(u.SenhaHash, req.SenhaAtual) {
		return fail(c, http.StatusUnauthorized, "Senha atual incorreta", "INVALID_PASSWORD")
	}
	if msg := validation.ValidarSenha(req.NovaSenha); msg != "" {
		return fail(c, http.StatusBadRequest, msg, "WEAK_PASSWORD")
	}

	hash, err := utils.HashPassword(req.NovaSenha, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao trocar senha", "")
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao trocar senha", "")
	}

	h.Activities.Record(ctx, uid, u.Email, model.ActionTrocarSenha, "Senha alterada", c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Senha alterada com sucesso",
	})
}

// UpdateSettings toggles the notification/2FA/dark-mode flags.
func (h *AuthHandler) UpdateSettings(c echo.Context) error {
	var req settingsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Corpo da requisição inválido", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid := middleware.UserID(c)
	current, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Usuário não encontrado", "")
		}
		return fail(c, http.StatusInternalServerError, "Erro ao atualizar configurações", "")
	}

	notificacoes := current.Notificacoes
	if req.Notificacoes != nil {
		notificacoes = *req.Notificacoes
	}
	autenticacao2FA := current.Autenticacao2FA
	if req.Autenticacao2FA != nil {
		autenticacao2FA = *req.Autenticacao2FA
	}
	modoEscuro := current.ModoEscuro
	if req.ModoEscuro != nil {
		modoEscuro = *req.ModoEscuro
	}

	u, err := h.Users.UpdateSettings(ctx, uid, notificacoes, autenticacao2FA, modoEscuro)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao atualizar configurações", "")
	}

	h.Activities.Record(ctx, uid, u.Email, model.ActionAtualizarConfig, "Configurações atualizadas", c.RealIP(), c.Request().UserAgent())

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    u,
		"message": "Configurações atualizadas com sucesso",
	})
}

// Activities pages through the user's audit trail, newest first.
func (h *AuthHandler) ListActivities(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Activities.Store.ListByUser(ctx, middleware.UserID(c), (page-1)*limit, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Erro ao buscar histórico", "")
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"activities": items,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

// UploadAvatar stores a profile picture in the object bucket and records
// its public URL on the user.
func (h *AuthHandler) UploadAvatar(avatars *storage.AvatarStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if avatars == nil {
			return fail(c, http.StatusServiceUnavailable, "Upload de avatar indisponível", "")
		}
		fh, err := c.FormFile("avatar")
		if err != nil {
			return fail(c, http.StatusBadRequest, "Arquivo de avatar é obrigatório", "")
		}
		if fh.Size > maxAvatarBytes {
			return fail(c, http.StatusBadRequest, "Arquivo de avatar muito grande (máx. 5MB)", "")
		}
		src, err := fh.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "Arquivo de avatar inválido", "")
		}
		defer src.Close()

		ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
		defer cancel()

		uid := middleware.UserID(c)
		url, err := avatars.Put(ctx, uid, fh.Filename, fh.Header.Get("Content-Type"), src, fh.Size)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Não foi possível enviar o avatar", "")
		}
		if err := h.Users.UpdateAvatar(ctx, uid, url); err != nil {
			return fail(c, http.StatusInternalServerError, "Erro ao atualizar avatar", "")
		}

		h.Activities.Record(ctx, uid, middleware.UserEmail(c), model.ActionUploadAvatar, "Avatar atualizado", c.RealIP(), c.Request().UserAgent())

		return c.JSON(http.StatusOK, echo.Map{
			"success":    true,
			"fotoPerfil": url,
			"message":    "Avatar atualizado com sucesso",
		})
	}
}

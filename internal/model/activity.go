package model

import "time"

// Action is the closed set of account events recorded in the activity log.
// The values match the tags the web client renders, so they are stable.
type Action string

const (
	ActionLogin           Action = "LOGIN"
	ActionLogout          Action = "LOGOUT"
	ActionCadastro        Action = "CADASTRO"
	ActionAtualizarPerfil Action = "ATUALIZAR_PERFIL"
	ActionTrocarSenha     Action = "TROCAR_SENHA"
	ActionRecuperarSenha  Action = "RECUPERAR_SENHA"
	ActionRedefinirSenha  Action = "REDEFINIR_SENHA"
	ActionAtualizarConfig Action = "ATUALIZAR_CONFIGURACOES"
	ActionUploadAvatar    Action = "UPLOAD_AVATAR"
)

// Valid reports whether a is one of the known action tags. Repositories
// reject unknown tags so the log stays a closed enumeration.
func (a Action) Valid() bool {
	switch a {
	case ActionLogin, ActionLogout, ActionCadastro, ActionAtualizarPerfil,
		ActionTrocarSenha, ActionRecuperarSenha, ActionRedefinirSenha,
		ActionAtualizarConfig, ActionUploadAvatar:
		return true
	}
	return false
}

// Activity is one append-only audit record. Rows are never updated or
// deleted by the application.
type Activity struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	Action      Action    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ipAddress"`
	UserAgent   string    `json:"userAgent"`
	CreatedAt   time.Time `json:"createdAt"`
}

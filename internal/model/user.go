package model

import "time"

// User represents an account record as stored in the `users` table.
// Profile fields beyond nome/email are optional and empty strings when
// unset. Passwords are only ever stored as bcrypt hashes; the plaintext
// never leaves the signup/login handlers.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Nome             – display name.
//  Email            – unique, lowercased email address.
//  SenhaHash        – bcrypt hashed password.
//  Telefone         – optional phone number.
//  Empresa          – optional company name.
//  Cargo            – optional job title.
//  FotoPerfil       – optional avatar URL.
//  Notificacoes     – email notification opt-in (defaults to true).
//  Autenticacao2FA  – two-factor flag.
//  ModoEscuro       – dark-mode preference.
//  ResetToken       – pending password-reset token (nil when none).
//  ResetTokenExpiry – expiry of the pending reset token (nil when none).
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
	ID               uint64     `json:"id"`
	Nome             string     `json:"nome"`
	Email            string     `json:"email"`
	SenhaHash        string     `json:"-"`
	Telefone         string     `json:"telefone"`
	Empresa          string     `json:"empresa"`
	Cargo            string     `json:"cargo"`
	FotoPerfil       string     `json:"fotoPerfil"`
	Notificacoes     bool       `json:"notificacoes"`
	Autenticacao2FA  bool       `json:"autenticacao2FA"`
	ModoEscuro       bool       `json:"modoEscuro"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table. The signed
// token itself is never persisted; only its SHA-256 hash, so a leaked
// database cannot be replayed against the refresh endpoint.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the signed token.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked or logged out (nil if active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

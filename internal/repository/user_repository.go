package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/projetocarbone/roma-backend/internal/model"
)

const userColumns = `id,nome,email,senha_hash,telefone,empresa,cargo,foto_perfil,
notificacoes,autenticacao_2fa,modo_escuro,reset_token,reset_token_expiry,created_at,updated_at`

// UserRepo implements UserStore against the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the user and fills in its ID. MySQL error 1062 (duplicate
// key on the unique email index) maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (nome, email, senha_hash, telefone, empresa, cargo, notificacoes) VALUES (?,?,?,?,?,?,?)",
		u.Nome, u.Email, u.SenhaHash, u.Telefone, u.Empresa, u.Cargo, u.Notificacoes)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile overwrites the editable profile fields. Empty strings keep
// the stored value, matching what the profile form submits.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, nome, telefone, empresa, cargo string) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET
			nome=IF(?='', nome, ?),
			telefone=IF(?='', telefone, ?),
			empresa=IF(?='', empresa, ?),
			cargo=IF(?='', cargo, ?),
			updated_at=NOW()
		WHERE id=?`,
		nome, nome, telefone, telefone, empresa, empresa, cargo, cargo, id)
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) UpdateSettings(ctx context.Context, id uint64, notificacoes, autenticacao2FA, modoEscuro bool) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET notificacoes=?, autenticacao_2fa=?, modo_escuro=?, updated_at=NOW() WHERE id=?",
		notificacoes, autenticacao2FA, modoEscuro, id)
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, senhaHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET senha_hash=?, updated_at=NOW() WHERE id=?", senhaHash, id)
	return err
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET foto_perfil=?, updated_at=NOW() WHERE id=?", url, id)
	return err
}

func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, token string, expiry time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_token_expiry=?, updated_at=NOW() WHERE id=?",
		token, expiry, id)
	return err
}

// GetByResetToken resolves a pending reset token. Expired tokens are
// reported as ErrExpired so the handler can phrase the error precisely.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	u, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE reset_token=? LIMIT 1", token))
	if err != nil {
		return model.User{}, err
	}
	if u.ResetTokenExpiry == nil || time.Now().UTC().After(*u.ResetTokenExpiry) {
		return model.User{}, ErrExpired
	}
	return u, nil
}

func (r *UserRepo) ResetPassword(ctx context.Context, id uint64, senhaHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET senha_hash=?, reset_token=NULL, reset_token_expiry=NULL, updated_at=NOW() WHERE id=?",
		senhaHash, id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u          model.User
		resetToken sql.NullString
		resetExp   sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Telefone, &u.Empresa,
		&u.Cargo, &u.FotoPerfil, &u.Notificacoes, &u.Autenticacao2FA, &u.ModoEscuro,
		&resetToken, &resetExp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if resetToken.Valid {
		u.ResetToken = &resetToken.String
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.ResetTokenExpiry = &t
	}
	return u, nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/prebel/reservas-service/internal/model"
)

// AdminRepo manages authentication principals.  Passwords are stored as
// bcrypt hashes; the token column holds the single active session
// credential for each admin and is overwritten on every login.
type AdminRepo struct {
	db *sql.DB
}

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// Create inserts a new admin, hashing the password with the given cost.
// Returns ErrUsernameExists on a duplicate username.
func (r *AdminRepo) Create(ctx context.Context, username, password, nombreCompleto string, cost int) error {
	username = strings.TrimSpace(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO admins (username, password, nombre_completo) VALUES (?,?,?)`,
		username, string(hash), nombreCompleto)
	if err != nil && isDuplicate(err) {
		return ErrUsernameExists
	}
	return err
}

// Authenticate verifies a username/password pair and returns the admin
// on success.  Unknown usernames and wrong passwords both yield
// ErrCredencialesInvalidas.
func (r *AdminRepo) Authenticate(ctx context.Context, username, password string) (model.Admin, error) {
	a, err := r.getBy(ctx, "username", strings.TrimSpace(username))
	if err == ErrNotFound {
		return model.Admin{}, ErrCredencialesInvalidas
	}
	if err != nil {
		return model.Admin{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return model.Admin{}, ErrCredencialesInvalidas
	}
	return a, nil
}

// GetByToken resolves a session token to its admin.  Tokens that match
// no row resolve to ErrNotFound.
func (r *AdminRepo) GetByToken(ctx context.Context, token string) (model.Admin, error) {
	return r.getBy(ctx, "token", token)
}

// UpdateToken replaces the admin's session token.  Writing a new value
// is what invalidates any session opened elsewhere.
func (r *AdminRepo) UpdateToken(ctx context.Context, id uint64, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admins SET token = ? WHERE id = ?`, token, id)
	return err
}

// UpdatePassword sets a new bcrypt-hashed password for the username.
func (r *AdminRepo) UpdatePassword(ctx context.Context, username, password string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE admins SET password = ? WHERE username = ?`, string(hash), username)
	return err
}

// List returns all admins without hashes or tokens, ordered by id.
func (r *AdminRepo) List(ctx context.Context) ([]model.AdminInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, nombre_completo FROM admins ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AdminInfo, 0, 8)
	for rows.Next() {
		var info model.AdminInfo
		var nombre sql.NullString
		if err := rows.Scan(&info.ID, &info.Username, &nombre); err != nil {
			return nil, err
		}
		info.NombreCompleto = ptr(nombre)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Seed creates the default admin when the username does not exist yet.
func (r *AdminRepo) Seed(ctx context.Context, username, password, nombreCompleto string, cost int) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins WHERE username = ?`, username).Scan(&count)
	if err != nil || count > 0 {
		return err
	}
	return r.Create(ctx, username, password, nombreCompleto, cost)
}

func (r *AdminRepo) getBy(ctx context.Context, column, value string) (model.Admin, error) {
	var (
		a      model.Admin
		nombre sql.NullString
		token  sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, nombre_completo, token FROM admins WHERE `+column+` = ? LIMIT 1`,
		value).Scan(&a.ID, &a.Username, &a.PasswordHash, &nombre, &token)
	if err == sql.ErrNoRows {
		return model.Admin{}, ErrNotFound
	}
	if err != nil {
		return model.Admin{}, err
	}
	a.NombreCompleto = ptr(nombre)
	a.Token = ptr(token)
	return a, nil
}

package repos

import (
	"context"
	"database/sql"
	"errors"

	"creativehub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `u.id, u.email, u.name, u.password_hash, COALESCE(u.created_at,'') AS created_at`

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users u WHERE LOWER(u.email)=LOWER(?)`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users u WHERE u.id=?`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Create inserts the user with an empty profile and the given roles in one transaction.
func (r *UserRepo) Create(ctx context.Context, u *domain.User, roles ...string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO users(id,email,name,password_hash) VALUES(?,?,?,?)`,
		u.ID, u.Email, u.Name, u.Hash); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO profiles(user_id,full_name,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)`,
		u.ID, u.Name); err != nil {
		return err
	}
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_roles(user_id,role) VALUES(?,?)`, u.ID, role); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	u.Roles = roles
	return nil
}

func (r *UserRepo) Roles(ctx context.Context, userID string) ([]string, error) {
	roles := []string{}
	err := r.DB.SelectContext(ctx, &roles, `SELECT role FROM user_roles WHERE user_id=? ORDER BY role`, userID)
	return roles, err
}

// RoleMap returns role assignments for every user, keyed by user id.
func (r *UserRepo) RoleMap(ctx context.Context) (map[string][]string, error) {
	var rows []struct {
		UserID string `db:"user_id"`
		Role   string `db:"role"`
	}
	if err := r.DB.SelectContext(ctx, &rows, `SELECT user_id, role FROM user_roles ORDER BY role`); err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(rows))
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.Role)
	}
	return out, nil
}

func (r *UserRepo) AssignRole(ctx context.Context, userID, role string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO user_roles(user_id,role) VALUES(?,?) ON CONFLICT DO NOTHING`, userID, role)
	return err
}

func (r *UserRepo) RevokeRole(ctx context.Context, userID, role string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id=? AND role=?`, userID, role)
	return err
}

// Members lists users joined with their profiles, newest first, optionally filtered by q.
func (r *UserRepo) Members(ctx context.Context, q string) ([]domain.Member, error) {
	where, args := ``, []any{}
	if q != "" {
		where = `WHERE LOWER(u.email) LIKE ? ESCAPE '\' OR LOWER(u.name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(p.full_name,'')) LIKE ? ESCAPE '\'`
		like := contains(q)
		args = append(args, like, like, like)
	}
	out := []domain.Member{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT u.id, u.email, u.name, COALESCE(p.full_name,'') AS full_name,
		       COALESCE(p.avatar_url,'') AS avatar_url, COALESCE(p.phone,'') AS phone,
		       COALESCE(u.created_at,'') AS created_at
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		`+where+`
		ORDER BY u.created_at DESC, u.email`, args...)
	return out, err
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// Delete removes a user; profiles, roles, products, purchases, favorites and
// notifications cascade, sessions are unbound.
func (r *UserRepo) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

// Uploads lists the image URLs owned by a user: avatar and product thumbnails.
func (r *UserRepo) Uploads(ctx context.Context, userID string) ([]string, error) {
	var urls []string
	err := r.DB.SelectContext(ctx, &urls, `
		SELECT avatar_url FROM profiles WHERE user_id=? AND COALESCE(avatar_url,'') <> ''
		UNION ALL
		SELECT thumbnail_url FROM products WHERE seller_id=? AND COALESCE(thumbnail_url,'') <> ''`, userID, userID)
	return urls, err
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
      SELECT `+userCols+`
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

func (r *UserRepo) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.DB.GetContext(ctx, &p, `
		SELECT user_id, COALESCE(full_name,'') AS full_name, COALESCE(bio,'') AS bio,
		       COALESCE(website,'') AS website, COALESCE(location,'') AS location,
		       COALESCE(avatar_url,'') AS avatar_url, COALESCE(phone,'') AS phone,
		       COALESCE(updated_at,'') AS updated_at
		FROM profiles WHERE user_id=?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		// No row yet is an empty profile, not an error.
		return domain.Profile{UserID: userID}, nil
	}
	return p, err
}

func (r *UserRepo) UpsertProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles(user_id,full_name,bio,website,location,avatar_url,phone,updated_at)
		VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
		  full_name=excluded.full_name, bio=excluded.bio, website=excluded.website,
		  location=excluded.location, avatar_url=excluded.avatar_url, phone=excluded.phone,
		  updated_at=CURRENT_TIMESTAMP
	`, p.UserID, p.FullName, p.Bio, p.Website, p.Location, p.AvatarURL, p.Phone)
	return err
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes everything else through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) IDsWithRole(ctx context.Context, role string) ([]string, error) {
	ids := []string{}
	err := r.DB.SelectContext(ctx, &ids, `SELECT user_id FROM user_roles WHERE role=? ORDER BY user_id`, role)
	return ids, err
}

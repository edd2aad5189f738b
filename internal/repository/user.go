package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/godeye/godeye-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = `id, name, email, password_hash, role, search_count, max_searches, created_at, updated_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
// The email is expected to arrive already normalized.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, search_count, max_searches) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.SearchCount, user.MaxSearches,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetByEmail retrieves a user by their normalized email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.SearchCount, &user.MaxSearches, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// UpdateRole sets a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	return r.exec(ctx, `UPDATE users SET role = ?, updated_at = NOW() WHERE id = ?`, role, id)
}

// UpdateMaxSearches sets a user's search cap.
func (r *UserRepository) UpdateMaxSearches(ctx context.Context, id int64, n int) error {
	return r.exec(ctx, `UPDATE users SET max_searches = ?, updated_at = NOW() WHERE id = ?`, n, id)
}

// IncrementSearchCount bumps a user's used-search counter by one. The
// increment happens inside the database so concurrent requests never lose
// updates to a read-modify-write race.
func (r *UserRepository) IncrementSearchCount(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users SET search_count = search_count + 1, updated_at = NOW() WHERE id = ?`, id)
}

// ReserveSearch atomically takes one search slot if the user is still below
// their cap, reporting whether a slot was taken. Both the comparison and the
// increment run as a single conditional UPDATE, so search_count can never
// pass max_searches no matter how many requests race.
func (r *UserRepository) ReserveSearch(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET search_count = search_count + 1, updated_at = NOW() WHERE id = ? AND search_count < max_searches`,
		id,
	)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ResetSearchCount zeroes a user's used-search counter.
func (r *UserRepository) ResetSearchCount(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users SET search_count = 0, updated_at = NOW() WHERE id = ?`, id)
}

// exec runs a targeted UPDATE and maps zero matched rows to ErrUserNotFound.
// The DSN must carry clientFoundRows=true so RowsAffected counts matched
// rows, not changed ones; otherwise a same-value update would look like a
// missing user.
func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lightbnb/internal/domain"
)

type UserRepo struct {
	db    DBTX
	match domain.EmailMatch
}

func NewUserRepo(db DBTX, match domain.EmailMatch) *UserRepo {
	return &UserRepo{db: db, match: match}
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := getUserByEmailSQL
	if r.match == domain.EmailCaseInsensitive {
		q = getUserByEmailFoldSQL
	}
	return scanUser(r.db.QueryRow(ctx, q, email))
}

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, getUserByIDSQL, id))
}

// AddUser does not check for an existing email; only a storage constraint can reject duplicates.
func (r *UserRepo) AddUser(ctx context.Context, u domain.User) (domain.User, error) {
	out, err := scanUser(r.db.QueryRow(ctx, insertUserSQL, u.Name, u.Email, u.Password))
	if err != nil {
		return domain.User{}, err
	}
	return *out, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

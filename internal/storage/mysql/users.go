package mysql

import (
	"context"
	"database/sql"
	"errors"

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
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
}

// AddUser inserts and reads the row back by its generated id.
func (r *UserRepo) AddUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.Email, u.Password)
	if err != nil {
		return domain.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	out, err := r.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if out == nil {
		return domain.User{}, sql.ErrNoRows
	}
	return *out, nil
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

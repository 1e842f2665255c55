package user

import (
	"context"
	"database/sql"

	"organic-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	List(ctx context.Context, email string) ([]User, error)
	UpdateRole(ctx context.Context, id int64, role Role) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u User) (User, error) {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (email, name, photo, role) VALUES ($1, $2, $3, $4) RETURNING id",
		u.Email, u.Name, u.Photo, u.Role,
	).Scan(&u.ID)

	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert user",
			zap.String("email", u.Email),
			zap.Error(err),
		)
	}

	return u, err
}

func (r *repository) List(ctx context.Context, email string) ([]User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if email != "" {
		rows, err = r.db.QueryContext(ctx,
			"SELECT id, email, name, photo, role FROM users WHERE email = $1 ORDER BY id", email)
	} else {
		rows, err = r.db.QueryContext(ctx,
			"SELECT id, email, name, photo, role FROM users ORDER BY id")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Photo, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *repository) UpdateRole(ctx context.Context, id int64, role Role) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET role = $1 WHERE id = $2", role, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

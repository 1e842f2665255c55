package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Repository interface {
	Create(ctx context.Context, p Product) (Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, input UpdateProductInput, image *string) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, product_name, parent_title, type, made_in, net_weight,
	price, pre_price, expired, description, product_image, role`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.ProductName, &p.ParentTitle, &p.Type, &p.MadeIn, &p.NetWeight,
		&p.Price, &p.PrePrice, &p.Expired, &p.Description, &p.ProductImage, &p.Role,
	)
	return p, err
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	if p.Role == "" {
		p.Role = StatusPending
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			product_name, parent_title, type, made_in, net_weight,
			price, pre_price, expired, description, product_image, role
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		p.ProductName, p.ParentTitle, p.Type, p.MadeIn, p.NetWeight,
		p.Price, p.PrePrice, p.Expired, p.Description, p.ProductImage, p.Role,
	).Scan(&p.ID)

	return p, err
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	var args []any
	if opts.OnlyApproved {
		query += " WHERE role = $1"
		args = append(args, StatusApproved)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update writes only the supplied columns, plus product_image when image is non-nil.
func (r *repository) Update(ctx context.Context, id int64, input UpdateProductInput, image *string) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if input.ProductName != nil {
		add("product_name", *input.ProductName)
	}
	if input.ParentTitle != nil {
		add("parent_title", *input.ParentTitle)
	}
	if input.Type != nil {
		add("type", *input.Type)
	}
	if input.MadeIn != nil {
		add("made_in", *input.MadeIn)
	}
	if input.NetWeight != nil {
		add("net_weight", *input.NetWeight)
	}
	if input.Price != nil {
		add("price", *input.Price)
	}
	if input.PrePrice != nil {
		add("pre_price", *input.PrePrice)
	}
	if input.Expired != nil {
		add("expired", *input.Expired)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}
	if input.Role != nil {
		add("role", *input.Role)
	}
	if image != nil {
		add("product_image", *image)
	}

	if len(sets) == 0 {
		return ErrNoFieldsToUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
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
		return ErrProductNotFound
	}
	return nil
}

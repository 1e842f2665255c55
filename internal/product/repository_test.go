package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "product_name", "parent_title", "type", "made_in", "net_weight",
	"price", "pre_price", "expired", "description", "product_image", "role",
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	in := Product{
		ProductName:  "Honey",
		ParentTitle:  "Sweeteners",
		Type:         "Organic",
		MadeIn:       "BD",
		NetWeight:    "500g",
		Price:        500,
		PrePrice:     550,
		Expired:      "2027-01-01",
		Description:  "Raw honey",
		ProductImage: "productImage_1.jpg",
	}

	t.Run("DefaultsToPending", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO products .* RETURNING id`).
			WithArgs("Honey", "Sweeteners", "Organic", "BD", "500g",
				500.0, 550.0, "2027-01-01", "Raw honey", "productImage_1.jpg", "pending").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		p, err := repo.Create(ctx, in)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), p.ID)
		assert.Equal(t, StatusPending, p.Role)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO products`).
			WillReturnError(errors.New("db error"))

		_, err := repo.Create(ctx, in)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("All", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products ORDER BY id`).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(1, "Rice", "", "", "", "", 80.0, 0.0, "", "", "a.jpg", "pending").
				AddRow(2, "Ghee", "", "", "", "", 900.0, 950.0, "", "", "b.jpg", "approved"))

		products, err := repo.List(ctx, ListOptions{})
		assert.NoError(t, err)
		if assert.Len(t, products, 2) {
			assert.Equal(t, StatusApproved, products[1].Role)
			assert.Equal(t, 900.0, products[1].Price)
		}
	})

	t.Run("OnlyApproved", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products WHERE role = \$1 ORDER BY id`).
			WithArgs("approved").
			WillReturnRows(sqlmock.NewRows(productCols))

		products, err := repo.List(ctx, ListOptions{OnlyApproved: true})
		assert.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("QueryError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products`).
			WillReturnError(errors.New("db error"))

		_, err := repo.List(ctx, ListOptions{})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(4, "Dates", "Fruit", "Dry", "SA", "1kg", 700.0, 0.0, "", "", "d.jpg", "approved"))

		p, err := repo.GetByID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "Dates", p.ProductName)
		assert.Equal(t, "1kg", p.NetWeight)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("OnlySuppliedColumns", func(t *testing.T) {
		price := 42.5
		weight := "250g"
		mock.ExpectExec(`UPDATE products SET net_weight = \$1, price = \$2 WHERE id = \$3`).
			WithArgs("250g", 42.5, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, 5, UpdateProductInput{NetWeight: &weight, Price: &price}, nil)
		assert.NoError(t, err)
	})

	t.Run("WithImage", func(t *testing.T) {
		role := StatusApproved
		img := "productImage_2.png"
		mock.ExpectExec(`UPDATE products SET role = \$1, product_image = \$2 WHERE id = \$3`).
			WithArgs("approved", "productImage_2.png", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, 5, UpdateProductInput{Role: &role}, &img)
		assert.NoError(t, err)
	})

	t.Run("NoFields", func(t *testing.T) {
		err := repo.Update(ctx, 5, UpdateProductInput{}, nil)
		assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	})

	t.Run("NotFound", func(t *testing.T) {
		name := "x"
		mock.ExpectExec(`UPDATE products SET product_name = \$1 WHERE id = \$2`).
			WithArgs("x", int64(404)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, 404, UpdateProductInput{ProductName: &name}, nil)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, 1))

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, 2), ErrProductNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

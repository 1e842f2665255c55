package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"organic-be/internal/logger"
	"organic-be/internal/storage"
	"organic-be/internal/utils"

	"go.uber.org/zap"
)

const imageField = "productImage"

type Service interface {
	Create(ctx context.Context, input NewProductInput, image *Upload) (Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, input UpdateProductInput, image *Upload) error
	Delete(ctx context.Context, id int64) error
	OpenImage(ctx context.Context, name string) (io.ReadCloser, error)
}

type service struct {
	repo Repository
	disk storage.Disk
	now  func() time.Time
}

func NewService(repo Repository, disk storage.Disk) Service {
	return &service{repo: repo, disk: disk, now: time.Now}
}

func (s *service) Create(ctx context.Context, input NewProductInput, image *Upload) (Product, error) {
	log := logger.FromCtx(ctx)

	if err := utils.ValidateStruct(input); err != nil {
		return Product{}, err
	}
	if image == nil || image.Body == nil {
		return Product{}, ErrImageRequired
	}

	name, err := s.storeImage(ctx, image)
	if err != nil {
		return Product{}, err
	}

	p, err := s.repo.Create(ctx, Product{
		ProductName:  input.ProductName,
		ParentTitle:  input.ParentTitle,
		Type:         input.Type,
		MadeIn:       input.MadeIn,
		NetWeight:    input.NetWeight,
		Price:        input.Price,
		PrePrice:     input.PrePrice,
		Expired:      input.Expired,
		Description:  input.Description,
		ProductImage: name,
		Role:         StatusPending,
	})
	if err != nil {
		s.discardImage(ctx, name)
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	log.Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("image", name),
	)
	p.ImageURL = s.disk.URL(p.ProductImage)
	return p, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	products, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for i := range products {
		products[i].ImageURL = s.disk.URL(products[i].ProductImage)
	}
	return products, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ImageURL = s.disk.URL(p.ProductImage)
	return p, nil
}

// Update applies a partial update. A new image replaces the old one, and the
// old file must be removable or the whole update is abandoned.
func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput, image *Upload) error {
	log := logger.FromCtx(ctx).With(zap.Int64("product_id", id))

	input.Normalize()
	hasImage := image != nil && image.Body != nil
	if !input.HasAnyField() && !hasImage {
		return ErrNoFieldsToUpdate
	}
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var newName *string
	if hasImage {
		name, err := s.storeImage(ctx, image)
		if err != nil {
			return err
		}

		if existing.ProductImage != "" {
			if err := s.disk.Delete(ctx, existing.ProductImage); err != nil {
				log.Error("failed to delete existing product image",
					zap.String("image", existing.ProductImage),
					zap.Error(err),
				)
				s.discardImage(ctx, name)
				return fmt.Errorf("%w: %v", ErrImageDelete, err)
			}
		}
		newName = &name
	}

	if err := s.repo.Update(ctx, id, input, newName); err != nil {
		if newName != nil {
			s.discardImage(ctx, *newName)
		}
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrNoFieldsToUpdate) {
			return err
		}
		return fmt.Errorf("update product: %w", err)
	}

	log.Info("product updated", zap.Bool("image_replaced", newName != nil))
	return nil
}

// Delete removes the image first and then the row. A file that is already
// gone is not an error.
func (s *service) Delete(ctx context.Context, id int64) error {
	log := logger.FromCtx(ctx).With(zap.Int64("product_id", id))

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if existing.ProductImage != "" {
		err := s.disk.Delete(ctx, existing.ProductImage)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("product image already missing", zap.String("image", existing.ProductImage))
		case err != nil:
			return fmt.Errorf("delete product image: %w", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info("product deleted")
	return nil
}

func (s *service) OpenImage(ctx context.Context, name string) (io.ReadCloser, error) {
	name, err := storage.CleanName(name)
	if err != nil {
		return nil, err
	}
	return s.disk.Open(ctx, name)
}

func (s *service) storeImage(ctx context.Context, image *Upload) (string, error) {
	name := utils.ImageFileName(imageField, image.Filename, s.now())
	if err := s.disk.Put(ctx, name, image.Body); err != nil {
		return "", fmt.Errorf("store product image: %w", err)
	}
	return name, nil
}

func (s *service) discardImage(ctx context.Context, name string) {
	if err := s.disk.Delete(ctx, name); err != nil {
		logger.FromCtx(ctx).Warn("failed to remove stored image",
			zap.String("image", name),
			zap.Error(err),
		)
	}
}

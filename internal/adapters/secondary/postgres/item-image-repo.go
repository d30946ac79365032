package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
)

type itemImageRepo struct {
	pool *pgxpool.Pool
}

func NewItemImageRepository(pool *pgxpool.Pool) ports.ItemImageRepository {
	return &itemImageRepo{pool: pool}
}

const imageColumns = `id, item_id, filename, original_filename, file_size, width, height,
	orientation, optimized, rotation, is_primary, sort_order, created_at`

// Create appends img after the item's current images. The item row lock
// serializes concurrent uploads so sort positions never repeat.
func (r *itemImageRepo) Create(ctx context.Context, img *domain.ItemImage) error {
	query := `
		INSERT INTO item_images
			(item_id, filename, original_filename, file_size, width, height,
			 orientation, optimized, rotation, is_primary, sort_order, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			(SELECT COALESCE(MAX(sort_order) + 1, 0) FROM item_images WHERE item_id = $1),
			$11)
		RETURNING id, sort_order
	`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT id FROM items WHERE id = $1 FOR UPDATE`, img.ItemID); err != nil {
			return fmt.Errorf("lock item: %w", err)
		}
		err := tx.QueryRow(ctx, query,
			img.ItemID, img.Filename, img.OriginalFilename, img.FileSize,
			img.Width, img.Height, string(img.Orientation), img.Optimized,
			img.Rotation, img.IsPrimary, img.CreatedAt,
		).Scan(&img.ID, &img.SortOrder)
		if err != nil {
			return fmt.Errorf("create item image: %w", err)
		}
		return nil
	})
}

func (r *itemImageRepo) GetByID(ctx context.Context, id int64) (*domain.ItemImage, error) {
	query := `SELECT ` + imageColumns + ` FROM item_images WHERE id = $1`
	img, err := scanImage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("get item image: %w", err)
	}
	return img, nil
}

func (r *itemImageRepo) ListByItem(ctx context.Context, itemID int64) ([]*domain.ItemImage, error) {
	query := `SELECT ` + imageColumns + ` FROM item_images WHERE item_id = $1 ORDER BY sort_order, id`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list item images: %w", err)
	}
	defer rows.Close()

	var images []*domain.ItemImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *itemImageRepo) Update(ctx context.Context, img *domain.ItemImage) error {
	query := `
		UPDATE item_images
		SET rotation=$1, is_primary=$2, sort_order=$3
		WHERE id=$4
	`
	result, err := r.pool.Exec(ctx, query, img.Rotation, img.IsPrimary, img.SortOrder, img.ID)
	if err != nil {
		return fmt.Errorf("update item image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

// SetPrimary flags imageID as the only primary image and points
// items.image_filename at it in the same transaction.
func (r *itemImageRepo) SetPrimary(ctx context.Context, itemID int64, imageID int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var filename string
		err := tx.QueryRow(ctx,
			`SELECT filename FROM item_images WHERE id = $1 AND item_id = $2`, imageID, itemID).Scan(&filename)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrImageNotFound
			}
			return fmt.Errorf("get primary candidate: %w", err)
		}

		// Updating the item first takes its row lock before the gallery rows.
		result, err := tx.Exec(ctx, `UPDATE items SET image_filename = $1 WHERE id = $2`, filename, itemID)
		if err != nil {
			return fmt.Errorf("set item image: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrItemNotFound
		}

		if _, err := tx.Exec(ctx,
			`UPDATE item_images SET is_primary = (id = $2) WHERE item_id = $1`, itemID, imageID); err != nil {
			return fmt.Errorf("set primary image: %w", err)
		}
		return nil
	})
}

func (r *itemImageRepo) Reorder(ctx context.Context, itemID int64, imageIDs []int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for i, id := range imageIDs {
			result, err := tx.Exec(ctx,
				`UPDATE item_images SET sort_order = $1 WHERE id = $2 AND item_id = $3`, i, id, itemID)
			if err != nil {
				return fmt.Errorf("reorder item image %d: %w", id, err)
			}
			if result.RowsAffected() == 0 {
				return domain.ErrIdentityMismatch
			}
		}
		return nil
	})
}

func (r *itemImageRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM item_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

func scanImage(row pgx.Row) (*domain.ItemImage, error) {
	var img domain.ItemImage
	var orientation string
	err := row.Scan(
		&img.ID, &img.ItemID, &img.Filename, &img.OriginalFilename, &img.FileSize,
		&img.Width, &img.Height, &orientation, &img.Optimized, &img.Rotation,
		&img.IsPrimary, &img.SortOrder, &img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	img.Orientation = domain.Orientation(orientation)
	return &img, nil
}

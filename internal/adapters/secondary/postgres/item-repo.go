package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
)

const uniqueViolation = "23505"

type itemRepo struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) ports.ItemRepository {
	return &itemRepo{pool: pool}
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT id, name, image_filename, qr_code FROM items WHERE id = $1`
	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item by id: %w", err)
	}
	return item, nil
}

func (r *itemRepo) GetByQRCode(ctx context.Context, code string) (*domain.Item, error) {
	query := `SELECT id, name, image_filename, qr_code FROM items WHERE qr_code = $1`
	item, err := scanItem(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQRCodeNotFound
		}
		return nil, fmt.Errorf("get item by qr code: %w", err)
	}
	return item, nil
}

func (r *itemRepo) SetImageFilename(ctx context.Context, id int64, filename *string) error {
	result, err := r.pool.Exec(ctx, `UPDATE items SET image_filename = $1 WHERE id = $2`, filename, id)
	if err != nil {
		return fmt.Errorf("set item image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *itemRepo) SetQRCode(ctx context.Context, id int64, code *string) error {
	result, err := r.pool.Exec(ctx, `UPDATE items SET qr_code = $1 WHERE id = $2`, code, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrQRCodeConflict
		}
		return fmt.Errorf("set item qr code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(&item.ID, &item.Name, &item.ImageFilename, &item.QRCode); err != nil {
		return nil, err
	}
	return &item, nil
}

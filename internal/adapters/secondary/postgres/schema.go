package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the media tables when missing. The items table is owned by
// the inventory CRUD layer; only the columns used here are declared.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		image_filename TEXT,
		qr_code        TEXT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS item_images (
		id                BIGSERIAL PRIMARY KEY,
		item_id           BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		filename          TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		file_size         BIGINT NOT NULL DEFAULT 0,
		width             INT NOT NULL DEFAULT 0,
		height            INT NOT NULL DEFAULT 0,
		orientation       TEXT NOT NULL DEFAULT '',
		optimized         BOOLEAN NOT NULL DEFAULT FALSE,
		rotation          INT NOT NULL DEFAULT 0,
		is_primary        BOOLEAN NOT NULL DEFAULT FALSE,
		sort_order        INT NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_item_images_item ON item_images (item_id, sort_order)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id                BIGSERIAL PRIMARY KEY,
		item_id           BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		filename          TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		document_type     VARCHAR(50) NOT NULL DEFAULT '',
		description       TEXT NOT NULL DEFAULT '',
		file_size         BIGINT NOT NULL DEFAULT 0,
		mime_type         TEXT NOT NULL DEFAULT '',
		uploaded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_item ON documents (item_id)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}

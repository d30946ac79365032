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

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) ports.DocumentRepository {
	return &documentRepo{pool: pool}
}

const documentColumns = `id, item_id, filename, original_filename, document_type, description,
	file_size, mime_type, uploaded_at`

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents
			(item_id, filename, original_filename, document_type, description,
			 file_size, mime_type, uploaded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		doc.ItemID, doc.Filename, doc.OriginalFilename, doc.DocumentType,
		doc.Description, doc.FileSize, doc.MimeType, doc.UploadedAt,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *documentRepo) ListByItem(ctx context.Context, itemID int64) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE item_id = $1 ORDER BY uploaded_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepo) UpdateMetadata(ctx context.Context, id int64, documentType, description string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE documents SET document_type = $1, description = $2 WHERE id = $3`,
		documentType, description, id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	err := row.Scan(
		&doc.ID, &doc.ItemID, &doc.Filename, &doc.OriginalFilename, &doc.DocumentType,
		&doc.Description, &doc.FileSize, &doc.MimeType, &doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Package repository implements persistence for document key envelopes.
//
// Envelopes are written once at encryption time. The only mutation is the
// wrapping swap performed during key rotation, which is guarded by a
// compare-and-swap on the current wrapping key id so concurrent migrations
// of the same envelope cannot double-apply.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
)

// PostgreSQLDocumentKeyRepository implements envelope persistence for PostgreSQL.
type PostgreSQLDocumentKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLDocumentKeyRepository creates a new PostgreSQL document key repository.
func NewPostgreSQLDocumentKeyRepository(db *sql.DB) *PostgreSQLDocumentKeyRepository {
	return &PostgreSQLDocumentKeyRepository{db: db}
}

// Create inserts a new document key envelope.
func (p *PostgreSQLDocumentKeyRepository) Create(ctx context.Context, env *domain.DocumentKeyEnvelope) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO document_keys (id, document_id, version_id, algorithm, wrapped_dek, nonce,
				auth_tag, wrapping_key_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		env.ID,
		env.DocumentID,
		env.VersionID,
		env.Algorithm,
		env.WrappedDek,
		env.Nonce,
		env.AuthTag,
		env.WrappingKeyID,
		env.CreatedAt,
	)
	return database.WrapStoreError(err, "failed to create document key envelope")
}

// GetByID returns an envelope by id.
func (p *PostgreSQLDocumentKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentKeyEnvelope, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectDocumentKeyPG + ` WHERE id = $1`

	env, err := scanDocumentKey(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEnvelopeNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get document key envelope")
	}
	return env, nil
}

// GetByDocumentVersion returns the envelope for one document version.
func (p *PostgreSQLDocumentKeyRepository) GetByDocumentVersion(ctx context.Context, documentID, versionID uuid.UUID) (*domain.DocumentKeyEnvelope, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectDocumentKeyPG + ` WHERE document_id = $1 AND version_id = $2`

	env, err := scanDocumentKey(querier.QueryRowContext(ctx, query, documentID, versionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEnvelopeNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get document key envelope")
	}
	return env, nil
}

// ListBatchByWrappingKey returns up to limit envelopes wrapped by the given
// key, ordered by id, starting strictly after afterID. Passing uuid.Nil as
// the cursor starts from the beginning. The stable ordering lets the rotation
// engine resume a migration from the last processed envelope.
func (p *PostgreSQLDocumentKeyRepository) ListBatchByWrappingKey(
	ctx context.Context, wrappingKeyID, afterID uuid.UUID, limit int,
) ([]*domain.DocumentKeyEnvelope, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectDocumentKeyPG + ` WHERE wrapping_key_id = $1 AND id > $2 ORDER BY id LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, wrappingKeyID, afterID, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list document key envelopes")
	}
	defer rows.Close()

	var envelopes []*domain.DocumentKeyEnvelope
	for rows.Next() {
		env, err := scanDocumentKey(rows)
		if err != nil {
			return nil, database.WrapStoreError(err, "failed to scan document key envelope")
		}
		envelopes = append(envelopes, env)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapStoreError(err, "failed to list document key envelopes")
	}
	return envelopes, nil
}

// UpdateWrapping swaps the envelope's wrapping fields, conditioned on the
// envelope still being wrapped by fromKeyID. Returns false without error when
// the condition no longer holds, which means another worker already migrated
// this envelope.
func (p *PostgreSQLDocumentKeyRepository) UpdateWrapping(
	ctx context.Context, env *domain.DocumentKeyEnvelope, fromKeyID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE document_keys
			  SET wrapping_key_id = $1,
				  wrapped_dek = $2,
				  nonce = $3,
				  auth_tag = $4
			  WHERE id = $5 AND wrapping_key_id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		env.WrappingKeyID,
		env.WrappedDek,
		env.Nonce,
		env.AuthTag,
		env.ID,
		fromKeyID,
	)
	if err != nil {
		return false, database.WrapStoreError(err, "failed to update document key wrapping")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, database.WrapStoreError(err, "failed to update document key wrapping")
	}
	return rows == 1, nil
}

// CountByWrappingKey returns the number of envelopes wrapped by the given key.
func (p *PostgreSQLDocumentKeyRepository) CountByWrappingKey(ctx context.Context, wrappingKeyID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM document_keys WHERE wrapping_key_id = $1`

	var count int
	if err := querier.QueryRowContext(ctx, query, wrappingKeyID).Scan(&count); err != nil {
		return 0, database.WrapStoreError(err, "failed to count document key envelopes")
	}
	return count, nil
}

const selectDocumentKeyPG = `SELECT id, document_id, version_id, algorithm, wrapped_dek, nonce,
	auth_tag, wrapping_key_id, created_at
	FROM document_keys`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentKey(row rowScanner) (*domain.DocumentKeyEnvelope, error) {
	var env domain.DocumentKeyEnvelope
	err := row.Scan(
		&env.ID,
		&env.DocumentID,
		&env.VersionID,
		&env.Algorithm,
		&env.WrappedDek,
		&env.Nonce,
		&env.AuthTag,
		&env.WrappingKeyID,
		&env.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// MySQLDocumentKeyRepository implements envelope persistence for MySQL.
// Uses BINARY(16) for UUIDs; the bytewise ordering of BINARY(16) keeps the
// id cursor stable, same as the PostgreSQL UUID ordering.
type MySQLDocumentKeyRepository struct {
	db *sql.DB
}

// NewMySQLDocumentKeyRepository creates a new MySQL document key repository.
func NewMySQLDocumentKeyRepository(db *sql.DB) *MySQLDocumentKeyRepository {
	return &MySQLDocumentKeyRepository{db: db}
}

// Create inserts a new document key envelope.
func (m *MySQLDocumentKeyRepository) Create(ctx context.Context, env *domain.DocumentKeyEnvelope) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO document_keys (id, document_id, version_id, algorithm, wrapped_dek, nonce,
				auth_tag, wrapping_key_id, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := env.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal envelope id")
	}
	documentID, err := env.DocumentID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal document id")
	}
	versionID, err := env.VersionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal version id")
	}
	wrappingKeyID, err := env.WrappingKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal wrapping key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		documentID,
		versionID,
		env.Algorithm,
		env.WrappedDek,
		env.Nonce,
		env.AuthTag,
		wrappingKeyID,
		env.CreatedAt,
	)
	return database.WrapStoreError(err, "failed to create document key envelope")
}

// GetByID returns an envelope by id.
func (m *MySQLDocumentKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentKeyEnvelope, error) {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal envelope id")
	}

	query := selectDocumentKeyMySQL + ` WHERE id = ?`

	env, err := scanDocumentKey(querier.QueryRowContext(ctx, query, rawID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEnvelopeNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get document key envelope")
	}
	return env, nil
}

// GetByDocumentVersion returns the envelope for one document version.
func (m *MySQLDocumentKeyRepository) GetByDocumentVersion(ctx context.Context, documentID, versionID uuid.UUID) (*domain.DocumentKeyEnvelope, error) {
	querier := database.GetTx(ctx, m.db)

	rawDocumentID, err := documentID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal document id")
	}
	rawVersionID, err := versionID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal version id")
	}

	query := selectDocumentKeyMySQL + ` WHERE document_id = ? AND version_id = ?`

	env, err := scanDocumentKey(querier.QueryRowContext(ctx, query, rawDocumentID, rawVersionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEnvelopeNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get document key envelope")
	}
	return env, nil
}

// ListBatchByWrappingKey returns up to limit envelopes wrapped by the given
// key, ordered by id, starting strictly after afterID.
func (m *MySQLDocumentKeyRepository) ListBatchByWrappingKey(
	ctx context.Context, wrappingKeyID, afterID uuid.UUID, limit int,
) ([]*domain.DocumentKeyEnvelope, error) {
	querier := database.GetTx(ctx, m.db)

	rawWrappingKeyID, err := wrappingKeyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal wrapping key id")
	}
	rawAfterID, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cursor id")
	}

	query := selectDocumentKeyMySQL + ` WHERE wrapping_key_id = ? AND id > ? ORDER BY id LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, rawWrappingKeyID, rawAfterID, limit)
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
// envelope still being wrapped by fromKeyID.
func (m *MySQLDocumentKeyRepository) UpdateWrapping(
	ctx context.Context, env *domain.DocumentKeyEnvelope, fromKeyID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := env.ID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal envelope id")
	}
	wrappingKeyID, err := env.WrappingKeyID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal wrapping key id")
	}
	rawFromKeyID, err := fromKeyID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal source key id")
	}

	query := `UPDATE document_keys
			  SET wrapping_key_id = ?,
				  wrapped_dek = ?,
				  nonce = ?,
				  auth_tag = ?
			  WHERE id = ? AND wrapping_key_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		wrappingKeyID,
		env.WrappedDek,
		env.Nonce,
		env.AuthTag,
		id,
		rawFromKeyID,
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
func (m *MySQLDocumentKeyRepository) CountByWrappingKey(ctx context.Context, wrappingKeyID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, m.db)

	rawWrappingKeyID, err := wrappingKeyID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal wrapping key id")
	}

	query := `SELECT COUNT(*) FROM document_keys WHERE wrapping_key_id = ?`

	var count int
	if err := querier.QueryRowContext(ctx, query, rawWrappingKeyID).Scan(&count); err != nil {
		return 0, database.WrapStoreError(err, "failed to count document key envelopes")
	}
	return count, nil
}

const selectDocumentKeyMySQL = `SELECT id, document_id, version_id, algorithm, wrapped_dek, nonce,
	auth_tag, wrapping_key_id, created_at
	FROM document_keys`

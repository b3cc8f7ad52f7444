package postgres

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"ferreteria/internal/domain/audit"
)

const auditTable = "sys_audit"

// Compile-time check that AuditRepo implements audit.Repository.
var _ audit.Repository = (*AuditRepo)(nil)

// AuditRepo persists audit records. Change payloads above the threshold are
// stored zstd-compressed.
type AuditRepo struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditRepo creates a new audit repository.
func NewAuditRepo(txManager *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Append inserts one audit row through the caller's transactional handle,
// so a rollback of the owning unit of work discards it too.
func (r *AuditRepo) Append(ctx context.Context, rec audit.Record) error {
	changes := rec.Changes
	var compressed []byte
	algo := "none"

	if len(changes) > r.compressThreshold {
		compressed = r.encoder.EncodeAll(changes, nil)
		changes = nil
		algo = "zstd"
	}

	sql := `
		INSERT INTO sys_audit (
			id, table_name, action, record_id, actor,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		rec.ID, rec.TableName, rec.Action, rec.RecordID, rec.Actor,
		changes, compressed, algo, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}

// History retrieves audit entries for one record, newest first.
func (r *AuditRepo) History(ctx context.Context, tableName, recordID string, limit int) ([]audit.Record, error) {
	sql := `
		SELECT id, table_name, action, record_id, actor,
			   changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE table_name = $1 AND record_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, tableName, recordID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var rec audit.Record
		var compressed []byte
		var algo string

		err := rows.Scan(
			&rec.ID, &rec.TableName, &rec.Action, &rec.RecordID, &rec.Actor,
			&rec.Changes, &compressed, &algo, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		if algo == "zstd" && len(compressed) > 0 {
			decompressed, err := r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit changes: %w", err)
			}
			rec.Changes = decompressed
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

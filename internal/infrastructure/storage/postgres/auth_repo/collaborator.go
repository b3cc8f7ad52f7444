// Package auth_repo provides the PostgreSQL collaborator repository.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/domain/auth"
	"ferreteria/internal/infrastructure/storage/postgres"
)

const collaboratorsTable = "collaborators"

// CollaboratorRepo implements auth.Repository.
type CollaboratorRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

var _ auth.Repository = (*CollaboratorRepo)(nil)

func NewCollaboratorRepo(txManager *postgres.TxManager) *CollaboratorRepo {
	return &CollaboratorRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[auth.Collaborator](),
	}
}

func (r *CollaboratorRepo) get(ctx context.Context, pred any, args ...any) (*auth.Collaborator, error) {
	q := r.builder.
		Select(r.selectCols...).
		From(collaboratorsTable).
		Where(pred, args...).
		Limit(1)

	sql, qargs, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var collab auth.Collaborator
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &collab, sql, qargs...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("collaborator", pred)
		}
		return nil, fmt.Errorf("get collaborator: %w", err)
	}

	return &collab, nil
}

func (r *CollaboratorRepo) GetByUsername(ctx context.Context, username string) (*auth.Collaborator, error) {
	return r.get(ctx, squirrel.Eq{"username": username})
}

func (r *CollaboratorRepo) GetByID(ctx context.Context, collaboratorID id.ID) (*auth.Collaborator, error) {
	return r.get(ctx, squirrel.Eq{"id": collaboratorID})
}

func (r *CollaboratorRepo) Create(ctx context.Context, c *auth.Collaborator) error {
	q := r.builder.
		Insert(collaboratorsTable).
		SetMap(postgres.StructToMap(c))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("collaborator", "username", c.Username)
		}
		return fmt.Errorf("insert collaborator: %w", err)
	}

	return nil
}

// RecordLogin stamps last_login_at. Intentionally skips the version bump:
// logins are bookkeeping, not edits.
func (r *CollaboratorRepo) RecordLogin(ctx context.Context, collaboratorID id.ID, at time.Time) error {
	q := r.builder.
		Update(collaboratorsTable).
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": collaboratorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	return nil
}

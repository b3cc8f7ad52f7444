package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	appctx "ferreteria/internal/core/context"
	"ferreteria/internal/core/id"
)

type mockAuditRepo struct {
	appended []Record
	fail     bool
}

func (m *mockAuditRepo) Append(ctx context.Context, rec Record) error {
	if m.fail {
		return errors.New("audit table unavailable")
	}
	m.appended = append(m.appended, rec)
	return nil
}

func (m *mockAuditRepo) History(ctx context.Context, tableName, recordID string, limit int) ([]Record, error) {
	return m.appended, nil
}

func TestAppender_LogRecordsActorFromContext(t *testing.T) {
	repo := &mockAuditRepo{}
	appender := NewAppender(repo)

	ctx := appctx.WithActor(context.Background(), &appctx.Actor{ID: "collab-7", Username: "maria"})
	recordID := id.New()

	appender.Log(ctx, "sales", ActionInsert, recordID)

	assert.Len(t, repo.appended, 1)
	rec := repo.appended[0]
	assert.Equal(t, "sales", rec.TableName)
	assert.Equal(t, ActionInsert, rec.Action)
	assert.Equal(t, recordID.String(), rec.RecordID)
	assert.Equal(t, "collab-7", rec.Actor)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestAppender_LogDefaultsToSystemActor(t *testing.T) {
	repo := &mockAuditRepo{}
	appender := NewAppender(repo)

	appender.Log(context.Background(), "products", ActionUpdate, id.New())

	assert.Len(t, repo.appended, 1)
	assert.Equal(t, appctx.SystemActor, repo.appended[0].Actor)
}

func TestAppender_AppendFailureIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{fail: true}
	appender := NewAppender(repo)

	// Must not panic and must not propagate: Log has no error return at all.
	appender.Log(context.Background(), "sales", ActionInsert, id.New())
	assert.Empty(t, repo.appended)
}

func TestAppender_LogChangesCarriesPayload(t *testing.T) {
	repo := &mockAuditRepo{}
	appender := NewAppender(repo)

	appender.LogChanges(context.Background(), "products", ActionUpdate, id.New(), map[string]any{
		"stock": map[string]any{"old": 10, "new": 5},
	})

	assert.Len(t, repo.appended, 1)
	assert.JSONEq(t, `{"stock":{"old":10,"new":5}}`, string(repo.appended[0].Changes))
}

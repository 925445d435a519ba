package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credlane/bastion/id"
)

// PGRecorder writes audit events directly into a Postgres table via a
// pgx pool. It is intended for deployments that keep the audit trail in a
// dedicated database separate from the primary store.
type PGRecorder struct {
	pool  *pgxpool.Pool
	table string
}

var _ Recorder = (*PGRecorder)(nil)

// NewPGRecorder returns a recorder writing into the given table. An empty
// table name defaults to "bastion_audit_events".
func NewPGRecorder(pool *pgxpool.Pool, table string) *PGRecorder {
	if table == "" {
		table = "bastion_audit_events"
	}
	return &PGRecorder{pool: pool, table: table}
}

// Record persists the event.
func (r *PGRecorder) Record(ctx context.Context, e *Event) error {
	if r == nil || r.pool == nil {
		return errors.New("audit recorder not initialised")
	}
	if e.Action == "" {
		return errors.New("audit event requires an action")
	}
	if e.ID.IsNil() {
		e.ID = id.NewAuditEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO `+r.table+` (id, tenant_id, app_id, action, actor_id, target_user_id, permission, decision, reason, eval_time_ns, request_ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID.String(), e.TenantID, e.AppID, e.Action, e.ActorID, e.TargetUserID,
		e.Permission, e.Decision, e.Reason, e.EvalTimeNs, e.RequestIP, metaJSON, e.CreatedAt)
	return err
}

// StoreRecorder adapts a Store into a Recorder.
type StoreRecorder struct {
	store Store
}

var _ Recorder = (*StoreRecorder)(nil)

// NewStoreRecorder returns a recorder backed by the given store.
func NewStoreRecorder(store Store) *StoreRecorder {
	return &StoreRecorder{store: store}
}

// Record persists the event through the store.
func (r *StoreRecorder) Record(ctx context.Context, e *Event) error {
	if e.ID.IsNil() {
		e.ID = id.NewAuditEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return r.store.CreateAuditEvent(ctx, e)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outreach_backend/internal/funnel/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadColumns = `
	id, organization_id, first_name, last_name, email, phone, source, status,
	email_sent_1, dm_li_sent_1, dm_fb_sent_1, dm_ig_sent_1, call_done,
	email_sent_2, dm_sent_2, wa_voice_sent,
	replied_at_utc, qualified, next_action_due_utc, last_action_utc,
	notes, version, created_at, updated_at`

// flagColumns whitelists the one-shot flag columns. SetFlag interpolates the
// column name into SQL, so it must never come from input directly.
var flagColumns = map[domain.Flag]string{
	domain.FlagEmailSent1:  "email_sent_1",
	domain.FlagDmLiSent1:   "dm_li_sent_1",
	domain.FlagDmFbSent1:   "dm_fb_sent_1",
	domain.FlagDmIgSent1:   "dm_ig_sent_1",
	domain.FlagCallDone:    "call_done",
	domain.FlagEmailSent2:  "email_sent_2",
	domain.FlagDmSent2:     "dm_sent_2",
	domain.FlagWaVoiceSent: "wa_voice_sent",
}

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.OrganizationID, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
		&l.Source, &l.Status,
		&l.EmailSent1, &l.DmLiSent1, &l.DmFbSent1, &l.DmIgSent1, &l.CallDone,
		&l.EmailSent2, &l.DmSent2, &l.WaVoiceSent,
		&l.RepliedAtUtc, &l.Qualified, &l.NextActionDueUtc, &l.LastActionUtc,
		&l.Notes, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("scan lead: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	query := `
		INSERT INTO leads (organization_id, first_name, last_name, email, phone, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + leadColumns

	row := s.pool.QueryRow(ctx, query,
		params.OrganizationID, params.FirstName, params.LastName,
		params.Email, params.Phone, params.Source,
	)
	return scanLead(row)
}

func (s *PostgresStore) GetLead(ctx context.Context, id, organizationID uuid.UUID) (Lead, error) {
	query := `SELECT` + leadColumns + `
		FROM leads
		WHERE id = $1 AND organization_id = $2`

	return scanLead(s.pool.QueryRow(ctx, query, id, organizationID))
}

func (s *PostgresStore) ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, error) {
	query := `SELECT` + leadColumns + `
		FROM leads
		WHERE organization_id = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3`

	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var status *string
	if params.Status != nil {
		v := string(*params.Status)
		status = &v
	}

	rows, err := s.pool.Query(ctx, query, params.OrganizationID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *PostgresStore) ListAudit(ctx context.Context, leadID, organizationID uuid.UUID) ([]AuditEntry, error) {
	query := `
		SELECT id, lead_id, organization_id, actor, source, action, flag,
		       before_status, after_status, created_at
		FROM lead_status_audit
		WHERE lead_id = $1 AND organization_id = $2
		ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, leadID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		var e AuditEntry
		var action, flag *string
		if err := rows.Scan(
			&e.ID, &e.LeadID, &e.OrganizationID, &e.Actor, &e.Source,
			&action, &flag, &e.BeforeStatus, &e.AfterStatus, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if action != nil {
			a := domain.Action(*action)
			e.Action = &a
		}
		if flag != nil {
			f := domain.Flag(*flag)
			e.Flag = &f
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) ListDueLeads(ctx context.Context, statuses []domain.Status, now time.Time, limit int) ([]Lead, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query := `SELECT` + leadColumns + `
		FROM leads
		WHERE status = ANY($1)
		  AND next_action_due_utc IS NOT NULL
		  AND next_action_due_utc <= $2
		ORDER BY next_action_due_utc ASC
		LIMIT $3`

	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}

	rows, err := s.pool.Query(ctx, query, names, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(TxStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txStore is the TxStore bound to one pgx transaction.
type txStore struct {
	tx pgx.Tx
}

func (t *txStore) GetLeadForUpdate(ctx context.Context, id, organizationID uuid.UUID) (Lead, error) {
	query := `SELECT` + leadColumns + `
		FROM leads
		WHERE id = $1 AND organization_id = $2
		FOR UPDATE`

	return scanLead(t.tx.QueryRow(ctx, query, id, organizationID))
}

func (t *txStore) SetFlag(ctx context.Context, id, organizationID uuid.UUID, flag domain.Flag) error {
	column, ok := flagColumns[flag]
	if !ok {
		return fmt.Errorf("unknown flag column for %q", flag)
	}
	query := fmt.Sprintf(`
		UPDATE leads SET %s = TRUE, updated_at = now()
		WHERE id = $1 AND organization_id = $2`, column)

	tag, err := t.tx.Exec(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("set flag %s: %w", flag, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txStore) SetReplied(ctx context.Context, id, organizationID uuid.UUID, at time.Time) error {
	query := `
		UPDATE leads SET replied_at_utc = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND replied_at_utc IS NULL`

	tag, err := t.tx.Exec(ctx, query, id, organizationID, at)
	if err != nil {
		return fmt.Errorf("set replied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txStore) SetQualified(ctx context.Context, id, organizationID uuid.UUID) error {
	query := `
		UPDATE leads SET qualified = TRUE, updated_at = now()
		WHERE id = $1 AND organization_id = $2`

	tag, err := t.tx.Exec(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("set qualified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txStore) AppendNote(ctx context.Context, id, organizationID uuid.UUID, note string) error {
	query := `
		UPDATE leads
		SET notes = CASE WHEN notes = '' THEN $3 ELSE notes || E'\n' || $3 END,
		    updated_at = now()
		WHERE id = $1 AND organization_id = $2`

	tag, err := t.tx.Exec(ctx, query, id, organizationID, note)
	if err != nil {
		return fmt.Errorf("append note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txStore) UpdateStatus(ctx context.Context, params UpdateStatusParams) (Lead, error) {
	query := `
		UPDATE leads
		SET status = $4,
		    next_action_due_utc = $5,
		    last_action_utc = CASE WHEN $6 THEN now() ELSE last_action_utc END,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND version = $3
		RETURNING` + leadColumns

	lead, err := scanLead(t.tx.QueryRow(ctx, query,
		params.LeadID, params.OrganizationID, params.ExpectedVersion,
		string(params.Status), params.NextActionDueUtc, params.TouchLastAction,
	))
	if errors.Is(err, ErrNotFound) {
		// Row exists but version moved, or the lead is gone. Distinguish so
		// the caller can retry only the former.
		var exists bool
		checkErr := t.tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1 AND organization_id = $2)`,
			params.LeadID, params.OrganizationID,
		).Scan(&exists)
		if checkErr != nil {
			return Lead{}, fmt.Errorf("check lead existence: %w", checkErr)
		}
		if exists {
			return Lead{}, ErrVersionConflict
		}
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (t *txStore) InsertAudit(ctx context.Context, entry AuditEntry) error {
	query := `
		INSERT INTO lead_status_audit
			(lead_id, organization_id, actor, source, action, flag, before_status, after_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var action, flag *string
	if entry.Action != nil {
		v := string(*entry.Action)
		action = &v
	}
	if entry.Flag != nil {
		v := string(*entry.Flag)
		flag = &v
	}

	_, err := t.tx.Exec(ctx, query,
		entry.LeadID, entry.OrganizationID, entry.Actor, entry.Source,
		action, flag, string(entry.BeforeStatus), string(entry.AfterStatus),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lead-intake/internal/common/logger"
)

const PrimaryStoreName = "primary-store"

var ErrPrimaryStore = errors.New("PRIMARY_STORE_FAILED")

// PostgresStore persists leads to the leads table. It is the primary sink.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
	newID  func() string
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"sink": PrimaryStoreName}),
		newID:  func() string { return uuid.New().String() },
	}
}

func (s *PostgresStore) Name() string { return PrimaryStoreName }

func (s *PostgresStore) Configured() bool { return s.db != nil }

// Upsert inserts the lead and returns the generated record id. Every submission
// is its own row, so there is no duplicate case to normalize here.
func (s *PostgresStore) Upsert(ctx context.Context, lead *Submission) (string, error) {
	id := s.newID()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (
			id, first_name, last_name, email, phone, question, company,
			marketing_consent, communication_consent, source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id,
		lead.FirstName,
		nullable(lead.LastName),
		lead.Email,
		nullable(lead.Phone),
		nullable(lead.Question),
		nullable(lead.Company),
		lead.MarketingConsent,
		lead.CommunicationConsent,
		lead.Source,
		lead.SubmittedAt,
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert failed: %v", ErrPrimaryStore, err)
	}

	// audit trail is best effort
	details, err := json.Marshal(map[string]interface{}{
		"email":  lead.Email,
		"source": lead.Source,
	})
	if err != nil {
		details = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"lead_created",
		"lead",
		id,
		details,
		lead.SubmittedAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":  err,
			"leadId": id,
		})
	}

	s.logger.Info("lead stored", map[string]interface{}{
		"leadId": id,
		"source": lead.Source,
	})
	return id, nil
}

// Check pings the database.
func (s *PostgresStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

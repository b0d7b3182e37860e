package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"civicreports/internal/models"
)

type moderatorStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewModeratorStore creates a Postgres-backed ModeratorStore.
func NewModeratorStore(db *sqlx.DB, logger *zap.Logger) ModeratorStore {
	return &moderatorStore{db: db, logger: logger}
}

func (s *moderatorStore) UpsertModerator(m *models.Moderator) error {
	query := `
		INSERT INTO moderators (identifier, name, email, role, active, password_hash, created_at, last_activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (identifier)
		DO UPDATE SET name = EXCLUDED.name,
		              email = EXCLUDED.email,
		              role = EXCLUDED.role,
		              active = EXCLUDED.active,
		              password_hash = EXCLUDED.password_hash
	`
	_, err := s.db.Exec(query, m.Identifier, m.Name, m.Email, m.Role, m.Active,
		m.PasswordHash, m.CreatedAt, m.LastActivity)
	if err != nil {
		s.logger.Error("Failed to upsert moderator",
			zap.String("identifier", m.Identifier),
			zap.Error(err))
	}
	return err
}

func (s *moderatorStore) GetModerator(identifier string) (*models.Moderator, error) {
	moderator := &models.Moderator{}
	query := `
		SELECT identifier, name, email, role, active, password_hash, created_at, last_activity
		FROM moderators
		WHERE identifier = $1
	`
	err := s.db.Get(moderator, query, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return moderator, nil
}

func (s *moderatorStore) ListModerators() ([]*models.Moderator, error) {
	var moderators []*models.Moderator
	query := `
		SELECT identifier, name, email, role, active, password_hash, created_at, last_activity
		FROM moderators
		ORDER BY created_at ASC
	`
	if err := s.db.Select(&moderators, query); err != nil {
		return nil, err
	}
	return moderators, nil
}

func (s *moderatorStore) TouchActivity(identifier string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE moderators SET last_activity = $1 WHERE identifier = $2`, at, identifier)
	return err
}

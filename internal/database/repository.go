package database

import (
	"strings"
	"time"

	"github.com/wasteday/wasteday/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRow struct {
	ID              string `gorm:"column:id;primaryKey"`
	StartTime       string `gorm:"column:start_time"`
	DurationSeconds int64  `gorm:"column:duration_seconds"`
	SessionKey      string `gorm:"column:session_key"`
	CreatedAt       string `gorm:"column:created_at"`
	UpdatedAt       string `gorm:"column:updated_at"`
}

func (sessionRow) TableName() string { return "sessions" }

type ruleRow struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Type       string `gorm:"column:type"`
	Identifier string `gorm:"column:identifier"`
	Label      string `gorm:"column:label"`
	IsActive   bool   `gorm:"column:is_active"`
	CreatedAt  string `gorm:"column:created_at"`
	UpdatedAt  string `gorm:"column:updated_at"`
}

func (ruleRow) TableName() string { return "classification_rules" }

type settingRow struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value"`
	UpdatedAt string `gorm:"column:updated_at"`
}

func (settingRow) TableName() string { return "settings" }

// locked runs fn while holding the connection lock.
func (s *Store) locked(op string, fn func() error) error {
	if err := s.lock.acquire(op); err != nil {
		return err
	}
	defer s.lock.release()
	return fn()
}

// UpsertSession inserts the session, or replaces start_time,
// duration_seconds and session_key of the row with the same ID and bumps its
// updated_at.
func (s *Store) UpsertSession(session models.Session) error {
	const op = "UpsertSession"

	if strings.TrimSpace(session.ID) == "" {
		return invalidf(op, "session id is required")
	}
	if session.StartTime.IsZero() {
		return invalidf(op, "session %s: start time is required", session.ID)
	}
	if !storable(session.StartTime) {
		return invalidf(op, "session %s: start time %s is out of range", session.ID, session.StartTime)
	}
	if session.DurationSeconds < 0 {
		return invalidf(op, "session %s: duration %d is negative", session.ID, session.DurationSeconds)
	}
	if strings.TrimSpace(session.SessionKey) == "" {
		return invalidf(op, "session %s: session key is required", session.ID)
	}

	return s.locked(op, func() error {
		now := s.timestamp()
		row := sessionRow{
			ID:              session.ID,
			StartTime:       formatTime(session.StartTime),
			DurationSeconds: session.DurationSeconds,
			SessionKey:      session.SessionKey,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		result := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_time", "duration_seconds", "session_key", "updated_at"}),
		}).Create(&row)
		if result.Error != nil {
			return newError(OperationFailure, op, errors.Wrap(result.Error, "failed to upsert session"))
		}
		return nil
	})
}

// QuerySessions returns sessions with since <= start_time < until, ascending
// by start time. Nil bounds are open.
func (s *Store) QuerySessions(since, until *time.Time) ([]models.Session, error) {
	const op = "QuerySessions"

	var rows []sessionRow
	err := s.locked(op, func() error {
		tx := s.db.Model(&sessionRow{})
		if since != nil {
			tx = tx.Where("start_time >= ?", formatBound(*since))
		}
		if until != nil {
			tx = tx.Where("start_time < ?", formatBound(*until))
		}

		if err := tx.Order("start_time ASC").Order("id ASC").Find(&rows).Error; err != nil {
			return newError(OperationFailure, op, errors.Wrap(err, "failed to query sessions"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessions := make([]models.Session, 0, len(rows))
	for _, row := range rows {
		session, err := row.toModel()
		if err != nil {
			return nil, newError(OperationFailure, op, err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// DeleteSession removes the session with the given ID. A missing ID is not
// an error.
func (s *Store) DeleteSession(id string) error {
	const op = "DeleteSession"

	return s.locked(op, func() error {
		if err := s.db.Where("id = ?", id).Delete(&sessionRow{}).Error; err != nil {
			return newError(OperationFailure, op, errors.Wrap(err, "failed to delete session"))
		}
		return nil
	})
}

// DeleteSessionsBefore removes sessions starting before the given time and
// returns how many were removed.
func (s *Store) DeleteSessionsBefore(before time.Time) (int64, error) {
	const op = "DeleteSessionsBefore"

	var deleted int64
	err := s.locked(op, func() error {
		result := s.db.Where("start_time < ?", formatBound(before)).Delete(&sessionRow{})
		if result.Error != nil {
			return newError(OperationFailure, op, errors.Wrap(result.Error, "failed to delete old sessions"))
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// ListClassificationRules returns every rule, active or not, ordered by type
// then identifier.
func (s *Store) ListClassificationRules() ([]models.ClassificationRule, error) {
	const op = "ListClassificationRules"

	var rows []ruleRow
	err := s.locked(op, func() error {
		if err := s.db.Order("type ASC").Order("identifier ASC").Find(&rows).Error; err != nil {
			return newError(OperationFailure, op, errors.Wrap(err, "failed to list classification rules"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rules := make([]models.ClassificationRule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toModel()
		if err != nil {
			return nil, newError(OperationFailure, op, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// UpsertClassificationRule inserts the rule or, when (type, identifier)
// already exists, replaces its label and active flag. rule.ID is ignored.
func (s *Store) UpsertClassificationRule(rule models.ClassificationRule) error {
	const op = "UpsertClassificationRule"

	if strings.TrimSpace(rule.Type) == "" {
		return invalidf(op, "rule type is required")
	}
	if strings.TrimSpace(rule.Identifier) == "" {
		return invalidf(op, "rule identifier is required")
	}
	if !rule.Label.Valid() {
		return invalidf(op, "rule label %q must be %q or %q", rule.Label, models.LabelWaste, models.LabelProductive)
	}

	return s.locked(op, func() error {
		now := s.timestamp()
		row := ruleRow{
			Type:       rule.Type,
			Identifier: rule.Identifier,
			Label:      string(rule.Label),
			IsActive:   rule.IsActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		result := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}, {Name: "identifier"}},
			DoUpdates: clause.AssignmentColumns([]string{"label", "is_active", "updated_at"}),
		}).Create(&row)
		if result.Error != nil {
			return newError(OperationFailure, op, errors.Wrap(result.Error, "failed to upsert classification rule"))
		}
		return nil
	})
}

// DeleteClassificationRule removes the rule with the given ID. A missing ID
// is not an error.
func (s *Store) DeleteClassificationRule(id int64) error {
	const op = "DeleteClassificationRule"

	return s.locked(op, func() error {
		if err := s.db.Where("id = ?", id).Delete(&ruleRow{}).Error; err != nil {
			return newError(OperationFailure, op, errors.Wrap(err, "failed to delete classification rule"))
		}
		return nil
	})
}

// GetSetting returns the value stored under key and whether it exists.
func (s *Store) GetSetting(key string) (string, bool, error) {
	const op = "GetSetting"

	var (
		row   settingRow
		found bool
	)
	err := s.locked(op, func() error {
		err := s.db.Where("key = ?", key).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return newError(OperationFailure, op, errors.Wrap(err, "failed to get setting"))
		}
		found = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return row.Value, found, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	const op = "SetSetting"

	if strings.TrimSpace(key) == "" {
		return invalidf(op, "setting key is required")
	}

	return s.locked(op, func() error {
		row := settingRow{Key: key, Value: value, UpdatedAt: s.timestamp()}
		result := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&row)
		if result.Error != nil {
			return newError(OperationFailure, op, errors.Wrap(result.Error, "failed to set setting"))
		}
		return nil
	})
}

// ClaimSetting stores value under key only if key is absent and reports
// whether it did. The count and the insert happen under one lock hold; the
// insert also ignores conflicts from other processes sharing the file.
func (s *Store) ClaimSetting(key, value string) (bool, error) {
	const op = "ClaimSetting"

	if strings.TrimSpace(key) == "" {
		return false, invalidf(op, "setting key is required")
	}

	var claimed bool
	err := s.locked(op, func() error {
		var count int64
		if err := s.db.Model(&settingRow{}).Where("key = ?", key).Count(&count).Error; err != nil {
			return newError(OperationFailure, op, errors.Wrap(err, "failed to count setting"))
		}
		if count > 0 {
			return nil
		}

		row := settingRow{Key: key, Value: value, UpdatedAt: s.timestamp()}
		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return newError(OperationFailure, op, errors.Wrap(result.Error, "failed to claim setting"))
		}
		claimed = result.RowsAffected == 1
		return nil
	})
	return claimed, err
}

// ListSettings returns all settings ordered by key.
func (s *Store) ListSettings() ([]models.Setting, error) {
	const op = "ListSettings"

	var rows []settingRow
	err := s.locked(op, func() error {
		if err := s.db.Order("key ASC").Find(&rows).Error; err != nil {
			return newError(OperationFailure, op, errors.Wrap(err, "failed to list settings"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	settings := make([]models.Setting, 0, len(rows))
	for _, row := range rows {
		updatedAt, err := parseTime(row.UpdatedAt)
		if err != nil {
			return nil, newError(OperationFailure, op, err)
		}
		settings = append(settings, models.Setting{Key: row.Key, Value: row.Value, UpdatedAt: updatedAt})
	}
	return settings, nil
}

func (r sessionRow) toModel() (models.Session, error) {
	startTime, err := parseTime(r.StartTime)
	if err != nil {
		return models.Session{}, err
	}
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.Session{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{
		ID:              r.ID,
		StartTime:       startTime,
		DurationSeconds: r.DurationSeconds,
		SessionKey:      r.SessionKey,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

func (r ruleRow) toModel() (models.ClassificationRule, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.ClassificationRule{}, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return models.ClassificationRule{}, err
	}
	return models.ClassificationRule{
		ID:         r.ID,
		Type:       r.Type,
		Identifier: r.Identifier,
		Label:      models.Label(r.Label),
		IsActive:   r.IsActive,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

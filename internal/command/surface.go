// Package command is the in-process surface a UI shell calls into. The HTTP
// handlers and the CLI are thin adapters over it.
package command

import (
	"time"

	"github.com/wasteday/wasteday/internal/bootstrap"
	"github.com/wasteday/wasteday/internal/models"
	"github.com/wasteday/wasteday/pkg/window"
)

// Store is the persistence the surface needs. *database.Store implements it.
type Store interface {
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
	ListSettings() ([]models.Setting, error)
	UpsertSession(session models.Session) error
	QuerySessions(since, until *time.Time) ([]models.Session, error)
	DeleteSession(id string) error
	ListClassificationRules() ([]models.ClassificationRule, error)
	UpsertClassificationRule(rule models.ClassificationRule) error
	DeleteClassificationRule(id int64) error
}

// Probe samples the desktop. *window.Probe implements it.
type Probe interface {
	SampleForeground() window.Snapshot
	IdleSeconds() uint64
}

// Reporter builds activity reports. *reporter.Reporter implements it.
type Reporter interface {
	GenerateReport(periodType string) (*models.Report, error)
}

// Surface bundles the commands available to a shell. All methods are safe
// for concurrent use.
type Surface struct {
	store    Store
	probe    Probe
	reporter Reporter
	decision bootstrap.Decision
}

func NewSurface(store Store, probe Probe, reporter Reporter, decision bootstrap.Decision) *Surface {
	return &Surface{
		store:    store,
		probe:    probe,
		reporter: reporter,
		decision: decision,
	}
}

func (s *Surface) SampleForeground() window.Snapshot {
	return s.probe.SampleForeground()
}

func (s *Surface) IdleSeconds() uint64 {
	return s.probe.IdleSeconds()
}

func (s *Surface) GetSetting(key string) (string, bool, error) {
	return s.store.GetSetting(key)
}

func (s *Surface) SetSetting(key, value string) error {
	return s.store.SetSetting(key, value)
}

func (s *Surface) ListSettings() ([]models.Setting, error) {
	return s.store.ListSettings()
}

func (s *Surface) UpsertSession(session models.Session) error {
	return s.store.UpsertSession(session)
}

func (s *Surface) QuerySessions(since, until *time.Time) ([]models.Session, error) {
	return s.store.QuerySessions(since, until)
}

func (s *Surface) DeleteSession(id string) error {
	return s.store.DeleteSession(id)
}

func (s *Surface) ListClassificationRules() ([]models.ClassificationRule, error) {
	return s.store.ListClassificationRules()
}

func (s *Surface) UpsertClassificationRule(rule models.ClassificationRule) error {
	return s.store.UpsertClassificationRule(rule)
}

func (s *Surface) DeleteClassificationRule(id int64) error {
	return s.store.DeleteClassificationRule(id)
}

func (s *Surface) Report(periodType string) (*models.Report, error) {
	return s.reporter.GenerateReport(periodType)
}

// Launch returns the startup decision made for this process.
func (s *Surface) Launch() bootstrap.Decision {
	return s.decision
}

package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wasteday/wasteday/internal/models"
	"github.com/wasteday/wasteday/pkg/utils"
)

// Source is the slice of the store the reporter reads from.
type Source interface {
	QuerySessions(since, until *time.Time) ([]models.Session, error)
	ListClassificationRules() ([]models.ClassificationRule, error)
}

// Reporter handles report generation
type Reporter struct {
	source Source
	now    func() time.Time
}

// New creates a new reporter. now defaults to time.Now.
func New(source Source, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{
		source: source,
		now:    now,
	}
}

// GenerateReport totals session durations per session key for sessions
// starting in the given period, and labels each key from the active rules.
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := Period(periodType, r.now())
	if err != nil {
		return nil, err
	}

	sessions, err := r.source.QuerySessions(&period.Start, &period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	rules, err := r.source.ListClassificationRules()
	if err != nil {
		return nil, fmt.Errorf("failed to list classification rules: %w", err)
	}
	classify := newClassifier(rules)

	byKey := make(map[string]*models.KeySummary)
	var totalSeconds int64
	for _, s := range sessions {
		summary, ok := byKey[s.SessionKey]
		if !ok {
			summary = &models.KeySummary{
				SessionKey: s.SessionKey,
				Label:      classify(s.SessionKey),
			}
			byKey[s.SessionKey] = summary
		}
		summary.TotalSeconds += s.DurationSeconds
		summary.SessionCount++
		totalSeconds += s.DurationSeconds
	}

	keys := make([]models.KeySummary, 0, len(byKey))
	byLabel := map[models.Label]int64{
		models.LabelWaste:        0,
		models.LabelProductive:   0,
		models.LabelUnclassified: 0,
	}
	for _, summary := range byKey {
		summary.TotalMinutes = float64(summary.TotalSeconds) / 60.0
		summary.TotalHours = float64(summary.TotalSeconds) / 3600.0
		if totalSeconds > 0 {
			summary.Percentage = (float64(summary.TotalSeconds) / float64(totalSeconds)) * 100.0
		}
		byLabel[summary.Label] += summary.TotalSeconds
		keys = append(keys, *summary)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TotalSeconds != keys[j].TotalSeconds {
			return keys[i].TotalSeconds > keys[j].TotalSeconds
		}
		return keys[i].SessionKey < keys[j].SessionKey
	})

	return &models.Report{
		Period:       *period,
		Keys:         keys,
		ByLabel:      byLabel,
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:  r.now(),
	}, nil
}

// Period calculates the time range for a report in now's location.
func Period(periodType string, now time.Time) (*models.ReportPeriod, error) {
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// newClassifier matches a session key's category and identifier against the
// active rules. Identifiers compare case-insensitively since executable
// names on Windows are not case-sensitive.
func newClassifier(rules []models.ClassificationRule) func(string) models.Label {
	type ruleKey struct{ typ, identifier string }
	active := make(map[ruleKey]models.Label, len(rules))
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		active[ruleKey{rule.Type, strings.ToLower(rule.Identifier)}] = rule.Label
	}

	return func(sessionKey string) models.Label {
		parts, ok := models.ParseSessionKey(sessionKey)
		if !ok {
			return models.LabelUnclassified
		}
		if label, ok := active[ruleKey{parts.Category, strings.ToLower(parts.Identifier)}]; ok {
			return label
		}
		return models.LabelUnclassified
	}
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Activity Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total Time: %.2fh (%.0fm)\n", report.TotalHours, report.TotalMinutes)
	fmt.Fprintf(&b, "Waste: %s  Productive: %s  Unclassified: %s\n\n",
		utils.FormatRoundedUnit(report.ByLabel[models.LabelWaste]),
		utils.FormatRoundedUnit(report.ByLabel[models.LabelProductive]),
		utils.FormatRoundedUnit(report.ByLabel[models.LabelUnclassified]))

	if len(report.Keys) == 0 {
		b.WriteString("No activity recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-40s %-13s %8s %9s %8s\n", "Session Key", "Label", "Time", "Sessions", "Percent")
	b.WriteString(strings.Repeat("-", 82) + "\n")

	for _, key := range report.Keys {
		fmt.Fprintf(&b, "%-40s %-13s %8s %9d %7.1f%%\n",
			truncate(key.SessionKey, 40),
			key.Label,
			utils.FormatRoundedUnit(key.TotalSeconds),
			key.SessionCount,
			key.Percentage)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate shortens s to at most maxLen runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

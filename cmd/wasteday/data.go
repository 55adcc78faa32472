package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wasteday/wasteday/internal/models"
)

const cliTimeLayout = "2006-01-02 15:04:05"

func newSessionsCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, record and delete activity sessions",
	}

	var (
		since, until string
		asJSON       bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions starting in [since, until)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceT, err := parseOptionalTime("since", since)
			if err != nil {
				return err
			}
			untilT, err := parseOptionalTime("until", until)
			if err != nil {
				return err
			}

			return withApp(opts, func(a *app) error {
				sessions, err := a.store.QuerySessions(sinceT, untilT)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), sessions)
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions found.")
					return nil
				}
				fmt.Fprintf(out, "%-36s %-19s %10s  %s\n", "ID", "Start", "Duration", "Session Key")
				for _, s := range sessions {
					fmt.Fprintf(out, "%-36s %-19s %9ds  %s\n",
						s.ID, s.StartTime.Local().Format(cliTimeLayout), s.DurationSeconds, s.SessionKey)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&since, "since", "", "inclusive lower bound (RFC 3339)")
	listCmd.Flags().StringVar(&until, "until", "", "exclusive upper bound (RFC 3339)")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var (
		id, start, key string
		duration       int64
	)
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Insert or replace a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startT := time.Now()
			if start != "" {
				t, err := time.Parse(time.RFC3339Nano, start)
				if err != nil {
					return fmt.Errorf("start must be an RFC 3339 timestamp: %w", err)
				}
				startT = t
			}
			if id == "" {
				id = uuid.NewString()
			}

			session := models.Session{ID: id, StartTime: startT, DurationSeconds: duration, SessionKey: key}
			return withApp(opts, func(a *app) error {
				if err := a.store.UpsertSession(session); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	putCmd.Flags().StringVar(&id, "id", "", "session id (default: a new UUID)")
	putCmd.Flags().StringVar(&start, "start", "", "start time, RFC 3339 (default: now)")
	putCmd.Flags().Int64Var(&duration, "duration", 0, "duration in seconds")
	putCmd.Flags().StringVar(&key, "key", "", "session key, e.g. category=app;identifier=code")
	_ = putCmd.MarkFlagRequired("key")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session; deleting a missing id succeeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				return a.store.DeleteSession(args[0])
			})
		},
	}

	cmd.AddCommand(listCmd, putCmd, deleteCmd)
	return cmd
}

func newRulesCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List classification rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				rules, err := a.store.ListClassificationRules()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), rules)
				}
				out := cmd.OutOrStdout()
				if len(rules) == 0 {
					fmt.Fprintln(out, "No classification rules.")
					return nil
				}
				fmt.Fprintf(out, "%6s %-12s %-30s %-11s %s\n", "ID", "Type", "Identifier", "Label", "Active")
				for _, r := range rules {
					fmt.Fprintf(out, "%6d %-12s %-30s %-11s %v\n", r.ID, r.Type, r.Identifier, r.Label, r.IsActive)
				}
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var (
		ruleType, identifier, label string
		inactive                    bool
	)
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Insert a rule, or update the label of an existing (type, identifier)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := models.ClassificationRule{
				Type:       ruleType,
				Identifier: identifier,
				Label:      models.Label(label),
				IsActive:   !inactive,
			}
			return withApp(opts, func(a *app) error {
				return a.store.UpsertClassificationRule(rule)
			})
		},
	}
	putCmd.Flags().StringVar(&ruleType, "type", "app", "rule type")
	putCmd.Flags().StringVar(&identifier, "identifier", "", "identifier matched against session keys")
	putCmd.Flags().StringVar(&label, "label", "", "waste or productive")
	putCmd.Flags().BoolVar(&inactive, "inactive", false, "store the rule disabled")
	_ = putCmd.MarkFlagRequired("identifier")
	_ = putCmd.MarkFlagRequired("label")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule by numeric id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("rule id must be an integer: %w", err)
			}
			return withApp(opts, func(a *app) error {
				return a.store.DeleteClassificationRule(id)
			})
		},
	}

	cmd.AddCommand(listCmd, putCmd, deleteCmd)
	return cmd
}

func newSettingsCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write settings",
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting; fails when it is absent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				value, found, err := a.store.GetSetting(args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("setting %q is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				return a.store.SetSetting(args[0], args[1])
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				settings, err := a.store.ListSettings()
				if err != nil {
					return err
				}
				for _, s := range settings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", s.Key, s.Value)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(getCmd, setCmd, listCmd)
	return cmd
}

func withApp(opts *runOptions, fn func(*app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

func parseOptionalTime(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp: %w", name, err)
	}
	return &t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package main provides the maintenance CLI for the acadplan data core:
// schema initialization, bulk loading, destructive migrations and
// integrity checks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/acadplan/acadplan-core/internal/dto"
	"github.com/acadplan/acadplan-core/internal/loader"
	"github.com/acadplan/acadplan-core/internal/migrator"
	"github.com/acadplan/acadplan-core/internal/repository"
	"github.com/acadplan/acadplan-core/internal/service"
	"github.com/acadplan/acadplan-core/internal/store"
	"github.com/acadplan/acadplan-core/internal/validation"
	"github.com/acadplan/acadplan-core/pkg/config"
	"github.com/acadplan/acadplan-core/pkg/database"
	"github.com/acadplan/acadplan-core/pkg/export"
	"github.com/acadplan/acadplan-core/pkg/logger"
	"github.com/acadplan/acadplan-core/pkg/metrics"
)

const version = "0.3.0"

// errFindings marks a run whose check reported findings: the command
// already printed them, so main exits non-zero without an extra error
// line. Commands return it instead of exiting so deferred cleanup runs.
var errFindings = errors.New("findings reported")

// Command represents a CLI command.
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
}

func main() {
	commands := map[string]*Command{
		"init-schema": {
			Name:        "init-schema",
			Description: "Create any missing tables and indexes (idempotent)",
			Run:         initSchemaCmd,
		},
		"validate": {
			Name:        "validate",
			Description: "Check staged batch files for referential integrity",
			Run:         validateCmd,
		},
		"load": {
			Name:        "load",
			Description: "Bulk load staged batch files into the store",
			Run:         loadCmd,
		},
		"migrate-drop-career-fk": {
			Name:        "migrate-drop-career-fk",
			Description: "Remove the legacy students.career_id column (destructive)",
			Run:         migrateCmd,
		},
		"check-principals": {
			Name:        "check-principals",
			Description: "Scan all students for principal-enrollment integrity",
			Run:         checkPrincipalsCmd,
		},
		"check-calendar": {
			Name:        "check-calendar",
			Description: "List activities overlapping disruptive calendar events",
			Run:         checkCalendarCmd,
		},
		"version": {
			Name:        "version",
			Description: "Show version information",
			Run:         versionCmd,
		},
	}

	if len(os.Args) < 2 {
		printUsage(commands)
		os.Exit(0)
	}

	cmdName := os.Args[1]
	if cmdName == "help" || cmdName == "-h" || cmdName == "--help" {
		printUsage(commands)
		os.Exit(0)
	}

	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmdName)
		printUsage(commands)
		os.Exit(1)
	}

	err := cmd.Run(os.Args[2:])
	if err != nil && !errors.Is(err, errFindings) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func printUsage(commands map[string]*Command) {
	fmt.Println("acadplan-admin - data integrity and schema maintenance")
	fmt.Println()
	fmt.Println("Usage: acadplan-admin <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, name := range []string{"init-schema", "validate", "load", "migrate-drop-career-fk", "check-principals", "check-calendar", "version"} {
		if c, ok := commands[name]; ok {
			fmt.Printf("  %-24s %s\n", c.Name, c.Description)
		}
	}
	fmt.Println()
	fmt.Println("Run 'acadplan-admin <command> -h' for help on a specific command.")
}

// env bundles the wired core components every command starts from.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	gw     *store.Gateway
	close  func()
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	gw := store.NewGateway(db, logr)
	return &env{
		cfg:    cfg,
		logger: logr,
		gw:     gw,
		close: func() {
			_ = db.Close()
			_ = logr.Sync()
		},
	}, nil
}

func initSchemaCmd(args []string) error {
	fs := flag.NewFlagSet("init-schema", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := loader.EnsureSchema(context.Background(), e.gw); err != nil {
		return err
	}
	fmt.Println("schema is up to date")
	return nil
}

func validateCmd(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	report := fs.String("report", "", "Write the validation report (csv or pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: validate [options] <batch-dir>")
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	batches, err := loader.ReadBatchDir(fs.Arg(0))
	if err != nil {
		return err
	}
	existing, err := validation.ExistingFromStore(context.Background(), e.gw)
	if err != nil {
		return err
	}
	result := validation.New(e.logger).ValidateAgainst(batches, existing)

	if result.Empty() {
		fmt.Println("validation passed: no referential violations")
	} else {
		fmt.Printf("validation failed: %d violations\n", result.Total())
		for _, rule := range dto.RuleNames {
			for _, v := range result.Violations[rule] {
				fmt.Println("  " + v.Message())
			}
		}
	}
	if *report != "" {
		if err := writeReport(e.cfg, result.Report(), "validation-report", *report); err != nil {
			return err
		}
	}
	if !result.Empty() {
		return errFindings
	}
	return nil
}

func loadCmd(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	force := fs.Bool("force", false, "Load even when validation reports violations")
	report := fs.String("report", "", "Write the load summary (csv or pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: load [options] <batch-dir>")
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	batches, err := loader.ReadBatchDir(fs.Arg(0))
	if err != nil {
		return err
	}
	l := loader.New(e.gw, validation.New(e.logger), metrics.New(), e.logger)
	summary, err := l.Load(context.Background(), batches, loader.Options{Force: *force})
	if summary != nil && *report != "" {
		if wErr := writeReport(e.cfg, summary.Report(), "load-summary", *report); wErr != nil {
			e.logger.Warn("failed to write load report", zap.Error(wErr))
		}
	}
	if err != nil {
		return err
	}

	for _, t := range summary.Tables {
		fmt.Printf("%-18s attempted=%-5d inserted=%-5d errors=%d\n", t.Table, t.Attempted, t.Inserted, len(t.Errors))
		for _, msg := range t.Errors {
			fmt.Println("    " + msg)
		}
	}
	return nil
}

func migrateCmd(args []string) error {
	fs := flag.NewFlagSet("migrate-drop-career-fk", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Confirm the destructive migration")
	force := fs.Bool("force", false, "Proceed past failed precondition or backup")
	report := fs.String("report", "", "Write the migration report (csv or pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	backup := migrator.NewFileBackup(e.cfg.Backup.Dir)
	m := migrator.New(e.gw, backup, e.cfg.Store.Path, metrics.New(), e.logger)
	result, err := m.DropColumn(context.Background(), migrator.StudentCareerColumnPlan(), migrator.Options{
		Confirmed: *yes,
		Force:     *force,
	})
	if result != nil && *report != "" {
		if wErr := writeReport(e.cfg, result.Report(), "migration-report", *report); wErr != nil {
			e.logger.Warn("failed to write migration report", zap.Error(wErr))
		}
	}
	if err != nil {
		return err
	}

	if err := backup.Prune(e.cfg.Backup.Keep); err != nil {
		e.logger.Warn("backup pruning failed", zap.Error(err))
	}
	fmt.Printf("migration finished: backup=%s rebuild=%t post_check=%t columns=%v\n",
		result.BackupPath, result.Rebuild, result.PostCheck, result.Columns)
	return nil
}

func checkPrincipalsCmd(args []string) error {
	fs := flag.NewFlagSet("check-principals", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	db := e.gw.DB()
	svc := service.NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewStudentRepository(db),
		repository.NewCareerRepository(db),
		nil,
		e.logger,
	)
	scan, err := svc.ScanPrincipalIntegrity(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("checked %d students\n", scan.Checked)
	for _, w := range scan.Warnings {
		fmt.Printf("  warning: student %d has no principal career (%d active)\n", w.StudentID, w.ActiveCount)
	}
	for _, c := range scan.Errors {
		fmt.Printf("  error: student %d has %d principal careers %v\n", c.StudentID, len(c.PrincipalCareers), c.PrincipalCareers)
	}
	if len(scan.Errors) > 0 {
		return errFindings
	}
	return nil
}

func checkCalendarCmd(args []string) error {
	fs := flag.NewFlagSet("check-calendar", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	db := e.gw.DB()
	svc := service.NewScheduleService(
		repository.NewActivityRepository(db),
		repository.NewActivityTypeRepository(db),
		repository.NewThematicAxisRepository(db),
		repository.NewCalendarRepository(db),
		e.logger,
	)
	conflicts, err := svc.FindConflicts(context.Background())
	if err != nil {
		return err
	}

	if len(conflicts) == 0 {
		fmt.Println("no calendar conflicts")
		return nil
	}
	fmt.Printf("%d calendar conflicts\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Printf("  %s (%s, axis %s) overlaps %q %s..%s\n",
			c.Activity.Title, c.Type, c.Axis, c.Event.Title,
			deref(c.Event.StartDate), deref(c.Event.EndDate))
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func versionCmd(args []string) error {
	fmt.Printf("acadplan-admin %s\n", version)
	return nil
}

func writeReport(cfg *config.Config, rep export.Report, name, format string) error {
	rep.GeneratedAt = time.Now()
	var (
		payload []byte
		err     error
	)
	switch format {
	case "csv":
		payload, err = export.NewCSVExporter().Render(rep)
	case "pdf":
		payload, err = export.NewPDFExporter().Render(rep)
	default:
		return fmt.Errorf("unknown report format %q (want csv or pdf)", format)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(cfg.Export.Dir, fmt.Sprintf("%s-%s.%s", name, time.Now().Format("20060102-150405"), format))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Println("report written to " + path)
	return nil
}

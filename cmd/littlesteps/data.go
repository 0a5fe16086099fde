package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/littlesteps/internal/cli"
	"github.com/at-ishikawa/littlesteps/internal/seed"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Seed a new store or bring an existing one up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			before, err := s.StoredVersion(ctx)
			if err != nil {
				return fmt.Errorf("store.StoredVersion() > %w", err)
			}
			if err := s.Initialize(ctx); err != nil {
				return fmt.Errorf("store.Initialize() > %w", err)
			}
			after, err := s.StoredVersion(ctx)
			if err != nil {
				return fmt.Errorf("store.StoredVersion() > %w", err)
			}

			out := cmd.OutOrStdout()
			if before == after {
				_, _ = fmt.Fprintf(out, "Store is already at version %s\n", after)
				return nil
			}
			_, _ = fmt.Fprintf(out, "Store initialized at version %s\n", after)
			return nil
		},
	}
}

func newResetCommand() *cobra.Command {
	var yes bool
	command := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data and reseed the sample dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes every user and all progress. Pass --yes to confirm")
			}
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			if err := s.ClearAllData(ctx); err != nil {
				return fmt.Errorf("store.ClearAllData() > %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All data was reset to the sample dataset")
			return nil
		},
	}
	command.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all data")
	return command
}

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the stored data for broken references",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			report, err := s.CheckConsistency(ctx)
			if err != nil {
				return fmt.Errorf("store.CheckConsistency() > %w", err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintConsistency(report)
			if !report.OK() {
				return fmt.Errorf("found %d problems", len(report.Errors))
			}
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migration commands",
	}

	migrateCmd.AddCommand(newMigrateStatusCommand())
	migrateCmd.AddCommand(newMigrateRunCommand())

	return migrateCmd
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored schema version and the migration steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			version, err := s.StoredVersion(ctx)
			if err != nil {
				return fmt.Errorf("store.StoredVersion() > %w", err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintMigrationStatus(version)
			return nil
		},
	}
}

func newMigrateRunCommand() *cobra.Command {
	var force bool
	command := &cobra.Command{
		Use:   "run",
		Short: "Run the migration steps on an outdated store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			version, err := s.StoredVersion(ctx)
			if err != nil {
				return fmt.Errorf("store.StoredVersion() > %w", err)
			}
			results, err := s.EnsureSeedUpToDate(ctx)
			if force && results == nil && err == nil {
				results, err = s.RunMigrations(ctx)
			}
			if err != nil {
				return fmt.Errorf("migrate > %w", err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintMigrations(version, results)
			return nil
		},
	}
	command.Flags().BoolVar(&force, "force", false, "Run every step even when the store is up to date")
	return command
}

func newSeedCommand() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Sample dataset commands",
	}
	seedCmd.AddCommand(&cobra.Command{
		Use:   "export <path>",
		Short: "Write the embedded sample dataset as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := seed.Sample()
			if err != nil {
				return fmt.Errorf("seed.Sample() > %w", err)
			}
			if err := dataset.Export(args[0]); err != nil {
				return fmt.Errorf("dataset.Export(%s) > %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sample dataset written to %s\n", args[0])
			return nil
		},
	})
	return seedCmd
}

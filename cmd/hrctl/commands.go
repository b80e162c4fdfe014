package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/badge"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	userService "github.com/cmlabs-hris/attendance-backend-go/internal/service/user"
	"github.com/cmlabs-hris/attendance-backend-go/migrations"
	"github.com/spf13/cobra"
)

func connect(ctx context.Context) (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := migrations.Apply(ctx, db.Pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", v)
			}
			return nil
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			req := user.CreateUserRequest{
				Email:    email,
				Password: password,
				Role:     string(user.RoleAdmin),
			}
			if name != "" {
				req.FullName = &name
			}

			svc := userService.NewUserService(postgresql.NewTransactor(db), postgresql.NewUserRepository(db))
			created, err := svc.CreateUser(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", created.Email, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email address")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (8-72 characters)")
	cmd.Flags().StringVar(&name, "name", "", "Full name (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newBadgeCmd() *cobra.Command {
	var matricule, out string
	var size int

	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Write the QR badge of a matricule as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			matricule = strings.ToUpper(strings.TrimSpace(matricule))
			png, err := badge.PNG(matricule, size)
			if err != nil {
				return err
			}
			if out == "" {
				out = matricule + ".png"
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&matricule, "matricule", "", "Employee matricule encoded in the QR code")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <MATRICULE>.png)")
	cmd.Flags().IntVar(&size, "size", 256, "Image edge in pixels")
	_ = cmd.MarkFlagRequired("matricule")
	return cmd
}

func newComputeCmd() *cobra.Command {
	w := attendance.DefaultTimeWindow()
	var checkIn, checkOut, workStart string

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Classify a check-in and compute hours for one day",
		Example: "  hrctl compute --in 08:40 --out 17:00\n" +
			"  hrctl compute --in 13:05 --out 19:05 --overtime-start 18",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := attendance.ParseTimeOfDay(workStart)
			if err != nil {
				return fmt.Errorf("--work-start: %w", err)
			}
			w.StandardStart = start
			if err := w.Validate(); err != nil {
				return err
			}

			result, err := attendance.ComputeAttendance(checkIn, checkOut, w)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&checkIn, "in", "", "Check-in time HH:MM")
	cmd.Flags().StringVar(&checkOut, "out", "", "Check-out time HH:MM (optional)")
	cmd.Flags().StringVar(&workStart, "work-start", w.StandardStart.String(), "Standard start HH:MM")
	cmd.Flags().IntVar(&w.LateThresholdMinutes, "late-minutes", w.LateThresholdMinutes, "Grace period in minutes")
	cmd.Flags().Float64Var(&w.AbsentThresholdHour, "absent-hour", w.AbsentThresholdHour, "Check-ins after this hour are absent")
	cmd.Flags().Float64Var(&w.OvertimeStartHour, "overtime-start", w.OvertimeStartHour, "Overtime starts at this hour")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

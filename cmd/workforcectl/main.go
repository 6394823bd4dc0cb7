package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/config"
	"workforce/internal/platform/db"
	"workforce/internal/platform/logging"
)

func main() {
	if len(os.Args) < 2 {
		usageExit()
	}
	cfg := config.Load()
	logging.New(logging.Config{Service: "workforcectl", Env: cfg.Environment, Level: cfg.LogLevel, Format: "text"})
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "migrate":
		err = migrateCmd(cfg, os.Args[2:])
	case "create-admin":
		err = createAdmin(cfg, os.Args[2:])
	default:
		usageExit()
	}
	if err != nil {
		slog.Error(os.Args[1]+" failed", "err", err)
		os.Exit(1)
	}
}

func usageExit() {
	fmt.Fprintf(os.Stderr, "Usage: %s [migrate up | migrate down [steps] | migrate version | create-admin <email> [full name]]\n", os.Args[0])
	os.Exit(2)
}

func migrateCmd(cfg config.Config, args []string) error {
	if len(args) == 0 {
		usageExit()
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	switch args[0] {
	case "up":
		if err := db.Migrate(pool); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil || steps <= 0 {
				return fmt.Errorf("steps must be a positive number")
			}
		}
		if err := db.MigrateDown(pool, steps); err != nil {
			return err
		}
	case "version":
	default:
		usageExit()
	}

	version, dirty, err := db.MigrationVersion(pool)
	if err != nil {
		return err
	}
	fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
	return nil
}

func createAdmin(cfg config.Config, args []string) error {
	if len(args) == 0 {
		usageExit()
	}
	email := args[0]
	name := strings.Join(args[1:], " ")

	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return errors.New("passwords do not match")
	}
	if err := auth.ValidatePassword(string(first)); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	created, err := db.EnsureAdmin(ctx, pool, email, string(first), name)
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("profile %s already exists or input was empty; nothing changed\n", email)
		return nil
	}
	fmt.Printf("admin %s created\n", email)
	return nil
}

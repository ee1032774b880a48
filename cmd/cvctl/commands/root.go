package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cv-improver/internal/credentials"
	"cv-improver/internal/export"
	"cv-improver/internal/i18n"
	"cv-improver/internal/improver"
	"cv-improver/internal/llm"
	"cv-improver/internal/llm/gemini"
	"cv-improver/internal/shared/config"
	"cv-improver/internal/shared/storage/db"
	"cv-improver/internal/shared/telemetry"
)

// cliOwner is the credential owner for the local command line user.
const cliOwner = "cli"

var (
	home   string
	lang   string
	secret string

	env *cliEnv
)

type cliEnv struct {
	catalog  *i18n.Catalog
	store    credentials.Store
	provider llm.Provider
	renderer export.Renderer
	session  *improver.Session
	db       *sql.DB
}

func Execute() error {
	defer closeEnv()
	return newRootCmd().Execute()
}

func closeEnv() {
	if env != nil && env.db != nil {
		env.db.Close()
	}
	env = nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cvctl",
		Short:        "Improve a CV with Gemini from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			env, err = setup(cmd.Context())
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.cvctl)")
	root.PersistentFlags().StringVar(&lang, "lang", string(i18n.Default), "output language (ar or en)")
	root.PersistentFlags().StringVar(&secret, "secret", os.Getenv("CVCTL_SECRET"), "passphrase sealing the stored key")

	root.AddCommand(keyCmd(), improveCmd(), exportCmd())
	return root
}

func setup(ctx context.Context) (*cliEnv, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()
	telemetry.Setup(cfg.Env, "warn")

	locale, err := i18n.ParseLocale(lang)
	if err != nil {
		return nil, err
	}
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(dir, ".cvctl")
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, err
	}

	database, err := db.OpenSQLite(ctx, filepath.Join(home, "cvctl.db"), db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, database, db.DriverSQLite); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	var store credentials.Store = credentials.NewSQLiteStore(database)
	if secret != "" {
		if store, err = credentials.NewSealed(store, secret); err != nil {
			database.Close()
			return nil, err
		}
	}

	provider, err := gemini.NewProvider(cfg.GeminiTransport, gemini.Options{
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	renderer, err := export.NewPDFRenderer(export.DefaultLayout(), cfg.ExportFontPath)
	if err != nil {
		database.Close()
		return nil, err
	}

	catalog, err := i18n.New()
	if err != nil {
		database.Close()
		return nil, err
	}
	session := improver.NewSession(cliOwner, improver.Deps{
		Catalog:    catalog,
		Store:      store,
		Provider:   provider,
		SettleHold: -1,
	})
	session.SetLanguage(locale)
	if err := session.CheckAPIKey(ctx); err != nil {
		database.Close()
		return nil, err
	}

	return &cliEnv{
		catalog:  catalog,
		store:    store,
		provider: provider,
		renderer: renderer,
		session:  session,
		db:       database,
	}, nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
)

// SetupDatabase creates the config file if needed, initializes the database and runs migrations.
//
// With --seed, the bundled sample songs are loaded into an empty library.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPathOrDefault()

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	local := *r.config
	local.Storage.Backend = shared.BackendLocal

	r.logger.Info("initializing database", "driver", local.Database.Driver, "path", local.Database.Path)
	if r.repo == nil {
		repo, err := repositories.Open(ctx, &local, r.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		r.repo = repo
	}

	r.logger.Infof("setup complete for database: %v", local.Database.Path)
	r.writePlain("✓ Database ready at %s\n", local.Database.Path)

	if !cmd.Bool("seed") {
		return nil
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}
	seeded, err := lib.Seed(ctx)
	if err != nil {
		return err
	}
	if seeded == 0 {
		r.writePlain("Library already has songs; sample songs not loaded\n")
	} else {
		r.writePlain("✓ Loaded %d sample song(s)\n", seeded)
	}
	return nil
}

// SetupRemote points the songbook at a remote document store.
//
// The connection is verified by fetching the user's document before anything is written;
// on failure the existing config is left untouched.
func (r *Runner) SetupRemote(ctx context.Context, cmd *cli.Command) error {
	config := *r.config
	config.Remote.URL = cmd.String("url")
	config.Remote.APIKey = cmd.String("key")
	config.Remote.Username = cmd.String("username")
	config.Remote.Table = cmd.String("table")

	svc, err := services.NewDocumentService(config.Remote, r.httpClient)
	if err == nil {
		r.logger.Info("verifying remote store", "url", config.Remote.URL, "user", svc.Username())
		err = svc.Ping(ctx)
	}
	if err != nil {
		r.writePlain("Configuration failed: %v\n", err)
		return fmt.Errorf("%w: %w", shared.ErrConfigFailed, err)
	}

	config.Storage.Backend = shared.BackendRemote
	configPath := r.configPathOrDefault()
	if err := shared.SaveConfig(configPath, &config); err != nil {
		return err
	}
	r.config = &config

	r.logger.Info("remote storage configured", "path", configPath)
	r.writePlain("✓ Remote storage configured for %s\n", config.Remote.Username)
	r.writePlain("Config saved to: %s\n", configPath)
	return nil
}

func (r *Runner) configPathOrDefault() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/gofrs/flock"

	"github.com/dtroode/cabinet/internal/auth"
	"github.com/dtroode/cabinet/internal/config"
	"github.com/dtroode/cabinet/internal/crypto"
	"github.com/dtroode/cabinet/internal/keystore"
	"github.com/dtroode/cabinet/internal/keystore/keyring"
	"github.com/dtroode/cabinet/internal/logger"
	"github.com/dtroode/cabinet/internal/model"
	"github.com/dtroode/cabinet/internal/repository/postgres"
	"github.com/dtroode/cabinet/internal/service"
	storage "github.com/dtroode/cabinet/internal/storage/minio"
)

// systemClipboard writes to the OS clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// app holds the wired services. Dependencies are opened on first use so that
// commands like version run without a database.
type app struct {
	cfg    *config.Config
	logger *logger.Logger

	db       *postgres.Connection
	passcode *auth.Passcode
	pairs    *service.Pairs
	drawers  *service.Drawers
	vault    *service.Vault
	backup   *service.Backup
}

func newApp(cfg *config.Config, logger *logger.Logger) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
	}
}

func (a *app) Open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}

	lockPath, err := a.cfg.Keystore.LockPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	vault := keyring.New(a.cfg.Keystore.Service)
	keys := keystore.New(vault, a.cfg.Keystore.KeyAccount, a.logger, keystore.WithLocker(flock.New(lockPath)))
	cipher := crypto.New(keys)

	passcode, err := auth.NewPasscode(
		vault,
		a.cfg.Keystore.PasscodeAccount,
		auth.NewTerminalPrompter(os.Stdin, os.Stderr),
		a.cfg.Auth.Timeout,
		a.logger,
	)
	if err != nil {
		return err
	}

	db, err := postgres.NewConnection(ctx, a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	pairRepo := postgres.NewPairRepository(db)
	drawerRepo := postgres.NewDrawerRepository(db)
	metaRepo := postgres.NewMetaRepository(db)

	var backups model.Storage
	if a.cfg.Storage.Enabled {
		client, err := storage.Open(ctx, a.cfg.Storage)
		if err != nil {
			db.Close()
			return fmt.Errorf("failed to initialize backup storage: %w", err)
		}
		backups = client
	}

	a.db = db
	a.passcode = passcode
	a.pairs = service.NewPairs(pairRepo, drawerRepo, cipher, passcode, systemClipboard{}, a.cfg.Auth.Reason, a.logger)
	a.drawers = service.NewDrawers(drawerRepo, a.logger)
	a.vault = service.NewVault(keys, cipher, metaRepo, pairRepo, a.logger)
	a.backup = service.NewBackup(pairRepo, drawerRepo, cipher, backups, a.logger)

	return nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/paywatch/paywatch/internal/engine"
	"github.com/paywatch/paywatch/internal/storage"
)

func databasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "paywatch", "paywatch.db"), nil
}

func newStore() (*storage.SQLiteStore, error) {
	path, err := databasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStore(path, viper.GetInt("history.cap"))
	if err != nil {
		return nil, fmt.Errorf("failed to open confirmation log: %w", err)
	}
	return store, nil
}

func engineConfig() engine.Config {
	return engine.Config{
		NotificationWindow:   viper.GetDuration("engine.notification_window"),
		SMSWindow:            viper.GetDuration("engine.sms_window"),
		StaleAfter:           viper.GetDuration("engine.stale_after"),
		SweepInterval:        viper.GetDuration("engine.sweep_interval"),
		AutoConfirmThreshold: viper.GetInt("engine.auto_confirm_threshold"),
		ReviewThreshold:      viper.GetInt("engine.review_threshold"),
	}
}

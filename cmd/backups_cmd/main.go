package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/2beens/fittrack/internal"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/internal/logging"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	out := flag.String("out", "", "backup file to write (default fittrack-backup-<timestamp>.json)")
	restore := flag.String("restore", "", "backup file to restore from, instead of taking a backup")
	logsPath := flag.String("logs-path", "", "logs file path (empty for stdout)")
	flag.Parse()

	_ = godotenv.Load()

	flushLogs := logging.Setup(logging.LoggerSetupParams{
		LogFileName: *logsPath,
		LogToStdout: true,
		LogLevel:    "debug",
	})
	defer flushLogs()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}
	if cfg.StorageBackend == config.BackendMemory {
		log.Fatalln("memory backend has nothing to back up")
	}
	// a read cache only gets in the way here
	cfg.CacheEnabled = false

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	storage, err := internal.OpenStorage(ctx, cfg, internal.StorageSecretsFromEnv(), false)
	if err != nil {
		log.Fatalf("open storage: %s", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Errorf("close storage: %s", err)
		}
	}()

	if *restore != "" {
		if err := restoreFrom(ctx, storage.KV(), *restore); err != nil {
			log.Errorf("restore: %s", err)
			return
		}
		log.Printf("restored [%s] into %s backend", *restore, cfg.StorageBackend)
		return
	}

	if *out == "" {
		*out = "fittrack-backup-" + time.Now().Format("20060102-150405") + ".json"
	}
	if err := backupTo(ctx, storage.KV(), *out); err != nil {
		log.Errorf("backup: %s", err)
		return
	}
	log.Printf("backup written to [%s]", *out)
}

func backupTo(ctx context.Context, store kv.Store, path string) error {
	snapshot, err := kv.TakeSnapshot(ctx, store)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func restoreFrom(ctx context.Context, store kv.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snapshot kv.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	return kv.Restore(ctx, store, snapshot)
}

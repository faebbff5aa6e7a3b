package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/opsim/engine/internal/api"
	"github.com/opsim/engine/internal/database"
	"github.com/opsim/engine/internal/storage/gormstore"
)

// runCLI handles maintenance subcommands against the recording database.
func runCLI(args []string) {
	logger := SlogManager.Logger()

	switch strings.ToLower(args[0]) {
	case "getjson":
		names := args[1:]
		if len(names) == 0 {
			fmt.Println("No recording names provided.")
			return
		}
		if err := exportRecordings(names); err != nil {
			logger.Error("Export failed", "error", err)
			os.Exit(1)
		}
	case "upload":
		if len(args) < 2 {
			fmt.Println("Usage: opsim_server upload <file> [scenarioId] [scenarioName]")
			return
		}
		meta := api.UploadMetadata{}
		if len(args) > 2 {
			meta.ScenarioID = args[2]
		}
		if len(args) > 3 {
			meta.ScenarioName = args[3]
		}
		client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
		if err := client.Upload(args[1], meta); err != nil {
			logger.Error("Upload failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Uploaded %s\n", args[1])
	default:
		fmt.Printf("Unknown command: %s\n", args[0])
		fmt.Println("Usage: opsim_server getjson <recording name> [...] | upload <file> [scenarioId] [scenarioName]")
	}
}

// exportRecordings pulls recordings out of the database and writes each
// one as a gzipped JSON document next to the binary.
func exportRecordings(names []string) error {
	db, err := database.GetPostgresDBStandalone()
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	defer sqlDB.Close()

	backend := gormstore.New(db)

	for _, name := range names {
		rec, err := backend.LoadRecording(name)
		if err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshalling recording %q: %w", name, err)
		}

		outPath := fmt.Sprintf("%s.json.gz", name)
		file, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}

		gz := gzip.NewWriter(file)
		if _, err := gz.Write(data); err != nil {
			file.Close()
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		if err := gz.Close(); err != nil {
			file.Close()
			return fmt.Errorf("closing gzip stream for %s: %w", outPath, err)
		}
		if err := file.Close(); err != nil {
			return err
		}

		fmt.Printf("Wrote %s (%d steps)\n", outPath, len(rec.Steps))
	}
	return nil
}

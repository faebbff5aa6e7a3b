package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "opsim.cfg.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(viper.Reset)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, `{}`)
	if err := Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := GetString("logLevel"); got != "info" {
		t.Errorf("logLevel = %q, want info", got)
	}
	if got := viper.GetFloat64("engine.tickSeconds"); got != 1.0 {
		t.Errorf("engine.tickSeconds = %v, want 1.0", got)
	}
	if got := GetString("storage.type"); got != "memory" {
		t.Errorf("storage.type = %q, want memory", got)
	}
	if !GetBool("relay.enabled") {
		t.Errorf("relay.enabled default should be true")
	}
	if GetBool("influx.enabled") {
		t.Errorf("influx.enabled default should be false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := writeConfig(t, `{
		"logLevel": "debug",
		"engine": {"tickSeconds": 5.0, "seed": 99},
		"storage": {
			"type": "sqlite",
			"sqlite": {"dumpPath": "/tmp/x.db", "dumpInterval": "10s"}
		},
		"doctrine": {"shipAttackHostile": false}
	}`)
	if err := Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := GetString("logLevel"); got != "debug" {
		t.Errorf("logLevel = %q, want debug", got)
	}
	if got := GetInt("engine.seed"); got != 99 {
		t.Errorf("engine.seed = %d, want 99", got)
	}

	sc := Storage()
	if sc.Type != "sqlite" {
		t.Errorf("storage.Type = %q, want sqlite", sc.Type)
	}
	if sc.Sqlite.DumpPath != "/tmp/x.db" {
		t.Errorf("DumpPath = %q", sc.Sqlite.DumpPath)
	}
	if sc.Sqlite.DumpInterval != 10*time.Second {
		t.Errorf("DumpInterval = %v, want 10s", sc.Sqlite.DumpInterval)
	}

	d := DoctrineDefaults()
	if d.ShipAttackHostile {
		t.Errorf("doctrine override not applied")
	}
	if !d.AircraftAttackHostile {
		t.Errorf("untouched doctrine flag lost its default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	if err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRuntimePort(t *testing.T) {
	defer SetRuntimePort(8000)

	SetRuntimePort(0)
	if GetRuntimePort() != 8000 {
		t.Errorf("zero port should keep the default, got %d", GetRuntimePort())
	}
	SetRuntimePort(9001)
	if GetRuntimePort() != 9001 {
		t.Errorf("expected 9001, got %d", GetRuntimePort())
	}
}

func TestGetDataDir_RuntimeOverrideWins(t *testing.T) {
	defer SetRuntimeDataDir("")

	runtimeDir := filepath.Join(t.TempDir(), "runtime")
	envDir := filepath.Join(t.TempDir(), "env")
	t.Setenv(envDataDir, envDir)
	SetRuntimeDataDir(runtimeDir)

	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dir != runtimeDir {
		t.Errorf("runtime dir should win over env, got %q", dir)
	}
	if _, err := os.Stat(runtimeDir); err != nil {
		t.Errorf("data dir should be created: %v", err)
	}
}

func TestGetDataDir_EnvOverride(t *testing.T) {
	defer SetRuntimeDataDir("")
	SetRuntimeDataDir("")

	envDir := filepath.Join(t.TempDir(), "env")
	t.Setenv(envDataDir, envDir)

	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dir != envDir {
		t.Errorf("expected env dir %q, got %q", envDir, dir)
	}
}

func TestGetDBPath_EnvOverride(t *testing.T) {
	t.Setenv(envDBPath, "/tmp/custom/ledger.db")
	path, err := GetDBPath()
	if err != nil {
		t.Fatalf("GetDBPath: %v", err)
	}
	if path != "/tmp/custom/ledger.db" {
		t.Errorf("expected env path, got %q", path)
	}
}

func TestGetDBPath_UsesDataDirAndDBName(t *testing.T) {
	defer SetRuntimeDataDir("")

	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // keep the user config out of the picture
	SetRuntimeDataDir(dataDir)

	path, err := GetDBPath()
	if err != nil {
		t.Fatalf("GetDBPath: %v", err)
	}
	if path != filepath.Join(dataDir, defaultDBName) {
		t.Errorf("expected default db name under the data dir, got %q", path)
	}
}

func TestUserConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	defaults := LoadUserConfig()
	if defaults.DBName != defaultDBName {
		t.Errorf("expected default db name, got %q", defaults.DBName)
	}

	saved := UserConfig{DBName: "mine.db", DataDir: "/srv/ledger"}
	if err := SaveUserConfig(saved); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}

	loaded := LoadUserConfig()
	if loaded.DBName != "mine.db" || loaded.DataDir != "/srv/ledger" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

package configuration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEnv_ReadsExistingFiles(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env"), "TRRCMS_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("TRRCMS_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("TRRCMS_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestConfigurationDefaults(t *testing.T) {
	c := loadForTest(t)

	if c.Database.Name != "trrcms" {
		t.Fatalf("want default db name trrcms got %q", c.Database.Name)
	}
	if !strings.Contains(c.Database.ConnectionString(), "dbname=trrcms") {
		t.Fatalf("connection string missing dbname: %q", c.Database.ConnectionString())
	}
	if c.Matching.PersonHighThreshold != 85 || c.Matching.PersonMediumThreshold != 60 {
		t.Fatalf("unexpected default thresholds: high=%d medium=%d",
			c.Matching.PersonHighThreshold, c.Matching.PersonMediumThreshold)
	}
	if c.Pipeline.WorkerBatchSize != 4 {
		t.Fatalf("want default worker batch size 4 got %d", c.Pipeline.WorkerBatchSize)
	}
}

func TestConfigurationRejectsInvertedThresholds(t *testing.T) {
	t.Setenv("MATCHING_PERSON_MEDIUM_THRESHOLD", "90")
	t.Setenv("MATCHING_PERSON_HIGH_THRESHOLD", "70")

	c := &Configuration{}
	t.Cleanup(c.Unload)
	err := c.load(nil)
	if err == nil {
		t.Fatal("expected threshold validation error")
	}
	if !strings.Contains(err.Error(), "threshold") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigurationRejectsInvertedSpatialBounds(t *testing.T) {
	t.Setenv("SPATIAL_MIN_LAT", "40.0")
	t.Setenv("SPATIAL_MAX_LAT", "36.0")

	c := &Configuration{}
	t.Cleanup(c.Unload)
	err := c.load(nil)
	if err == nil {
		t.Fatal("expected spatial validation error")
	}
	if !strings.Contains(err.Error(), "latitude") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func loadForTest(t *testing.T) *Configuration {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("LOG_PATH", filepath.Join(tmp, "app.log"))

	c := &Configuration{}
	t.Cleanup(c.Unload)
	if err := c.load(nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

package config

import (
	"testing"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("AIDOC_TEST_STR", "value")
	t.Setenv("AIDOC_TEST_INT", "42")
	t.Setenv("AIDOC_TEST_BOOL", "true")
	t.Setenv("AIDOC_TEST_BAD_INT", "not a number")

	if !Exist("AIDOC_TEST_STR") {
		t.Error("Exist = false for set variable")
	}
	if Exist("AIDOC_TEST_MISSING") {
		t.Error("Exist = true for missing variable")
	}

	if got := GetEnv("AIDOC_TEST_STR"); got != "value" {
		t.Errorf("GetEnv = %q, want %q", got, "value")
	}
	if got := GetIntEnv("AIDOC_TEST_INT"); got != 42 {
		t.Errorf("GetIntEnv = %d, want 42", got)
	}
	// Ошибка разбора дает нулевое значение
	if got := GetIntEnv("AIDOC_TEST_BAD_INT"); got != 0 {
		t.Errorf("GetIntEnv = %d, want 0 for unparsable value", got)
	}
	if !GetBoolEnv("AIDOC_TEST_BOOL") {
		t.Error("GetBoolEnv = false, want true")
	}
	if GetBoolEnv("AIDOC_TEST_MISSING") {
		t.Error("GetBoolEnv = true for missing variable")
	}
}

func TestGetURLEnv(t *testing.T) {
	t.Setenv("AIDOC_TEST_URL", "http://convert:8000/api/py/convert")
	// Управляющий символ в URL не проходит разбор
	t.Setenv("AIDOC_TEST_BAD_URL", "http://convert\x1f:8000")

	u := GetURLEnv("AIDOC_TEST_URL")
	if u == nil {
		t.Fatal("GetURLEnv returned nil for valid URL")
	}
	if u.Host != "convert:8000" {
		t.Errorf("host = %q, want %q", u.Host, "convert:8000")
	}
	if u.Path != "/api/py/convert" {
		t.Errorf("path = %q, want %q", u.Path, "/api/py/convert")
	}

	if GetURLEnv("AIDOC_TEST_BAD_URL") != nil {
		t.Error("GetURLEnv must return nil for unparsable value")
	}
	if GetURLEnv("AIDOC_TEST_MISSING") != nil {
		t.Error("GetURLEnv must return nil for missing variable")
	}
}

func TestReadConfig(t *testing.T) {
	t.Setenv("CONVERT_SERVICE_URL", "http://convert:8000/api/py/convert")
	t.Setenv("LOCAL_STORAGE_PATH", "/tmp/aidoc-files")

	cfg := ReadConfig()

	if cfg.ConvertServiceURL == nil || cfg.ConvertServiceURL.Host != "convert:8000" {
		t.Errorf("ConvertServiceURL = %v, want host convert:8000", cfg.ConvertServiceURL)
	}
	if cfg.LocalStoragePath != "/tmp/aidoc-files" {
		t.Errorf("LocalStoragePath = %q", cfg.LocalStoragePath)
	}

	// Срок хранения неприкрепленных файлов по умолчанию
	if cfg.StaleAssetsTTL != 7 {
		t.Errorf("StaleAssetsTTL = %d, want default 7", cfg.StaleAssetsTTL)
	}
}

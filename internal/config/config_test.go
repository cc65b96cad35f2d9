package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "static" {
		t.Errorf("Catalog.Source = %q, want static", cfg.Catalog.Source)
	}
	if cfg.Assistant.TypingDelayMinMs != 1000 || cfg.Assistant.TypingDelayMaxMs != 2000 {
		t.Errorf("typing delay = %d..%d, want 1000..2000", cfg.Assistant.TypingDelayMinMs, cfg.Assistant.TypingDelayMaxMs)
	}
	if cfg.Assistant.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want en", cfg.Assistant.DefaultLanguage)
	}
	if cfg.MQTT.BrokerURL != "" {
		t.Errorf("MQTT should be disabled by default, got %q", cfg.MQTT.BrokerURL)
	}
	if cfg.Debug() {
		t.Error("Debug() should be false by default")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CATALOG_SOURCE", "file")
	t.Setenv("CATALOG_FILE", "/tmp/spots.json")
	t.Setenv("RANK_WEIGHT_PRICE", "0.5")
	t.Setenv("ASSISTANT_DEFAULT_LANGUAGE", "ar")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "file" || cfg.Catalog.File != "/tmp/spots.json" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Ranking.WeightPrice != 0.5 {
		t.Errorf("WeightPrice = %v, want 0.5", cfg.Ranking.WeightPrice)
	}
	if cfg.Assistant.DefaultLanguage != "ar" {
		t.Errorf("DefaultLanguage = %q, want ar", cfg.Assistant.DefaultLanguage)
	}
	if !cfg.Debug() {
		t.Error("Debug() should be true when LOG_LEVEL=debug")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("GEO_DEFAULT_LAT", "north")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Geo.DefaultLat != 33.5731 {
		t.Errorf("Geo.DefaultLat = %v, want default", cfg.Geo.DefaultLat)
	}
}

func TestLoad_DelayMaxBelowMin(t *testing.T) {
	t.Setenv("ASSISTANT_DELAY_MIN_MS", "1500")
	t.Setenv("ASSISTANT_DELAY_MAX_MS", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Assistant.TypingDelayMaxMs != 1500 {
		t.Errorf("TypingDelayMaxMs = %d, want 1500", cfg.Assistant.TypingDelayMaxMs)
	}
}

func TestLoad_SpeechEnabledByKey(t *testing.T) {
	t.Setenv("SPEECH_API_KEY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.Enabled {
		t.Error("Speech should be disabled without an API key")
	}

	t.Setenv("SPEECH_API_KEY", "sk-test")
	t.Setenv("SPEECH_MODEL", "whisper-large-v3")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Speech.Enabled || cfg.Speech.Model != "whisper-large-v3" {
		t.Errorf("Speech = %+v", cfg.Speech)
	}
}

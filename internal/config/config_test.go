package config

import (
	"reflect"
	"testing"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9001")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DB_CONNECT_RETRIES", "not-a-number")
	t.Setenv("ENABLE_SWAGGER", "true")
	t.Setenv("GOOGLE_PLACES_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "legacy-key")

	cfg := Load()
	if cfg.AppPort != "9001" {
		t.Fatalf("expected APP_PORT=9001, got %q", cfg.AppPort)
	}
	if !reflect.DeepEqual(cfg.CORSAllowOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowOrigins)
	}
	if cfg.DBConnectRetries != 3 {
		t.Fatalf("expected invalid int to fall back to 3, got %d", cfg.DBConnectRetries)
	}
	if !cfg.EnableSwagger {
		t.Fatalf("expected swagger enabled")
	}
	if cfg.PlacesAPIKey != "legacy-key" {
		t.Fatalf("expected GOOGLE_API_KEY fallback, got %q", cfg.PlacesAPIKey)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		secret  string
		alg     string
		wantErr bool
	}{
		{name: "missing secret", secret: "", alg: "HS256", wantErr: true},
		{name: "insecure default", secret: "change-me-in-production", alg: "HS256", wantErr: true},
		{name: "short secret", secret: "short", alg: "HS256", wantErr: true},
		{name: "missing algorithm", secret: "a-very-long-secret-value", alg: "", wantErr: true},
		{name: "valid", secret: "a-very-long-secret-value", alg: "HS256", wantErr: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Config{JWTSecret: tc.secret, JWTAlgorithm: tc.alg}.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected err=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMissingCredentials(t *testing.T) {
	cfg := Config{OpenAIAPIKey: "k", StorageURL: "https://store", StorageServiceKey: "s"}
	got := cfg.MissingCredentials()
	want := []string{"GOOGLE_PLACES_API_KEY", "GOOGLE_VISION_API_KEY", "DATABASE_URL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

package config

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"usos_monitor/internal/model"
)

var configEnvKeys = []string{
	"USOS_USERNAME", "USOS_PASSWORD", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"CATEGORIES", "SCHEDULE_PATH", "DATABASE_PATH", "LOG_LEVEL",
	"CHECK_INTERVAL_MINUTES", "PERSIST_ON_NOTIFY_FAILURE",
}

func TestLoad(t *testing.T) {
	required := map[string]string{
		"USOS_USERNAME":      "student",
		"USOS_PASSWORD":      "secret",
		"TELEGRAM_BOT_TOKEN": "tok",
		"TELEGRAM_CHAT_ID":   "12345",
		"CATEGORIES":         "6420-1000-2026L-A1M1=Jezyki od podstaw (M1)",
	}

	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing username",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "missing categories",
			env: map[string]string{
				"USOS_USERNAME":      "student",
				"USOS_PASSWORD":      "secret",
				"TELEGRAM_BOT_TOKEN": "tok",
				"TELEGRAM_CHAT_ID":   "12345",
			},
			wantErr: true,
		},
		{
			name: "required only, defaults applied",
			env:  required,
			want: &Config{
				USOSUsername:     "student",
				USOSPassword:     "secret",
				TelegramBotToken: "tok",
				TelegramChatID:   12345,
				Categories: []model.Category{
					{Code: "6420-1000-2026L-A1M1", DisplayName: "Jezyki od podstaw (M1)"},
				},
				SchedulePath:         "./plan.ics",
				DatabasePath:         "./data/monitor.db",
				LogLevel:             "info",
				CheckIntervalMinutes: 15,
			},
		},
		{
			name: "all values set",
			env: merge(required, map[string]string{
				"CATEGORIES":                "a=First;b=Second",
				"SCHEDULE_PATH":             "/tmp/plan.ics",
				"DATABASE_PATH":             "/tmp/monitor.db",
				"LOG_LEVEL":                 "debug",
				"CHECK_INTERVAL_MINUTES":    "5",
				"PERSIST_ON_NOTIFY_FAILURE": "true",
			}),
			want: &Config{
				USOSUsername:     "student",
				USOSPassword:     "secret",
				TelegramBotToken: "tok",
				TelegramChatID:   12345,
				Categories: []model.Category{
					{Code: "a", DisplayName: "First"},
					{Code: "b", DisplayName: "Second"},
				},
				SchedulePath:           "/tmp/plan.ics",
				DatabasePath:           "/tmp/monitor.db",
				LogLevel:               "debug",
				CheckIntervalMinutes:   5,
				PersistOnNotifyFailure: true,
			},
		},
		{
			name:    "invalid chat id",
			env:     merge(required, map[string]string{"TELEGRAM_CHAT_ID": "abc"}),
			wantErr: true,
		},
		{
			name:    "invalid interval",
			env:     merge(required, map[string]string{"CHECK_INTERVAL_MINUTES": "0"}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range configEnvKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []model.Category
		wantErr bool
	}{
		{
			name: "single pair",
			raw:  "code=Display Name",
			want: []model.Category{{Code: "code", DisplayName: "Display Name"}},
		},
		{
			name: "trailing semicolon and spaces",
			raw:  " a = One ; b = Two ;",
			want: []model.Category{
				{Code: "a", DisplayName: "One"},
				{Code: "b", DisplayName: "Two"},
			},
		},
		{
			name: "display name may contain equals",
			raw:  "a=x=y",
			want: []model.Category{{Code: "a", DisplayName: "x=y"}},
		},
		{name: "empty", raw: "", wantErr: true},
		{name: "only separators", raw: " ; ; ", wantErr: true},
		{name: "missing name", raw: "code", wantErr: true},
		{name: "missing code", raw: "=name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategories(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseCategories() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategories() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCategories() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrNoCategories(t *testing.T) {
	_, err := ParseCategories("")
	if !errors.Is(err, ErrNoCategories) {
		t.Errorf("ParseCategories(\"\") = %v, want ErrNoCategories", err)
	}
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

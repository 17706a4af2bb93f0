package envstruct_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/calicoach/internal/envstruct"
)

type serverConfig struct {
	Addr              string        `env:"ADDR" envDefault:"localhost:8081"`
	APIKey            string        `env:"API_KEY" envDefault:""`
	MaxGenerations    int           `env:"MAX_GENERATIONS" envDefault:"4"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"25s"`
	Debug             bool          `env:"DEBUG" envDefault:"false"`
	Untagged          string
}

type base struct {
	Addr string `env:"ADDR"`
}

type withEmbedded struct {
	base

	Model string `env:"MODEL" envDefault:"gpt"`
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestPopulate(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		var got serverConfig
		if err := envstruct.Populate(&got, envMap(nil)); err != nil {
			t.Fatalf("Populate() error = %v", err)
		}
		want := serverConfig{
			Addr:              "localhost:8081",
			APIKey:            "",
			MaxGenerations:    4,
			GenerationTimeout: 25 * time.Second,
			Debug:             false,
			Untagged:          "",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Populate() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Environment overrides defaults", func(t *testing.T) {
		got := serverConfig{Untagged: "kept"} //nolint:exhaustruct // the rest is populated
		err := envstruct.Populate(&got, envMap(map[string]string{
			"ADDR":               "localhost:0",
			"API_KEY":            "sk-test",
			"MAX_GENERATIONS":    "8",
			"GENERATION_TIMEOUT": "1m30s",
			"DEBUG":              "true",
		}))
		if err != nil {
			t.Fatalf("Populate() error = %v", err)
		}
		want := serverConfig{
			Addr:              "localhost:0",
			APIKey:            "sk-test",
			MaxGenerations:    8,
			GenerationTimeout: 90 * time.Second,
			Debug:             true,
			Untagged:          "kept",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Populate() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Embedded struct fields", func(t *testing.T) {
		var got withEmbedded
		if err := envstruct.Populate(&got, envMap(map[string]string{"ADDR": ":80"})); err != nil {
			t.Fatalf("Populate() error = %v", err)
		}
		if got.Addr != ":80" || got.Model != "gpt" {
			t.Errorf("Populate() = %+v", got)
		}
	})
}

func TestPopulate_errors(t *testing.T) {
	var (
		required struct {
			Secret string `env:"SECRET"`
		}
		number struct {
			Workers int `env:"WORKERS"`
		}
		float struct {
			Ratio float64 `env:"RATIO"`
		}
	)
	tests := []struct {
		name    string
		v       any
		env     map[string]string
		wantErr error
	}{
		{name: "nil", v: nil, env: nil, wantErr: envstruct.ErrNotStructPointer},
		{name: "struct value", v: serverConfig{}, env: nil, wantErr: envstruct.ErrNotStructPointer}, //nolint:exhaustruct // zero
		{name: "nil pointer", v: (*serverConfig)(nil), env: nil, wantErr: envstruct.ErrNotStructPointer},
		{name: "missing without default", v: &required, env: nil, wantErr: envstruct.ErrEnvNotSet},
		{name: "malformed int", v: &number, env: map[string]string{"WORKERS": "four"}, wantErr: envstruct.ErrInvalidValue},
		{
			name:    "malformed duration",
			v:       &serverConfig{}, //nolint:exhaustruct // populated
			env:     map[string]string{"GENERATION_TIMEOUT": "25"},
			wantErr: envstruct.ErrInvalidValue,
		},
		{name: "unsupported kind", v: &float, env: map[string]string{"RATIO": "1.5"}, wantErr: envstruct.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := envstruct.Populate(tt.v, envMap(tt.env)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Populate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPopulate_reportsAllErrors(t *testing.T) {
	var cfg struct {
		A string `env:"A"`
		B int    `env:"B"`
	}
	err := envstruct.Populate(&cfg, envMap(map[string]string{"B": "x"}))
	if !errors.Is(err, envstruct.ErrEnvNotSet) || !errors.Is(err, envstruct.ErrInvalidValue) {
		t.Errorf("Populate() error = %v, want both missing and invalid", err)
	}
}

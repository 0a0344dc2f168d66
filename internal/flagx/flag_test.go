package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "conf.json", "-a", "localhost"}, []string{"-c"}, []string{"-c", "conf.json"}},
		{"equals form", []string{"--config=alt.json", "-d", "memory://"}, []string{"--config"}, []string{"--config=alt.json"}},
		{"order preserved", []string{"-z", "UTC", "-c", "a.json", "-a", ":1"}, []string{"-c", "-z"}, []string{"-z", "UTC", "-c", "a.json"}},
		{"unknown dropped", []string{"-x", "1", "--y=2", "positional"}, []string{"-c"}, []string{}},
		{"trailing flag without value", []string{"-c"}, []string{"-c"}, []string{"-c"}},
		{"next flag is not a value", []string{"-c", "-store-timeout=1s"}, []string{"-c"}, []string{"-c"}},
		{"value may start with dash after equals", []string{"--config=--odd.json"}, []string{"--config"}, []string{"--config=--odd.json"}},
		{"empty", nil, []string{"-c"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-a", ":50051", "-c", "server.json"}, "server.json"},
		{"long", []string{"-config", "prod.json"}, "prod.json"},
		{"long equals", []string{"--config=dev.json", "-d", "memory://"}, "dev.json"},
		{"absent", []string{"-a", ":50051"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}

package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCmd_RequiresExactlyOneSource(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"neither", []string{"seed"}},
		{"both", []string{"seed", "--fixture", "x.json", "--fake", "3"}},
		{"reset with both", []string{"seed", "--reset", "--fixture", "x.json", "--fake", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(tt.args)
			err := rootCmd.Execute()
			assert.ErrorContains(t, err, "exactly one of --fixture or --fake")
		})
	}
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("backend", "mock", "")
	cmd.Flags().String("addr", ":8080", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--backend", "redis", "--addr", ":9090"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 50, cfg.PageSize)
}

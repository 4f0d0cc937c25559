package commands

import (
	"os"
	"testing"

	"github.com/concave-dev/orderpace/cmd/orderpaced/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFlagsFeedConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cmd := &cobra.Command{Use: "orderpaced"}
	SetupFlags(cmd)

	for _, name := range []string{"api", "data-dir", "concurrency", "batch-workers",
		"queue-size", "store", "token", "variant", "config", "log-level", "log-file"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag --%s", name)
	}

	require.NoError(t, cmd.Flags().Parse([]string{
		"--store=demo.myshopify.com", "--variant=77", "--batch-workers=2", "--api=127.0.0.1:9100",
	}))

	cfg, err := config.Load(cmd.Flags(), "")
	require.NoError(t, err)
	require.NoError(t, config.ValidateConfig(cfg))

	assert.Equal(t, "demo.myshopify.com", cfg.StoreURL)
	assert.Equal(t, "77", cfg.VariantID)
	assert.Equal(t, 2, cfg.BatchWorkers)
	assert.Equal(t, 9100, cfg.APIPort)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"], "run command registered")
	assert.True(t, names["compile"], "compile command registered")
}

func TestRunFlags(t *testing.T) {
	for _, flag := range []string{"learn", "no-replay", "junit"} {
		require.NotNil(t, runCmd.Flags().Lookup(flag), flag)
	}
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("mirror-url"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRunRequiresArguments(t *testing.T) {
	err := runCmd.Args(runCmd, nil)
	assert.Error(t, err)
	assert.NoError(t, runCmd.Args(runCmd, []string{"smoke.yaml"}))
}

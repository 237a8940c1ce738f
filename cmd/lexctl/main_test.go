package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
		assert.NotNil(t, c.RunE, c.Name())
	}
	for _, want := range []string{"migrate", "send-report", "liquidate-all", "next-number"} {
		assert.True(t, names[want], want)
	}

	f := rootCmd.PersistentFlags().Lookup("env")
	require.NotNil(t, f)
	assert.Equal(t, ".env", f.DefValue)
}

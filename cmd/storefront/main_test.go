package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteList(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"route:list"})
	require.NoError(t, rootCmd.Execute())

	got := out.String()
	assert.Contains(t, got, "METHOD")
	assert.Contains(t, got, "/api/admin/orders/{id}/photos")
	assert.Contains(t, got, "admin.orders.update")
	assert.Contains(t, got, "/healthz")
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "run", "route:list", "migrate", "migrate:rollback", "migrate:status", "seed"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.NotEqual(t, rootCmd, cmd, name)
	}
}

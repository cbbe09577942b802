package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/simple-easy-issues/internal/config"
)

func TestPrintConfig_MasksSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-very-long-secret-value-for-tests-only-123456")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := config.Load("")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printConfig(&out, cfg))

	assert.NotContains(t, out.String(), "a-very-long-secret-value")
	assert.NotContains(t, out.String(), "hunter2")

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "memory", decoded["store_backend"])
	assert.Equal(t, "********", decoded["jwt_secret"])
	assert.Equal(t, "********", decoded["redis_password"])
}

func TestRootCmd_InitStoreWithMemoryBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"init-store"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "memory backend")
}

func TestRootCmd_RejectsMissingConfigFile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "--config", "/nonexistent/issues.yaml"})

	assert.Error(t, root.Execute())
	configFile = ""
}

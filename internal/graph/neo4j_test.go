package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardlore/cardlore/internal/types"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			URI:               "bolt://localhost:7687",
			Username:          "neo4j",
			Password:          "password",
			ConnectionTimeout: 30 * time.Second,
			ConnectAttempts:   3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "empty URI", mutate: func(c *Config) { c.URI = "" }, wantErr: true},
		{name: "empty username", mutate: func(c *Config) { c.Username = "" }, wantErr: true},
		{name: "empty password", mutate: func(c *Config) { c.Password = "" }, wantErr: true},
		{name: "invalid connection timeout", mutate: func(c *Config) { c.ConnectionTimeout = 0 }, wantErr: true},
		{name: "no connect attempts", mutate: func(c *Config) { c.ConnectAttempts = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)
			err := config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				var loreErr *types.LoreError
				require.True(t, errors.As(err, &loreErr))
				assert.Equal(t, ErrCodeGraphInvalidConfig, loreErr.Code)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "bolt://localhost:7687", config.URI)
	assert.Equal(t, "", config.Database)
	assert.Equal(t, 50, config.MaxConnectionPoolSize)
	assert.Equal(t, 5, config.ConnectAttempts)
	require.NoError(t, config.Validate())
}

func TestNewNeo4jClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := NewNeo4jClient(DefaultConfig())

		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Nil(t, client.driver)
	})

	t.Run("invalid config", func(t *testing.T) {
		client, err := NewNeo4jClient(Config{Username: "neo4j", Password: "x"})

		require.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestNeo4jClient_NotConnected(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	called := false
	err = client.WithReadSession(ctx, func(Runner) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, types.IsInfrastructure(err))

	health := client.Health(ctx)
	assert.False(t, health.IsHealthy())

	assert.NoError(t, client.Close(ctx))
}

func TestClassifyDriverError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code types.ErrorCode
	}{
		{
			name: "syntax error",
			err:  &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad"},
			code: ErrCodeGraphInvalidQuery,
		},
		{
			name: "other server error",
			err:  &neo4j.Neo4jError{Code: "Neo.TransientError.General.MemoryPoolOutOfMemoryError", Msg: "oom"},
			code: ErrCodeGraphQueryFailed,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			code: ErrCodeGraphQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyDriverError(tt.err)
			var loreErr *types.LoreError
			require.True(t, errors.As(err, &loreErr))
			assert.Equal(t, tt.code, loreErr.Code)
			assert.Equal(t, types.KindInfrastructure, loreErr.Kind)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConvertNeo4jRecords(t *testing.T) {
	records := []*neo4j.Record{
		{Keys: []string{"name", "colors"}, Values: []any{"Llanowar Elves", []any{"G"}}},
		{Keys: []string{"name", "colors"}, Values: []any{"Ornithopter", []any{}}},
	}

	result := convertNeo4jRecords(records)

	assert.Equal(t, []string{"name", "colors"}, result.Columns)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Llanowar Elves", result.Records[0]["name"])
	assert.Equal(t, []any{}, result.Records[1]["colors"])

	empty := convertNeo4jRecords(nil)
	assert.NotNil(t, empty.Records)
	assert.Empty(t, empty.Records)
}

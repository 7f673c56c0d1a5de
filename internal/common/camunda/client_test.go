package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copro-workers/internal/common/config"
)

func newTestClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "publish")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("process definition not found")
	}, "create-instance")

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrCommandRejected)
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	c := newTestClient(2)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("context deadline exceeded")
	}, "complete")

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrBrokerTimeout)
	assert.Contains(t, err.Error(), "after 2 retries")
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := newTestClient(5)
	c.config.RetryConfig.BaseDelay = time.Second
	c.config.RetryConfig.MaxDelay = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, errors.New("connection reset by peer")
	}, "activate")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	retry := &RetryConfig{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, time.Second, backoff(retry, 0))
	assert.Equal(t, 4*time.Second, backoff(retry, 2))
	assert.Equal(t, 10*time.Second, backoff(retry, 5))
	assert.Equal(t, 10*time.Second, backoff(retry, 70))
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"connection refused", ErrBrokerUnavailable},
		{"service unavailable", ErrBrokerUnavailable},
		{"deadline exceeded", ErrBrokerTimeout},
		{"resource already exists", ErrCommandRejected},
		{"permission denied", ErrCommandRejected},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.ErrorIs(t, mapZeebeError(errors.New(tt.msg), "op", 0), tt.want)
		})
	}

	plain := mapZeebeError(errors.New("invalid variables"), "op", 0)
	assert.NotErrorIs(t, plain, ErrCommandRejected)
	assert.Contains(t, plain.Error(), `zeebe operation "op"`)
}

func TestConfigFrom(t *testing.T) {
	cc := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 5000, ConnectRetries: 7})

	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.Equal(t, 5*time.Second, cc.RequestTimeout)
	assert.Equal(t, 7, cc.RetryConfig.MaxRetries)
	assert.Equal(t, 3, DefaultRetryConfig.MaxRetries)
}

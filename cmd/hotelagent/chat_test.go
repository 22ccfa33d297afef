package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/hotelagent/agent"
	"github.com/tbxark/hotelagent/config"
)

func TestRunChatOffline(t *testing.T) {
	cfg := &config.Config{
		Offline: true,
		Store:   config.StoreConfig{Backend: config.BackendMemory},
		Log:     config.LogConfig{Level: "error"},
		Booking: config.BookingConfig{
			HotelName:      "GrandVista Hotel",
			PaymentMethods: []string{"credit card", "debit card", "cash", "paypal"},
		},
	}
	ctx := agent.WithSessionKey(context.Background(), "test")
	a, err := newApp(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	in := strings.NewReader("My name is Ada Lovelace and I want to book a room\n/state\n/reset\n/state\n/exit\n")
	var out bytes.Buffer
	require.NoError(t, runChat(ctx, a, in, &out))

	text := out.String()
	assert.Contains(t, text, "GrandVista's Hotel booking assistant")
	assert.Contains(t, text, "Ada, ")
	assert.Contains(t, text, `"full_name": "Ada Lovelace"`)
	assert.Contains(t, text, "No booking yet")
}

func TestNewAppUsesConfiguredPaymentMethods(t *testing.T) {
	cfg := &config.Config{
		Offline: true,
		Store:   config.StoreConfig{Backend: config.BackendMemory},
		Log:     config.LogConfig{Level: "error"},
		Booking: config.BookingConfig{
			HotelName:      "GrandVista Hotel",
			PaymentMethods: []string{"Credit Card", "Bank Transfer"},
		},
	}
	ctx := agent.WithSessionKey(context.Background(), "pay")
	a, err := newApp(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.health)

	turn, err := a.manager.Turn(ctx, "I want to book a room and pay by bank transfer")
	require.NoError(t, err)
	assert.Equal(t, "bank transfer", turn.Session.PaymentMethod.OrElse(""))
	assert.True(t, turn.Session.ValidInfo)
}

func TestNewAppRedisHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Offline: true,
		Store: config.StoreConfig{
			Backend: config.BackendRedis,
			Redis:   config.RedisConfig{Addr: mr.Addr(), Prefix: "test:", TTL: time.Hour},
		},
		Log:     config.LogConfig{Level: "error"},
		Booking: config.BookingConfig{HotelName: "GrandVista Hotel"},
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.health)
	require.NoError(t, a.health(ctx))
	mr.Close()
	assert.Error(t, a.health(ctx))
}

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestInitSlogJSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	buf := bytes.NewBuffer(nil)
	InitSlog(LogOptions{Level: "warn", JSON: true, Output: buf})

	slog.Info("hidden")
	slog.Warn("shown", "records", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["msg"])
	require.Equal(t, float64(3), line["records"])
}

func TestSetupWithoutExporters(t *testing.T) {
	tel, err := Setup(context.Background(), "recordscrape-test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestOtlpConnConfigProtocol(t *testing.T) {
	testCases := []struct {
		name     string
		config   OtlpConnConfig
		protocol string
		endpoint string
		enabled  bool
	}{
		{name: "none", protocol: "http"},
		{
			name:     "http",
			config:   OtlpConnConfig{HttpEndpoint: "http://localhost:4318"},
			protocol: "http",
			endpoint: "http://localhost:4318",
			enabled:  true,
		},
		{
			name: "grpc wins",
			config: OtlpConnConfig{
				GrpcEndpoint: "http://localhost:4317",
				HttpEndpoint: "http://localhost:4318",
			},
			protocol: "grpc",
			endpoint: "http://localhost:4317",
			enabled:  true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.enabled, test.config.Enabled())
			require.Equal(t, test.protocol, test.config.protocol())
			require.Equal(t, test.endpoint, test.config.endpoint())
		})
	}
}

package mqtt

import (
	"testing"

	"github.com/lumenweave/lumenweave-core/internal/infrastructure/config"
)

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "lumenweave-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testMQTTConfig()
	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("Servers = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://127.0.0.1:1883" {
		t.Errorf("broker URL = %q, want %q", got, "tcp://127.0.0.1:1883")
	}
	if opts.ClientID != "lumenweave-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "lumenweave-test")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect should be enabled")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].String(); got != "ssl://127.0.0.1:8883" {
		t.Errorf("broker URL = %q, want %q", got, "ssl://127.0.0.1:8883")
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig should be set when TLS is enabled")
	}
}

func TestBuildClientOptions_Auth(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Auth.Username = "core"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if opts.Username != "core" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want core/secret", opts.Username, opts.Password)
	}
}

func TestConfigureLWT(t *testing.T) {
	cfg := testMQTTConfig()
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	if !opts.WillEnabled {
		t.Fatal("WillEnabled should be true after configureLWT")
	}
	wantTopic := Topics{}.SystemStatus()
	if opts.WillTopic != wantTopic {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, wantTopic)
	}
	if !opts.WillRetained {
		t.Error("LWT should be retained so late subscribers see offline status")
	}
	if opts.WillQos != 1 {
		t.Errorf("WillQos = %d, want 1", opts.WillQos)
	}
}

package mqtt

import (
	"errors"
	"strings"
	"testing"

	"github.com/lumenlab/sweep-core/internal/infrastructure/config"
)

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "sweep started", got: topics.SweepStarted(), want: "sweepcore/sweep/started"},
		{name: "sweep finished", got: topics.SweepFinished(), want: "sweepcore/sweep/finished"},
		{name: "combination", got: topics.SweepCombination(), want: "sweepcore/sweep/combination"},
		{name: "system status", got: topics.SystemStatus(), want: "sweepcore/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.lab",
			Port:     1883,
			ClientID: "sweepcore-rig2",
		},
		Auth: config.MQTTAuthConfig{Username: "sweep", Password: "secret"},
		QoS:  1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://broker.lab:1883" {
		t.Errorf("broker = %v, want tcp://broker.lab:1883", opts.Servers)
	}
	if opts.ClientID != "sweepcore-rig2" {
		t.Errorf("client ID = %s, want sweepcore-rig2", opts.ClientID)
	}
	if opts.Username != "sweep" {
		t.Errorf("username = %s, want sweep", opts.Username)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.lab", Port: 8883, TLS: true, ClientID: "sweepcore"},
	}

	opts := buildClientOptions(cfg)
	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %s, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig is nil with TLS enabled")
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("sweepcore")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"sweepcore"`) {
		t.Errorf("online payload = %s", online)
	}

	offline := buildOfflinePayload("sweepcore")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
}

func TestPublishValidation(t *testing.T) {
	c := &Client{}

	if err := c.Publish("", []byte("x"), 0, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("sweepcore/sweep/started", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("bad QoS error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Publish("sweepcore/sweep/started", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v, want ErrNotConnected", err)
	}
}

package bootstrap

import (
	"testing"

	"go.uber.org/zap"
)

func TestSplitBrokers(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"localhost:9092", 1},
		{"kafka1:9092, kafka2:9092", 2},
		{" , kafka1:9092, ", 1},
	}
	for _, tt := range tests {
		if got := splitBrokers(tt.raw); len(got) != tt.want {
			t.Errorf("splitBrokers(%q) = %v, want %d brokers", tt.raw, got, tt.want)
		}
	}
}

func TestValidateConfig_APIVersion(t *testing.T) {
	logger := zap.NewNop()

	cfg := AppConfig{MongoURI: "mongodb://localhost:27017", TeamFoldersAPIVersion: 1}
	if err := ValidateConfig(nil, cfg, logger); err != nil {
		t.Errorf("version 1 rejected: %v", err)
	}

	cfg.TeamFoldersAPIVersion = 3
	if err := ValidateConfig(nil, cfg, logger); err == nil {
		t.Error("expected version 3 to be rejected")
	}
}

func TestValidateConfig_KafkaTopicRequired(t *testing.T) {
	cfg := AppConfig{
		MongoURI:              "mongodb://localhost:27017",
		TeamFoldersAPIVersion: 1,
		KafkaBrokers:          []string{"localhost:9092"},
	}
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected missing kafka_topic to be rejected")
	}

	cfg.KafkaTopic = "assohub.events"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err != nil {
		t.Errorf("valid kafka config rejected: %v", err)
	}
}

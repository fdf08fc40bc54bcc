package cmd

import (
	"strings"
	"testing"

	"github.com/arthurgrandao/scinewsAI/internal/model"
)

func TestFormatTopicLine(t *testing.T) {
	topic := model.Topic{ID: "t-ml", Name: "machine learning", Description: "Learning from data"}

	line := formatTopicLine(topic, true)
	if !strings.HasPrefix(line, "*") {
		t.Errorf("expected subscribed marker, got %q", line)
	}
	if !strings.Contains(line, "t-ml") || !strings.Contains(line, "machine learning") {
		t.Errorf("expected id and name, got %q", line)
	}

	line = formatTopicLine(model.Topic{ID: "t-bio", Name: "biology"}, false)
	if strings.HasPrefix(line, "*") {
		t.Errorf("expected no marker for unsubscribed topic, got %q", line)
	}
	if strings.Contains(line, " - ") {
		t.Errorf("expected no description separator, got %q", line)
	}
}

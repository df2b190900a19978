package pubsub

import (
	"testing"

	"github.com/freshfold/laundry-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project string
		name    string
		want    string
	}{
		{"ff-prod", "domain", "projects/ff-prod/topics/domain"},
		{"ff-prod", " domain ", "projects/ff-prod/topics/domain"},
		{"ff-prod", "projects/other/topics/x", "projects/other/topics/x"},
		{"", "domain", ""},
		{"ff-prod", "", ""},
	}
	for _, tc := range cases {
		if got := topicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestTopicNames(t *testing.T) {
	if names := topicNames(config.PubSubConfig{DLQTopic: "dlq"}); len(names) != 0 {
		t.Fatalf("expected no topics without a domain topic, got %v", names)
	}
	names := topicNames(config.PubSubConfig{DomainTopic: "domain", DLQTopic: "dlq"})
	if len(names) != 2 || names[0] != "domain" || names[1] != "dlq" {
		t.Fatalf("unexpected topics %v", names)
	}
}

func TestClientOptions(t *testing.T) {
	if opts := clientOptions(config.GCPConfig{}); len(opts) != 0 {
		t.Fatalf("expected default credentials, got %d options", len(opts))
	}
	if opts := clientOptions(config.GCPConfig{CredentialsJSON: `{"type":"service_account"}`}); len(opts) != 1 {
		t.Fatalf("expected one option, got %d", len(opts))
	}
}

package dispatch

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
)

func TestNewWithoutBrokersLogsOnly(t *testing.T) {
	p := New(nil, "creativehub.campaigns")
	if _, ok := p.(LogPublisher); !ok {
		t.Fatalf("expected LogPublisher, got %T", p)
	}

	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(old)

	if err := p.Publish(context.Background(), Intent{Kind: KindSms, ID: "sms-1", Target: "+15550100"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(buf.String(), `"action":"dispatch.intent"`) || !strings.Contains(buf.String(), "sms-1") {
		t.Fatalf("intent not logged: %s", buf.String())
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewWithBrokersUsesKafka(t *testing.T) {
	p := New([]string{"127.0.0.1:9092"}, "creativehub.campaigns")
	defer p.Close()
	kp, ok := p.(*KafkaPublisher)
	if !ok {
		t.Fatalf("expected *KafkaPublisher, got %T", p)
	}
	if kp.topic != "creativehub.campaigns" {
		t.Fatalf("topic = %q", kp.topic)
	}
}

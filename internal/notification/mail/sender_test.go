package mail

import (
	"strings"
	"testing"

	"leadflow_backend/platform/config"
)

func TestNewSenderRequiresHostFromAndRecipients(t *testing.T) {
	if NewSender(&config.Config{SMTPHost: "smtp.local", SMTPFrom: "bot@leadflow.local"}) != nil {
		t.Fatalf("expected nil sender without recipients")
	}
	s := NewSender(&config.Config{SMTPHost: "smtp.local", SMTPPort: 587, SMTPFrom: "bot@leadflow.local", SMTPRecipients: []string{"team@leadflow.local"}})
	if s == nil {
		t.Fatalf("expected configured sender")
	}
}

func TestMessageCarriesSubjectAndRecipients(t *testing.T) {
	s := &Sender{from: "bot@leadflow.local", recipients: []string{"a@leadflow.local", "b@leadflow.local"}}
	msg, err := s.message("Birthday report", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := msg.GetToString(); len(got) != 2 {
		t.Fatalf("expected two recipients, got %v", got)
	}
	if subj := msg.GetGenHeader("Subject"); len(subj) != 1 || !strings.Contains(subj[0], "Birthday report") {
		t.Fatalf("unexpected subject header: %v", subj)
	}
}

func TestMessageRejectsInvalidFrom(t *testing.T) {
	s := &Sender{from: "not an address", recipients: []string{"a@leadflow.local"}}
	if _, err := s.message("x", "y"); err == nil {
		t.Fatalf("expected invalid from address to fail")
	}
}

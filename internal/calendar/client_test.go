package calendar

import (
	"context"
	"testing"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient(context.Background(), "work", "access-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.Account() != "work" {
		t.Errorf("Account() = %q, want work", c.Account())
	}
}

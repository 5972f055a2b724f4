package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"munjiz/internal/logging"
	"munjiz/internal/models"
)

func TestAnalyzeWithoutKeyReturnsErrorText(t *testing.T) {
	a, err := New(context.Background(), "", "gemini-2.5-flash", logging.NewDiscard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := a.Analyze(context.Background(), nil); got != ErrorText {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestAnalyzeFallbacks(t *testing.T) {
	log := logging.NewDiscard().Component("assistant")
	var prompt string
	a := &Assistant{log: log, generate: func(_ context.Context, p string) (string, error) {
		prompt = p
		return "  ", nil
	}}
	tasks := []models.Task{{Title: "Budget", DueDate: "2026-11-01", Priority: models.PriorityUrgent, Status: models.StatusPending, Description: "secret"}}
	if got := a.Analyze(context.Background(), tasks); got != EmptyResponseText {
		t.Fatalf("unexpected text %q", got)
	}
	if !strings.Contains(prompt, `"title":"Budget"`) || !strings.Contains(prompt, `"priority":"urgent"`) {
		t.Fatalf("prompt missing task summary:\n%s", prompt)
	}
	if strings.Contains(prompt, "secret") {
		t.Fatal("prompt should only carry title, due date, priority and status")
	}

	a.generate = func(context.Context, string) (string, error) { return "", errors.New("quota") }
	if got := a.Analyze(context.Background(), tasks); got != ErrorText {
		t.Fatalf("unexpected text %q", got)
	}

	a.generate = func(context.Context, string) (string, error) { return "## ملخص", nil }
	if got := a.Analyze(context.Background(), tasks); got != "## ملخص" {
		t.Fatalf("unexpected text %q", got)
	}
}

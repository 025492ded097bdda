package templates

import (
	"strings"
	"testing"
	"time"
)

func TestRenderWelcome(t *testing.T) {
	t.Parallel()

	b := Brand{AppName: "Tasks", CompanyName: "Acme", AppURL: "https://tasks.test"}
	data := NewWelcomeData(b, "alice", "alice@example.com", WithTime(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	subject, text, html, err := Render(Welcome, data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if subject != "Welcome to Tasks, alice" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"alice@example.com", "01 March 2024, 09:30", "https://tasks.test", "Acme"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(html, `href="https://tasks.test"`) {
		t.Errorf("html missing app link:\n%s", html)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	t.Parallel()

	data := NewWelcomeData(Brand{}, "<script>x</script>", "a@x.com")
	subject, _, html, err := Render(Welcome, data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("html body is not escaped")
	}
	if !strings.HasPrefix(subject, "Welcome to Task Manager") {
		t.Errorf("default app name not applied: %q", subject)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	t.Parallel()

	if _, _, _, err := Render("nope", nil); err == nil {
		t.Error("Render() expected error for unknown template")
	}
}

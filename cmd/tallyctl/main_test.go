package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/tallysheet/internal/auth"
	"github.com/mmynk/tallysheet/internal/ledger"
	"github.com/mmynk/tallysheet/internal/tallysheet"
)

// run executes tallyctl with a temporary config and database.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := "auth:\n  jwt_secret: test-secret\nstore:\n  db_path: " + filepath.Join(dir, "tally.db") + "\n"
		if err := os.WriteFile(configPath, []byte(cfg), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAdminCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "seed", "--plant", "North Plant")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !strings.Contains(out, "14 created, 0 skipped") {
		t.Errorf("unexpected seed output: %q", out)
	}

	out, err = run(t, dir, "seed", "--plant", "north plant")
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if !strings.Contains(out, "0 created, 14 skipped") {
		t.Errorf("expected existing plant to be reused: %q", out)
	}

	out, err = run(t, dir, "session", "--plant", "North Plant", "--customer", "Acme Poultry", "--date", "2026-03-01")
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if want := "session 1: Acme Poultry at North Plant on 2026-03-01"; !strings.Contains(out, want) {
		t.Errorf("session output = %q, want %q", out, want)
	}

	out, err = run(t, dir, "require", "--session", "1", "--classification", "5", "--bags", "12")
	if err != nil {
		t.Fatalf("require failed: %v", err)
	}
	if !strings.Contains(out, "required 12, tally 0, dispatcher 0") {
		t.Errorf("unexpected require output: %q", out)
	}

	if _, err := run(t, dir, "session", "--plant", "Nowhere", "--customer", "Acme"); err == nil {
		t.Error("expected an error for an unknown plant")
	}
	if _, err := run(t, dir, "require", "--session", "1", "--classification", "5", "--bags=-1"); err == nil {
		t.Error("expected an error for negative bags")
	}
}

func TestSessionsCommand(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "seed", "--plant", "North Plant"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for _, args := range [][]string{
		{"--customer", "Acme Poultry", "--date", "2026-03-01"},
		{"--customer", "Bayside Farms", "--date", "2026-03-05"},
	} {
		if _, err := run(t, dir, append([]string{"session", "--plant", "North Plant"}, args...)...); err != nil {
			t.Fatalf("session failed: %v", err)
		}
	}

	out, err := run(t, dir, "sessions", "--plant", "North Plant")
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "Bayside Farms") || !strings.Contains(lines[2], "Acme Poultry") {
		t.Errorf("expected both sessions newest first:\n%s", out)
	}

	out, err = run(t, dir, "sessions", "--from", "2026-03-02")
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	if strings.Contains(out, "Acme Poultry") || !strings.Contains(out, "Bayside Farms") {
		t.Errorf("--from did not filter:\n%s", out)
	}

	if _, err := run(t, dir, "sessions", "--to", "March"); err == nil {
		t.Error("expected an error for an invalid --to date")
	}
}

func TestTokenCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "token", "--user", "42", "--view-logs")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}

	claims, err := auth.NewJWTManager("test-secret", 0).Validate(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("minted token is invalid: %v", err)
	}
	if claims.UserID != 42 || !claims.Has(auth.PermissionViewTallyLogs) {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestPrintMismatches(t *testing.T) {
	var buf bytes.Buffer
	if err := printMismatches(&buf, 2, nil); err != nil {
		t.Fatalf("printMismatches failed: %v", err)
	}
	if got := buf.String(); got != "no mismatches above 2 bags\n" {
		t.Errorf("unexpected output: %q", got)
	}

	buf.Reset()
	err := printMismatches(&buf, 0, []ledger.Mismatch{{ClassificationID: 7, Required: 10, Tally: 9, Dispatcher: 6, Difference: 3}})
	if err != nil {
		t.Fatalf("printMismatches failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasSuffix(strings.TrimSpace(lines[1]), "3") {
		t.Errorf("unexpected table: %q", buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	err := printSummary(&buf, &tallysheet.Summary{
		Customers: []tallysheet.CustomerSummary{{
			CustomerName: "Acme Poultry",
			Items:        []tallysheet.SummaryItem{{Category: "DC", Classification: "P1", Bags: 4}},
			Subtotal:     4,
		}},
		GrandTotals: map[string]int{"DC": 4},
	})
	if err != nil {
		t.Fatalf("printSummary failed: %v", err)
	}
	for _, want := range []string{"Acme Poultry", "P1", "subtotal", "TOTAL"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

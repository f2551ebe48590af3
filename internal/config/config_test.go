package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_TOP_N", "")
	t.Setenv("DEFAULT_CURRENCY", "eur")
	t.Setenv("IMAP_SECURE", "off")
	t.Setenv("RECONCILE_AMOUNT_TOLERANCE", "junk")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultTopN != 10 {
		t.Fatalf("got %d want 10", cfg.DefaultTopN)
	}
	if cfg.DefaultCurrency != "EUR" {
		t.Fatalf("got %q want EUR", cfg.DefaultCurrency)
	}
	if cfg.IMAPSecure {
		t.Fatal("IMAP_SECURE=off should disable TLS")
	}
	if cfg.ReconcileAmountTolerance != 0.01 {
		t.Fatalf("got %v want 0.01", cfg.ReconcileAmountTolerance)
	}
}

func TestRequire(t *testing.T) {
	var cfg Config
	if err := cfg.Require("IMAP_HOST", "  "); err == nil {
		t.Fatal("expected error for blank value")
	}
	if err := cfg.Require("IMAP_HOST", "mail.example.test"); err != nil {
		t.Fatal(err)
	}
}

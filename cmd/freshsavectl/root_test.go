package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	// flag values are package globals and survive between executions
	configPath, driverFlag, badgerPath, collectionID, verbose = "", "", "", "", false
	listCategory, seedDryRun = "All", false
	exportOut, exportPlain, importFile, importOverwrite = "", false, "", false

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("freshsavectl %s: %v\n%s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

func TestRootHelp(t *testing.T) {
	out := run(t, "--help")
	if !strings.Contains(out, "export") || !strings.Contains(out, "seed") {
		t.Fatalf("expected subcommands in help output, got: %s", out)
	}
}

func TestSeedDryRunPrintsTable(t *testing.T) {
	out := run(t, "seed", "--dry-run")
	if !strings.Contains(out, "Milk") || !strings.Contains(out, "CATEGORY") {
		t.Fatalf("unexpected dry-run output: %s", out)
	}
}

func TestSeedListExportImport(t *testing.T) {
	t.Setenv("FRESHSAVE_CONFIG", "")
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	archive := filepath.Join(dir, "backup", "pantry.json.zst")

	out := run(t, "--driver", "badger", "--badger-path", src, "seed")
	if got := strings.Count(out, "Added "); got != len(sampleItems(time.Now())) {
		t.Fatalf("expected every sample item to be added, got %d:\n%s", got, out)
	}

	out = run(t, "--driver", "badger", "--badger-path", src, "list", "--category", "Fruits")
	if !strings.Contains(out, "Bananas") || strings.Contains(out, "Milk") {
		t.Fatalf("category filter not applied: %s", out)
	}

	out = run(t, "--driver", "badger", "--badger-path", src, "expiring")
	for _, want := range []string{"Milk", "Spinach", "Bananas", "Quick Garden Salad"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in expiring output: %s", want, out)
		}
	}
	if strings.Contains(out, "Chicken breast") || strings.Contains(out, "Rice") {
		t.Fatalf("expired or undated items listed as expiring: %s", out)
	}

	out = run(t, "--driver", "badger", "--badger-path", src, "export", "--out", archive)
	if !strings.Contains(out, "Exported 7 items") {
		t.Fatalf("unexpected export output: %s", out)
	}

	out = run(t, "--driver", "badger", "--badger-path", dst, "import", "--file", archive)
	if !strings.Contains(out, "7 created, 0 updated, 0 skipped") {
		t.Fatalf("unexpected import output: %s", out)
	}

	out = run(t, "--driver", "badger", "--badger-path", dst, "import", "--file", archive, "--overwrite")
	if !strings.Contains(out, "0 created, 7 updated") {
		t.Fatalf("unexpected overwrite output: %s", out)
	}

	out = run(t, "--driver", "badger", "--badger-path", dst, "list")
	if !strings.Contains(out, "Tomato sauce") {
		t.Fatalf("imported items missing: %s", out)
	}
}

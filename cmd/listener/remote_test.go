package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	in := RemotesConfig{
		Active: "prod",
		Remotes: map[string]Remote{
			"prod":  {URL: "https://listener.example.com", GRPCAddr: "listener.example.com:9090", Token: "tok_abc", NATSURL: "nats://prod:4222"},
			"local": {URL: "http://localhost:8080"},
		},
	}
	if err := saveRemotesConfig(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Active != "prod" {
		t.Errorf("Active = %q, want %q", got.Active, "prod")
	}
	if got.Remotes["prod"] != in.Remotes["prod"] {
		t.Errorf("prod remote = %+v, want %+v", got.Remotes["prod"], in.Remotes["prod"])
	}
	if got.Remotes["local"].URL != "http://localhost:8080" {
		t.Errorf("local remote = %+v", got.Remotes["local"])
	}
}

func TestLoadRemotesConfig_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadRemotesConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Active != "" || cfg.Remotes == nil || len(cfg.Remotes) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSaveRemotesConfig_Permissions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := saveRemotesConfig(RemotesConfig{Remotes: map[string]Remote{}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, _ := remoteConfigPath()
	if !strings.HasSuffix(path, filepath.Join(".local", "state", "listener", "remotes.toml")) {
		t.Errorf("path = %s", path)
	}
	check := func(p string, want os.FileMode) {
		t.Helper()
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s permissions = %04o, want %04o", p, got, want)
		}
	}
	check(path, 0o600)
	check(filepath.Dir(path), 0o700)
}

func TestRemoteLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	for _, c := range []*cobra.Command{remoteAddCmd, remoteUseCmd, remoteListCmd, remoteShowCmd, remoteRemoveCmd} {
		c.SetOut(&buf)
	}
	mustRun := func(c *cobra.Command, args ...string) {
		t.Helper()
		if err := c.RunE(c, args); err != nil {
			t.Fatal(err)
		}
	}

	mustRun(remoteAddCmd, "b-local", "http://localhost:8080")
	mustRun(remoteAddCmd, "a-staging", "https://staging.example.com")
	mustRun(remoteAddCmd, "b-local", "http://localhost:8080") // upsert
	mustRun(remoteUseCmd, "b-local")

	cfg, _ := loadRemotesConfig()
	if cfg.Active != "b-local" || len(cfg.Remotes) != 2 {
		t.Fatalf("config = %+v", cfg)
	}

	buf.Reset()
	mustRun(remoteListCmd)
	out := buf.String()
	if !strings.Contains(out, "* b-local") {
		t.Errorf("list missing active marker; got:\n%s", out)
	}
	if strings.Index(out, "a-staging") > strings.Index(out, "b-local") {
		t.Errorf("list not sorted; got:\n%s", out)
	}

	buf.Reset()
	mustRun(remoteShowCmd)
	out = buf.String()
	if !strings.Contains(out, "http://localhost:8080") || !strings.Contains(out, "(active)") {
		t.Errorf("show missing expected content; got:\n%s", out)
	}

	mustRun(remoteRemoveCmd, "b-local")
	cfg, _ = loadRemotesConfig()
	if _, ok := cfg.Remotes["b-local"]; ok {
		t.Error("remote 'b-local' should be gone")
	}
	if cfg.Active != "" {
		t.Errorf("Active should be cleared, got %q", cfg.Active)
	}
}

func TestRemoteTokenMasking(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := remoteAddCmd.Flags().Set("token", "tok_verylongsecret"); err != nil {
		t.Fatalf("set token flag: %v", err)
	}
	t.Cleanup(func() { _ = remoteAddCmd.Flags().Set("token", "") })

	var buf bytes.Buffer
	remoteAddCmd.SetOut(&buf)
	if err := remoteAddCmd.RunE(remoteAddCmd, []string{"prod", "https://listener.example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := remoteUseCmd.RunE(remoteUseCmd, []string{"prod"}); err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	remoteListCmd.SetOut(&buf)
	if err := remoteListCmd.RunE(remoteListCmd, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "tok_verylongsecret") || !strings.Contains(buf.String(), "tok_very...") {
		t.Errorf("list token not truncated; got:\n%s", buf.String())
	}

	buf.Reset()
	remoteShowCmd.SetOut(&buf)
	if err := remoteShowCmd.RunE(remoteShowCmd, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "tok_verylongsecret") || !strings.Contains(buf.String(), "tok_very**********") {
		t.Errorf("show token not masked; got:\n%s", buf.String())
	}
}

func TestRemoteErrorCases(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"use unknown", func() error { return remoteUseCmd.RunE(remoteUseCmd, []string{"ghost"}) }},
		{"remove unknown", func() error { return remoteRemoveCmd.RunE(remoteRemoveCmd, []string{"ghost"}) }},
		{"show no active", func() error { return remoteShowCmd.RunE(remoteShowCmd, nil) }},
		{"show unknown", func() error { return remoteShowCmd.RunE(remoteShowCmd, []string{"ghost"}) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			if err := tc.fn(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	for _, tc := range []struct {
		token, want string
	}{
		{"", ""},
		{"short", "short"},
		{"12345678", "12345678"},
		{"123456789", "12345678..."},
	} {
		if got := maskToken(tc.token, 8, "..."); got != tc.want {
			t.Errorf("maskToken(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

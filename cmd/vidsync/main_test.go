package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidsync/internal/config"
	"vidsync/internal/session"
	"vidsync/internal/testsupport"
)

const stubProbe = `{"streams":[{"index":0,"codec_type":"video","codec_name":"h264","avg_frame_rate":"25/1"}],
"format":{"filename":"clip.mkv","duration":"6.000"}}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	videoA     string
	videoB     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	binDir := filepath.Join(base, "stubs")

	frame := filepath.Join(base, "frame.png")
	testsupport.WritePNG(t, frame, testsupport.PatternFrame(7, 1))
	payload := filepath.Join(base, "probe.json")
	testsupport.WriteFileContent(t, payload, stubProbe)

	cfg.Tools.FFprobe = testsupport.WriteStubBinary(t, binDir, "ffprobe", "cat '"+payload+"'")
	cfg.Tools.FFmpeg = testsupport.WriteStubBinary(t, binDir, "ffmpeg", `if [ "$1" = "-version" ]; then
  echo "ffmpeg version 7.1 Copyright (c) the FFmpeg developers"
  exit 0
fi
cat '`+frame+`'`)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		videoA:     filepath.Join(base, "a.mkv"),
		videoB:     filepath.Join(base, "b.mkv"),
	}
	testsupport.WriteFile(t, env.videoA, 1024)
	testsupport.WriteFile(t, env.videoB, 2048)
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestExecuteExitCodes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"config", "init", "--path", filepath.Join(t.TempDir(), "c.toml")}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	stderr.Reset()
	if code := execute([]string{"no-such-command"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "vidsync: ") {
		t.Fatalf("expected prefixed error, got %q", stderr.String())
	}
}

func TestCompareIdenticalVideos(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, "--config", env.configPath, "compare", env.videoA, env.videoB)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(out, "Similarity") || !strings.Contains(out, "100.00%") {
		t.Fatalf("expected similarity table, got:\n%s", out)
	}
	if !strings.Contains(out, "Average similarity: 100.00% over 6 frames") {
		t.Fatalf("expected average line, got:\n%s", out)
	}
	if !strings.Contains(out, "Overlap: 00:00.000 to 00:06.000 (00:06.000)") {
		t.Fatalf("expected overlap header, got:\n%s", out)
	}
}

func TestCompareWithoutOverlapReportsWindow(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, "--config", env.configPath, "compare", "--offset-a=7000", env.videoA, env.videoB)
	if !errors.Is(err, session.ErrNoOverlap) {
		t.Fatalf("err = %v, want ErrNoOverlap", err)
	}
	if !strings.Contains(err.Error(), "window 00:00.000 to -00:01.000") {
		t.Fatalf("error should describe the window: %v", err)
	}
}

func TestCompareJSONAppliesOffsets(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, "--config", env.configPath, "compare", "--json", "--offset-b=2000", env.videoA, env.videoB)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	var payload compareJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if payload.Cancelled {
		t.Fatal("unexpected cancelled flag")
	}
	if len(payload.Frames) != 4 {
		t.Fatalf("frames = %d, want 4", len(payload.Frames))
	}
	first := payload.Frames[0]
	if first.TimestampA != 0 || first.TimestampB != 2000 {
		t.Fatalf("first pair = (%d, %d), want (0, 2000)", first.TimestampA, first.TimestampB)
	}
}

func TestCompareRejectsMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, "--config", env.configPath, "compare", env.videoA, filepath.Join(filepath.Dir(env.videoA), "nope.mkv"))
	if err == nil || !strings.Contains(err.Error(), "video B") {
		t.Fatalf("expected video B error, got %v", err)
	}
}

func TestCompareReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.FFmpeg = filepath.Join(filepath.Dir(env.configPath), "missing-ffmpeg")
	writeTestConfig(t, env.configPath, env.cfg)

	_, err := runCLI(t, "--config", env.configPath, "compare", env.videoA, env.videoB)
	if err == nil || !strings.Contains(err.Error(), "missing dependencies: FFmpeg") {
		t.Fatalf("expected missing dependency error, got %v", err)
	}
}

func TestAutoIdenticalVerdict(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, "--config", env.configPath, "auto", env.videoA, env.videoB)
	if err != nil {
		t.Fatalf("auto: %v", err)
	}
	if !strings.Contains(out, "[OK] Identical") {
		t.Fatalf("expected identical verdict, got:\n%s", out)
	}
	if !strings.Contains(out, "Videos are perceptually identical") {
		t.Fatalf("expected summary, got:\n%s", out)
	}
}

func TestAutoWithoutOverlap(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, "--config", env.configPath, "auto", "--json", "--offset-a=7000", env.videoA, env.videoB)
	if err != nil {
		t.Fatalf("auto: %v", err)
	}
	var payload autoJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if payload.Identical || payload.Overall != 0 || len(payload.Samples) != 0 {
		t.Fatalf("unexpected result %+v", payload)
	}
	if !strings.Contains(payload.Summary, "No overlapping duration") {
		t.Fatalf("unexpected summary %q", payload.Summary)
	}
}

func TestOffsetSuggestsCompareFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, "--config", env.configPath, "offset", env.videoA, env.videoB)
	if err != nil {
		t.Fatalf("offset: %v", err)
	}
	if !strings.Contains(out, "--offset-b=0") {
		t.Fatalf("expected zero offset suggestion, got:\n%s", out)
	}
}

func TestStoreCommandsWithPersistence(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStore())

	if _, err := runCLI(t, "--config", env.configPath, "compare", env.videoA, env.videoB); err != nil {
		t.Fatalf("compare: %v", err)
	}
	out, err := runCLI(t, "--config", env.configPath, "store", "stats")
	if err != nil {
		t.Fatalf("store stats: %v", err)
	}
	if !strings.Contains(out, "Signatures") || !strings.Contains(out, "12") {
		t.Fatalf("expected 12 stored signatures, got:\n%s", out)
	}

	out, err = runCLI(t, "--config", env.configPath, "store", "purge", env.videoA)
	if err != nil {
		t.Fatalf("store purge: %v", err)
	}
	if !strings.Contains(out, "Removed 6 signatures") {
		t.Fatalf("unexpected purge output: %s", out)
	}
}

func TestStoreDisabled(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, "--config", env.configPath, "store", "stats")
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := env.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	out, err := runCLI(t, "--config", env.configPath, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ffmpeg version 7.1") {
		t.Fatalf("expected ffmpeg version, got:\n%s", out)
	}
	if !strings.Contains(out, "Signature store") || !strings.Contains(out, "Disabled") {
		t.Fatalf("expected disabled store line, got:\n%s", out)
	}
}

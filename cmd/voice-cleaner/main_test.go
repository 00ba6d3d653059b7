package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testProbeJSON = `{"streams":[{"index":0,"codec_type":"video","codec_name":"h264"},{"index":1,"codec_type":"audio","codec_name":"aac","channels":2,"channel_layout":"stereo","tags":{"language":"eng"}}],"format":{"duration":"10.0","size":"1000"}}`

type cliTestEnv struct {
	configPath string
	binDir     string
	workDir    string
	input      string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	binDir := filepath.Join(base, "bin")
	workDir := filepath.Join(base, "work")
	logDir := filepath.Join(base, "logs")
	for _, dir := range []string{binDir, workDir, logDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	writeStubScript(t, filepath.Join(binDir, "ffprobe"),
		"#!/bin/sh\ncat <<'EOF'\n"+testProbeJSON+"\nEOF\n")
	writeStubScript(t, filepath.Join(binDir, "ffmpeg"), `#!/bin/sh
if [ "$1" = "-version" ]; then
	echo "ffmpeg version 6.0 Copyright (c) 2000-2023 the FFmpeg developers"
	exit 0
fi
for last; do :; done
if [ "$last" = "-" ]; then
	cat >&2 <<'EOF'
{
    "input_i" : "-23.00",
    "input_tp" : "-3.00",
    "input_lra" : "6.00",
    "input_thresh" : "-33.00",
    "target_offset" : "0.30"
}
EOF
	exit 0
fi
echo "out_time_us=10000000"
echo "progress=end"
printf 'cleaned' > "$last"
`)

	input := filepath.Join(workDir, "in.mp4")
	if err := os.WriteFile(input, []byte("source media"), 0o644); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(base, "config.toml")
	configBody := fmt.Sprintf(`[paths]
log_dir = %q
history_db = %q

[tools]
ffmpeg_binary = %q
ffprobe_binary = %q

[logging]
level = "error"
to_file = false
`,
		logDir,
		filepath.Join(base, "history.db"),
		filepath.Join(binDir, "ffmpeg"),
		filepath.Join(binDir, "ffprobe"))
	if err := os.WriteFile(configPath, []byte(configBody), 0o644); err != nil {
		t.Fatal(err)
	}

	return &cliTestEnv{
		configPath: configPath,
		binDir:     binDir,
		workDir:    workDir,
		input:      input,
	}
}

func writeStubScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLICleanAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	output := filepath.Join(env.workDir, "out.mp4")

	stdout, _, err := runCLI(t, env.configPath, "clean", env.input, output, "--json")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}

	var report struct {
		JobID       string `json:"job_id"`
		Output      string `json:"output"`
		StreamIndex int    `json:"stream_index"`
		Measured    struct {
			InputI string `json:"input_i"`
		} `json:"measured"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("parse clean report: %v\n%s", err, stdout)
	}
	if report.StreamIndex != 1 || report.Measured.InputI != "-23.00" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if data, err := os.ReadFile(output); err != nil || string(data) != "cleaned" {
		t.Fatalf("output file: %q %v", data, err)
	}

	stdout, _, err = runCLI(t, env.configPath, "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var jobs []struct {
		ID     string
		Status string
	}
	if err := json.Unmarshal([]byte(stdout), &jobs); err != nil {
		t.Fatalf("parse history list: %v\n%s", err, stdout)
	}
	if len(jobs) != 1 || jobs[0].Status != "completed" {
		t.Fatalf("unexpected history: %+v", jobs)
	}

	stdout, _, err = runCLI(t, env.configPath, "history", "show", jobs[0].ID[:8])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(stdout, "completed") || !strings.Contains(stdout, env.input) {
		t.Fatalf("history show output: %s", stdout)
	}

	stdout, _, err = runCLI(t, env.configPath, "history", "clear")
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	if !strings.Contains(stdout, "Removed 1") {
		t.Fatalf("history clear output: %s", stdout)
	}
}

func TestCLIRootArgumentsRunClean(t *testing.T) {
	env := setupCLITestEnv(t)
	output := filepath.Join(env.workDir, "alias-out.mp4")

	stdout, _, err := runCLI(t, env.configPath, env.input, output)
	if err != nil {
		t.Fatalf("root clean: %v", err)
	}
	if !strings.Contains(stdout, "Cleaned") {
		t.Fatalf("expected summary, got: %s", stdout)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestCLICleanRefusesExistingOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	output := filepath.Join(env.workDir, "existing.mp4")
	if err := os.WriteFile(output, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, env.configPath, "clean", env.input, output)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected exists error, got %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, "clean", env.input, output, "--overwrite"); err != nil {
		t.Fatalf("clean --overwrite: %v", err)
	}
}

func TestCLICleanDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	output := filepath.Join(env.workDir, "dry.mp4")

	stdout, _, err := runCLI(t, env.configPath, "clean", env.input, output, "--dry-run", "--target-i", "-14")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(stdout, "Pass 1") || !strings.Contains(stdout, "Pass 2") {
		t.Fatalf("dry run output: %s", stdout)
	}
	if !strings.Contains(stdout, "loudnorm=I=-14") {
		t.Fatalf("target override missing from plan: %s", stdout)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatal("dry run must not create the output file")
	}
}

func TestCLIProbe(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.configPath, "probe", env.input, "--json")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var probe struct {
		SelectedIndex int `json:"selected_index"`
		Streams       []struct {
			CodecName string `json:"codec_name"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(stdout), &probe); err != nil {
		t.Fatalf("parse probe: %v\n%s", err, stdout)
	}
	if probe.SelectedIndex != 1 || len(probe.Streams) != 2 {
		t.Fatalf("unexpected probe: %+v", probe)
	}

	stdout, _, err = runCLI(t, env.configPath, "probe", env.input)
	if err != nil {
		t.Fatalf("probe table: %v", err)
	}
	if !strings.Contains(stdout, "aac") || !strings.Contains(stdout, "dialogue stream selected") {
		t.Fatalf("probe table output: %s", stdout)
	}
}

func TestCLIDeps(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.configPath, "deps")
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	if !strings.Contains(stdout, "FFmpeg") || !strings.Contains(stdout, "ok") {
		t.Fatalf("deps output: %s", stdout)
	}

	if err := os.Remove(filepath.Join(env.binDir, "ffmpeg")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, env.configPath, "deps"); err == nil {
		t.Fatal("expected deps failure when ffmpeg is missing")
	}
}

func TestCLIConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "[audio]") || !strings.Contains(stdout, "target_i") {
		t.Fatalf("config show output: %s", stdout)
	}

	stdout, _, err = runCLI(t, env.configPath, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if !strings.Contains(stdout, env.configPath) {
		t.Fatalf("config path output: %s", stdout)
	}

	stdout, _, err = runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(stdout, "Configuration valid") {
		t.Fatalf("config validate output: %s", stdout)
	}

	target := filepath.Join(t.TempDir(), "fresh.toml")
	stdout, _, err = runCLI(t, env.configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, "Wrote sample configuration") {
		t.Fatalf("config init output: %s", stdout)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

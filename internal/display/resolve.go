package display

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/rawxcb/internal/config"
)

// SocketDir is where local X servers listen.
const SocketDir = "/tmp/.X11-unix"

var (
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	userHomeDirFn             = os.UserHomeDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// Source records where a resolved value came from.
type Source string

const (
	SourceNone    Source = ""
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceSession Source = "session"
	SourceSocket  Source = "socket"
	SourceHome    Source = "home"
)

// Target is the display and authority file a connection should use.
type Target struct {
	Display          string `json:"display" yaml:"display"`
	DisplaySource    Source `json:"display_source" yaml:"display_source"`
	XAuthority       string `json:"xauthority,omitempty" yaml:"xauthority,omitempty"`
	XAuthoritySource Source `json:"xauthority_source,omitempty" yaml:"xauthority_source,omitempty"`
}

// Resolve picks DISPLAY and XAUTHORITY for a connection. An explicit display
// wins; otherwise the order is env, config, the user's login session and
// finally the highest-numbered local X socket. XAUTHORITY follows env,
// config, session, then ~/.Xauthority.
func Resolve(explicit string, cfg *config.Config, env []string) (Target, error) {
	var t Target

	if d := strings.TrimSpace(explicit); d != "" {
		t.Display, t.DisplaySource = d, SourceFlag
	} else if d := strings.TrimSpace(envLookup(env, "DISPLAY")); d != "" {
		t.Display, t.DisplaySource = d, SourceEnv
	} else if cfg != nil && strings.TrimSpace(cfg.Display) != "" {
		t.Display, t.DisplaySource = strings.TrimSpace(cfg.Display), SourceConfig
	}

	if x := strings.TrimSpace(envLookup(env, "XAUTHORITY")); x != "" {
		t.XAuthority, t.XAuthoritySource = x, SourceEnv
	} else if cfg != nil && strings.TrimSpace(cfg.XAuthority) != "" {
		t.XAuthority, t.XAuthoritySource = strings.TrimSpace(cfg.XAuthority), SourceConfig
	}

	if t.Display == "" || t.XAuthority == "" {
		detectedDisplay, detectedXAuthority := detectSessionX11EnvFn()
		if t.Display == "" && strings.TrimSpace(detectedDisplay) != "" {
			t.Display, t.DisplaySource = strings.TrimSpace(detectedDisplay), SourceSession
		}
		if t.XAuthority == "" && strings.TrimSpace(detectedXAuthority) != "" {
			t.XAuthority, t.XAuthoritySource = strings.TrimSpace(detectedXAuthority), SourceSession
		}
	}

	if t.Display == "" {
		if d := detectDisplayFromSocketFn(SocketDir); d != "" {
			t.Display, t.DisplaySource = d, SourceSocket
		}
	}
	if t.Display == "" {
		return t, fmt.Errorf("no X display found; pass --display, export DISPLAY, or set display in config (e.g. display: \":0\")")
	}

	if t.XAuthority == "" {
		home := strings.TrimSpace(envLookup(env, "HOME"))
		if home == "" {
			if detectedHome, err := userHomeDirFn(); err == nil {
				home = detectedHome
			}
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				t.XAuthority, t.XAuthoritySource = candidate, SourceHome
			}
		}
	}

	return t, nil
}

// Apply exports the target into the process environment so that libxcb and
// xgb, which both read XAUTHORITY themselves, pick it up.
func (t Target) Apply() error {
	if t.Display != "" {
		if err := os.Setenv("DISPLAY", t.Display); err != nil {
			return fmt.Errorf("failed to set DISPLAY: %w", err)
		}
	}
	return t.ApplyXAuthority()
}

// ApplyXAuthority exports only XAUTHORITY. Dialers take the display
// explicitly, so long-lived callers leave DISPLAY alone.
func (t Target) ApplyXAuthority() error {
	if t.XAuthority == "" {
		return nil
	}
	if err := os.Setenv("XAUTHORITY", t.XAuthority); err != nil {
		return fmt.Errorf("failed to set XAUTHORITY: %w", err)
	}
	return nil
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Display"))
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}

		xauth := ""
		leader := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Leader"))
		if leader != "" && leader != "0" {
			if envMap, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(envMap["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(envMap["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		if fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		env[kv[0]] = kv[1]
	}
	return env, nil
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}

func envLookup(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}

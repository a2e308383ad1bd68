package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.Contains(configDir, "lpac-console") {
		t.Errorf("GetConfigDir() = %v, should contain 'lpac-console'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	default:
		if configDir != filepath.Join("/tmp/xdg", "lpac-console") {
			t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME based path", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != CurrentVersion {
		t.Errorf("Version = %v, want %v", reg.Version, CurrentVersion)
	}
	if reg.Routers == nil {
		t.Error("Routers should not be nil")
	}
	if reg.Preferences == nil || reg.Preferences.Format != "detailed" || reg.Preferences.ReadTimeout != 30 {
		t.Errorf("Preferences = %+v", reg.Preferences)
	}
}

func TestRegistryAddRouter(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.AddRouter("", "192.168.1.1"); err == nil {
		t.Error("AddRouter with empty name should fail")
	}
	if _, err := reg.AddRouter("home", " "); err == nil {
		t.Error("AddRouter with empty address should fail")
	}

	if _, err := reg.AddRouter("home", "192.168.1.1"); err != nil {
		t.Fatalf("AddRouter() error = %v", err)
	}
	if reg.Default != "home" {
		t.Errorf("Default = %q, want first router to become default", reg.Default)
	}

	reg.GetRouter("home").APIPath = "/custom"
	if _, err := reg.AddRouter("home", "192.168.1.2"); err != nil {
		t.Fatal(err)
	}
	if got := reg.GetRouter("home"); got.Address != "192.168.1.2" || got.APIPath != "/custom" {
		t.Errorf("re-added router = %+v, want new address and kept API path", got)
	}

	if _, err := reg.AddRouter("office", "10.0.0.1"); err != nil {
		t.Fatal(err)
	}
	if reg.Default != "home" {
		t.Errorf("Default = %q, want unchanged", reg.Default)
	}
	if names := reg.Names(); len(names) != 2 || names[0] != "home" || names[1] != "office" {
		t.Errorf("Names() = %v", names)
	}
}

func TestRegistryRemoveAndDefault(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.AddRouter("home", "192.168.1.1")
	_, _ = reg.AddRouter("office", "10.0.0.1")

	if err := reg.SetDefault("nope"); err == nil {
		t.Error("SetDefault on unknown name should fail")
	}
	if err := reg.SetDefault("office"); err != nil || reg.Default != "office" {
		t.Errorf("SetDefault(office) = %v, Default = %q", err, reg.Default)
	}
	if err := reg.RemoveRouter("office"); err != nil {
		t.Fatal(err)
	}
	if reg.Default != "" {
		t.Errorf("Default = %q, want cleared after removing it", reg.Default)
	}
	if err := reg.RemoveRouter("office"); err == nil {
		t.Error("second RemoveRouter should fail")
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()

	if got := reg.Resolve(""); got != nil {
		t.Errorf("Resolve(\"\") with no default = %+v, want nil", got)
	}

	_, _ = reg.AddRouter("home", "192.168.1.1")

	tests := []struct {
		value string
		want  string
	}{
		{"", "192.168.1.1"},
		{"home", "192.168.1.1"},
		{" home ", "192.168.1.1"},
		{"10.0.0.1:8080", "10.0.0.1:8080"},
		{"https://router.lan", "https://router.lan"},
	}
	for _, tt := range tests {
		got := reg.Resolve(tt.value)
		if got == nil || got.Address != tt.want {
			t.Errorf("Resolve(%q) = %+v, want address %q", tt.value, got, tt.want)
		}
	}
}

func TestRegistryMarkSeen(t *testing.T) {
	reg := NewRegistry()
	_, _ = reg.AddRouter("home", "192.168.1.1")

	reg.MarkSeen("192.168.1.1", "2.2.1")
	router := reg.GetRouter("home")
	if router.LastSeen.IsZero() || router.LpacVersion != "2.2.1" {
		t.Errorf("router = %+v", router)
	}

	reg.MarkSeen("192.168.1.1", "")
	if router.LpacVersion != "2.2.1" {
		t.Errorf("LpacVersion = %q, want kept when not reported", router.LpacVersion)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	_, _ = reg.AddRouter("home", "192.168.1.1")
	reg.GetRouter("home").PostEncoding = "form"
	reg.Preferences.Format = "compact"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# lpac-console configuration") {
		t.Errorf("file should start with the header comment, got:\n%s", data)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Default != "home" {
		t.Errorf("Default = %q, want home", loaded.Default)
	}
	if r := loaded.GetRouter("home"); r == nil || r.Address != "192.168.1.1" || r.PostEncoding != "form" {
		t.Errorf("loaded router = %+v", r)
	}
	if loaded.Preferences.Format != "compact" {
		t.Errorf("Format = %q, want compact", loaded.Preferences.Format)
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
		return p
	}

	t.Run("missing file gives defaults", func(t *testing.T) {
		reg, err := LoadFrom(filepath.Join(dir, "absent.yaml"))
		if err != nil || reg.Version != CurrentVersion {
			t.Errorf("LoadFrom() = %+v, %v", reg, err)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		if _, err := LoadFrom(write("v2.yaml", "version: 2\n")); err == nil {
			t.Error("LoadFrom() should reject version 2")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := LoadFrom(write("bad.yaml", "version: [\n")); err == nil {
			t.Error("LoadFrom() should reject malformed YAML")
		}
	})

	t.Run("dangling default and missing sections", func(t *testing.T) {
		reg, err := LoadFrom(write("min.yaml", "version: 1\ndefault: gone\n"))
		if err != nil {
			t.Fatal(err)
		}
		if reg.Default != "" {
			t.Errorf("Default = %q, want cleared", reg.Default)
		}
		if reg.Routers == nil || reg.Preferences == nil {
			t.Errorf("registry = %+v, want sections initialized", reg)
		}
	})
}

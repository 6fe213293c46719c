package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullFile = "s3cret\nstatic\n10.0.0.5\n255.255.0.0\n10.0.0.1\n1.1.1.1\ntime.example.org\n"

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Password != "mypassword" {
		t.Errorf("Password: got %q", d.Password)
	}
	if d.NetworkMode != ModeDHCP {
		t.Errorf("NetworkMode: got %q", d.NetworkMode)
	}
	if d.Static.IP != "192.168.1.100" || d.Static.Subnet != "255.255.255.0" ||
		d.Static.Gateway != "192.168.1.1" || d.Static.DNS != "8.8.8.8" {
		t.Errorf("Static: got %+v", d.Static)
	}
	if d.NTPServer != "pool.ntp.org" {
		t.Errorf("NTPServer: got %q", d.NTPServer)
	}
}

func TestParseFull(t *testing.T) {
	s, err := Parse([]byte(fullFile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Settings{
		Password:    "s3cret",
		NetworkMode: ModeStatic,
		Static:      StaticIP{IP: "10.0.0.5", Subnet: "255.255.0.0", Gateway: "10.0.0.1", DNS: "1.1.1.1"},
		NTPServer:   "time.example.org",
	}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}
	if !s.IsStatic() {
		t.Error("expected IsStatic")
	}
}

func TestParseWithoutNTPLine(t *testing.T) {
	s, err := Parse([]byte("pw\ndhcp\n1.2.3.4\n255.0.0.0\n1.2.3.1\n9.9.9.9\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.NTPServer != DefaultNTPServer {
		t.Errorf("NTPServer: got %q, want default", s.NTPServer)
	}
}

func TestParseTrimsWhitespaceAndCRLF(t *testing.T) {
	s, err := Parse([]byte("pw \r\n dhcp\r\n1.2.3.4\r\n255.0.0.0\r\n1.2.3.1\r\n9.9.9.9\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Password != "pw" || s.NetworkMode != "dhcp" || s.Static.DNS != "9.9.9.9" {
		t.Errorf("not trimmed: %+v", s)
	}
}

func TestParseShort(t *testing.T) {
	tests := []string{"", "pw\n", "pw\ndhcp\n1.2.3.4\n255.0.0.0\n1.2.3.1\n"}
	for _, in := range tests {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("expected error for %d-line file", strings.Count(in, "\n"))
		}
	}
}

func TestMarshalRoundTripsFileFormat(t *testing.T) {
	s, _ := Parse([]byte(fullFile))
	if got := string(s.Marshal()); got != fullFile {
		t.Errorf("got %q, want %q", got, fullFile)
	}
}

func TestLoadMissingWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.txt")

	s := Load(path)
	if s != Defaults() {
		t.Errorf("expected defaults, got %+v", s)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
	if string(data) != string(Defaults().Marshal()) {
		t.Errorf("persisted file: got %q", data)
	}
}

func TestLoadShortFileRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.txt")
	os.WriteFile(path, []byte("onlypassword\ndhcp\n"), 0o600)

	s := Load(path)
	if s.Password != "mypassword" {
		t.Errorf("short file should fall back to defaults entirely, got password %q", s.Password)
	}

	data, _ := os.ReadFile(path)
	if got := strings.Count(string(data), "\n"); got != 7 {
		t.Errorf("rewritten file should have 7 lines, got %d", got)
	}
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.txt")
	os.WriteFile(path, []byte(fullFile), 0o600)

	s := Load(path)
	if s.Password != "s3cret" || s.NTPServer != "time.example.org" {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestLoadUnwritableStillReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "settings.txt")

	if s := Load(path); s != Defaults() {
		t.Errorf("expected defaults, got %+v", s)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.txt")
	if err := Save(path, Defaults()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestYAMLRedactsPassword(t *testing.T) {
	data, err := Defaults().YAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "mypassword") {
		t.Error("password leaked into YAML")
	}
	for _, want := range []string{"network_mode: dhcp", "ip: 192.168.1.100", "ntp_server: pool.ntp.org"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
}

func TestIsStatic(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{ModeDHCP, false},
		{ModeStatic, true},
		{"DHCP", true},
		{"manual", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			s := Settings{NetworkMode: tt.mode}
			if got := s.IsStatic(); got != tt.want {
				t.Errorf("IsStatic(%q) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

// Package settings loads and saves the appliance settings file.
//
// The file is plain text, one value per line, in this order:
//
//	password
//	network mode ("dhcp" or "static")
//	static IP
//	subnet mask
//	gateway
//	DNS server
//	NTP server (optional)
//
// A missing file, or one with fewer than six lines, is replaced by the
// defaults.
package settings

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Network modes.
const (
	ModeDHCP   = "dhcp"
	ModeStatic = "static"
)

// DefaultNTPServer is used when the settings file has no seventh line.
const DefaultNTPServer = "pool.ntp.org"

// minLines is the shortest well-formed settings file.
const minLines = 6

// StaticIP is the address configuration used in static mode.
type StaticIP struct {
	IP      string `yaml:"ip"`
	Subnet  string `yaml:"subnet"`
	Gateway string `yaml:"gateway"`
	DNS     string `yaml:"dns"`
}

// Settings is the persisted appliance configuration.
type Settings struct {
	Password    string   `yaml:"password"`
	NetworkMode string   `yaml:"network_mode"`
	Static      StaticIP `yaml:"static_ip"`
	NTPServer   string   `yaml:"ntp_server"`
}

// Defaults returns the factory settings.
func Defaults() Settings {
	return Settings{
		Password:    "mypassword",
		NetworkMode: ModeDHCP,
		Static: StaticIP{
			IP:      "192.168.1.100",
			Subnet:  "255.255.255.0",
			Gateway: "192.168.1.1",
			DNS:     "8.8.8.8",
		},
		NTPServer: DefaultNTPServer,
	}
}

// Parse decodes a settings file. Lines are trimmed of surrounding
// whitespace. Returns an error if fewer than six lines are present.
func Parse(data []byte) (Settings, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return Settings{}, fmt.Errorf("scan settings: %w", err)
	}
	if len(lines) < minLines {
		return Settings{}, fmt.Errorf("settings file has %d lines, need at least %d", len(lines), minLines)
	}

	s := Settings{
		Password:    lines[0],
		NetworkMode: lines[1],
		Static: StaticIP{
			IP:      lines[2],
			Subnet:  lines[3],
			Gateway: lines[4],
			DNS:     lines[5],
		},
		NTPServer: DefaultNTPServer,
	}
	if len(lines) > minLines && lines[6] != "" {
		s.NTPServer = lines[6]
	}
	return s, nil
}

// Marshal encodes s in the settings file format.
func (s Settings) Marshal() []byte {
	var b bytes.Buffer
	for _, v := range []string{
		s.Password,
		s.NetworkMode,
		s.Static.IP,
		s.Static.Subnet,
		s.Static.Gateway,
		s.Static.DNS,
		s.NTPServer,
	} {
		b.WriteString(v)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// Load reads the settings file at path. If it is missing or malformed, the
// defaults are returned and written back to path. A failed write is logged;
// Load itself never fails.
func Load(path string) Settings {
	data, err := os.ReadFile(path)
	if err == nil {
		s, perr := Parse(data)
		if perr == nil {
			log.Printf("settings loaded from %s", path)
			return s
		}
		err = perr
	}

	log.Printf("using default settings: %v", err)
	s := Defaults()
	if err := Save(path, s); err != nil {
		log.Printf("failed to save settings: %v", err)
	}
	return s
}

// Save writes s to path, replacing it atomically.
func Save(path string, s Settings) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, s.Marshal(), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	log.Printf("settings saved to %s", path)
	return nil
}

// YAML renders s for display with the password redacted.
func (s Settings) YAML() ([]byte, error) {
	redacted := s
	if redacted.Password != "" {
		redacted.Password = "********"
	}
	data, err := yaml.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}

// IsStatic reports whether the link should use the static address.
// Only an exact "dhcp" selects DHCP; any other mode is treated as static.
func (s Settings) IsStatic() bool {
	return s.NetworkMode != ModeDHCP
}

// Package pinmap loads the assignment of panel lines to host pins.
//
// The assignment is a YAML file naming one host pin per panel line, resolved
// through gpioreg once at start up. A default Raspberry Pi wiring is built in.
package pinmap

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/flavioheleno/epd47"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// DefaultFile is the built-in mapping, Raspberry Pi BCM numbering.
//
//go:embed pins_default.yaml
var DefaultFile []byte

// Map names the host pin of every panel line.
type Map struct {
	Data    []string `yaml:"data"`
	DC      string   `yaml:"dc"`
	WRX     string   `yaml:"wrx"`
	CfgData string   `yaml:"cfg_data"`
	CfgClk  string   `yaml:"cfg_clk"`
	CfgStr  string   `yaml:"cfg_str"`
	Pulse   string   `yaml:"pulse"`
}

// Default returns the built-in mapping.
func Default() (*Map, error) {
	return Parse(DefaultFile)
}

// Parse decodes and validates a mapping.
func Parse(raw []byte) (*Map, error) {
	m := &Map{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("pinmap: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads the mapping at path. When the file does not exist it is created
// with the built-in mapping.
func Load(path string) (*Map, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.Infof("Create default pin map file %s", path)
		if err := os.WriteFile(path, DefaultFile, 0o644); err != nil {
			return nil, fmt.Errorf("pinmap: %w", err)
		}
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("pinmap: %w", err)
	}
	logrus.Debugf("Load pin map file %s", path)
	return Parse(raw)
}

// Save writes m to path.
func (m *Map) Save(path string) error {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("pinmap: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("pinmap: %w", err)
	}
	return nil
}

type line struct {
	role string
	pin  string
}

func (m *Map) lines() []line {
	l := make([]line, 0, len(m.Data)+6)
	for i, p := range m.Data {
		l = append(l, line{fmt.Sprintf("data[%d]", i), p})
	}
	return append(l,
		line{"dc", m.DC},
		line{"wrx", m.WRX},
		line{"cfg_data", m.CfgData},
		line{"cfg_clk", m.CfgClk},
		line{"cfg_str", m.CfgStr},
		line{"pulse", m.Pulse},
	)
}

// Validate checks that every line is assigned exactly one distinct pin.
func (m *Map) Validate() error {
	if len(m.Data) != 8 {
		return fmt.Errorf("pinmap: data needs 8 pins, got %d", len(m.Data))
	}
	seen := map[string]string{}
	for _, r := range m.lines() {
		if r.pin == "" {
			return fmt.Errorf("pinmap: %s is not assigned", r.role)
		}
		if other, ok := seen[r.pin]; ok {
			return fmt.Errorf("pinmap: %s is assigned to both %s and %s", r.pin, other, r.role)
		}
		seen[r.pin] = r.role
	}
	return nil
}

// Resolve looks every pin up in gpioreg. host.Init must have been called.
func (m *Map) Resolve() (*epd47.Pins, error) {
	return m.ResolveWith(gpioreg.ByName)
}

// ResolveWith looks every pin up with byName.
func (m *Map) ResolveWith(byName func(string) gpio.PinIO) (*epd47.Pins, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	var err error
	get := func(role, name string) gpio.PinOut {
		if err != nil {
			return nil
		}
		p := byName(name)
		if p == nil {
			err = fmt.Errorf("pinmap: %s: no pin named %q", role, name)
			return nil
		}
		return p
	}
	pins := &epd47.Pins{}
	for i, name := range m.Data {
		pins.Data[i] = get(fmt.Sprintf("data[%d]", i), name)
	}
	pins.DC = get("dc", m.DC)
	pins.WRX = get("wrx", m.WRX)
	pins.CfgData = get("cfg_data", m.CfgData)
	pins.CfgClk = get("cfg_clk", m.CfgClk)
	pins.CfgStr = get("cfg_str", m.CfgStr)
	pins.Pulse = get("pulse", m.Pulse)
	if err != nil {
		return nil, err
	}
	return pins, nil
}

// Package platform loads the vendor-specific description that ties a PLIC
// driver to a board: where the controller lives, how hart contexts are laid
// out, and which interrupt sources the platform routes through it.
//
// The driver itself never depends on this package; context numbering stays
// an injectable strategy (plic.HartContext) and this is one source of it.
package platform

import (
	"fmt"
	"os"

	plic "github.com/arceos-org/riscv-plic"
	"gopkg.in/yaml.v3"
)

// Config describes one PLIC instance on a board.
type Config struct {
	// Base is the physical address of the register block.
	Base uint64 `yaml:"base"`

	// Harts lists the board's harts in hart-id order.
	Harts []HartConfig `yaml:"harts"`

	// Sources lists the interrupt sources the platform routes through the
	// controller.
	Sources []SourceConfig `yaml:"sources"`
}

// HartConfig describes one hart's view of the controller.
type HartConfig struct {
	// Privileges is how many privilege levels the hart exposes to the
	// controller: 1 for machine only, 2 for machine plus supervisor.
	Privileges uint8 `yaml:"privileges"`
}

// SourceConfig describes one interrupt source and the context that owns it.
type SourceConfig struct {
	ID       uint32 `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Priority uint32 `yaml:"priority,omitempty"`

	// Hart and Mode name the context the source is delivered to.
	Hart int    `yaml:"hart"`
	Mode string `yaml:"mode,omitempty"`
}

// Load reads and parses a platform description file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses a platform description, normalizes defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("platform: parse: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	for i := range c.Harts {
		if c.Harts[i].Privileges == 0 {
			c.Harts[i].Privileges = 1
		}
	}
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.Priority == 0 {
			src.Priority = 1
		}
		if src.Mode == "" {
			// Default to the highest mode the owning hart supports.
			if src.Hart >= 0 && src.Hart < len(c.Harts) && c.Harts[src.Hart].Privileges >= 2 {
				src.Mode = plic.ModeSupervisor.String()
			} else {
				src.Mode = plic.ModeMachine.String()
			}
		}
	}
}

// Validate checks the description against the controller's limits.
func (c *Config) Validate() error {
	if len(c.Harts) == 0 {
		return fmt.Errorf("platform: no harts described")
	}
	if c.NumContexts() > plic.NumContexts {
		return fmt.Errorf("platform: %d contexts exceed the controller's %d", c.NumContexts(), plic.NumContexts)
	}

	seen := make(map[uint32]string, len(c.Sources))
	for _, src := range c.Sources {
		if src.ID == 0 || src.ID >= plic.NumSources {
			return fmt.Errorf("platform: source %q id %d out of range 1..%d", src.Name, src.ID, plic.NumSources-1)
		}
		if prev, ok := seen[src.ID]; ok {
			return fmt.Errorf("platform: source id %d used by both %q and %q", src.ID, prev, src.Name)
		}
		seen[src.ID] = src.Name

		if src.Hart < 0 || src.Hart >= len(c.Harts) {
			return fmt.Errorf("platform: source %q routed to unknown hart %d", src.Name, src.Hart)
		}
		mode, err := ParseMode(src.Mode)
		if err != nil {
			return fmt.Errorf("platform: source %q: %w", src.Name, err)
		}
		if int(mode) >= int(c.Harts[src.Hart].Privileges) {
			return fmt.Errorf("platform: source %q needs %s contexts but hart %d has %d privilege level(s)",
				src.Name, mode, src.Hart, c.Harts[src.Hart].Privileges)
		}
	}
	return nil
}

// ParseMode parses a privilege mode name as used in platform files.
func ParseMode(name string) (plic.Mode, error) {
	switch name {
	case "machine", "m":
		return plic.ModeMachine, nil
	case "supervisor", "s":
		return plic.ModeSupervisor, nil
	default:
		return 0, fmt.Errorf("unknown privilege mode %q", name)
	}
}

// privileges flattens the hart list into the form plic.SimpleContext takes.
func (c *Config) privileges() []uint8 {
	out := make([]uint8, len(c.Harts))
	for i, h := range c.Harts {
		out[i] = h.Privileges
	}
	return out
}

// NumContexts is the number of context slots the description occupies.
func (c *Config) NumContexts() int {
	n := 0
	for _, h := range c.Harts {
		n += int(h.Privileges)
	}
	return n
}

// Context resolves a (hart, mode) pair to its flat context index under this
// description's numbering.
func (c *Config) Context(hart int, mode plic.Mode) plic.Context {
	return plic.SimpleContext{Privileges: c.privileges(), Hart: hart, Mode: mode}.Index()
}

// SourceContext resolves the context a described source is delivered to.
// Call only after Validate has accepted the description.
func (c *Config) SourceContext(src SourceConfig) plic.Context {
	mode, err := ParseMode(src.Mode)
	if err != nil {
		panic(fmt.Sprintf("platform: %v", err))
	}
	return c.Context(src.Hart, mode)
}

// SourceByName looks a source up by its name.
func (c *Config) SourceByName(name string) (SourceConfig, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return SourceConfig{}, false
}

// Apply programs the description into a controller: every context gets its
// threshold zeroed, every described source gets its priority set and its
// owning context's enable bit raised.
func (c *Config) Apply(p *plic.PLIC) {
	for ctx := plic.Context(0); ctx < plic.Context(c.NumContexts()); ctx++ {
		p.InitContext(ctx)
	}
	for _, src := range c.Sources {
		p.SetPriority(plic.Source(src.ID), src.Priority)
		p.Enable(plic.Source(src.ID), c.SourceContext(src))
	}
}

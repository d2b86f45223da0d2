package platform

import (
	"strings"
	"testing"

	plic "github.com/arceos-org/riscv-plic"
	"github.com/arceos-org/riscv-plic/emu"
)

const boardYAML = `
base: 0xc000000
harts:
  - privileges: 2
  - privileges: 2
sources:
  - id: 10
    name: uart0
    priority: 3
    hart: 0
    mode: supervisor
  - id: 8
    name: virtio0
    hart: 1
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(boardYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Base != 0xc000000 {
		t.Errorf("base: got 0x%x, want 0xc000000", cfg.Base)
	}
	if cfg.NumContexts() != 4 {
		t.Errorf("contexts: got %d, want 4", cfg.NumContexts())
	}

	// virtio0 left priority and mode unset; normalize fills priority 1 and
	// the hart's highest mode.
	src, ok := cfg.SourceByName("virtio0")
	if !ok {
		t.Fatal("virtio0 not found")
	}
	if src.Priority != 1 {
		t.Errorf("virtio0 priority: got %d, want 1", src.Priority)
	}
	if src.Mode != "supervisor" {
		t.Errorf("virtio0 mode: got %q, want supervisor", src.Mode)
	}
}

func TestContextNumbering(t *testing.T) {
	cfg, err := Parse([]byte(boardYAML))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		hart int
		mode plic.Mode
		want plic.Context
	}{
		{0, plic.ModeMachine, 0},
		{0, plic.ModeSupervisor, 1},
		{1, plic.ModeMachine, 2},
		{1, plic.ModeSupervisor, 3},
	}
	for _, c := range cases {
		if got := cfg.Context(c.hart, c.mode); got != c.want {
			t.Errorf("hart %d %s: got context %d, want %d", c.hart, c.mode, got, c.want)
		}
	}

	src, _ := cfg.SourceByName("uart0")
	if got := cfg.SourceContext(src); got != 1 {
		t.Errorf("uart0 context: got %d, want 1", got)
	}
}

func TestValidateRejectsBadDescriptions(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"no harts",
			`sources: [{id: 1, hart: 0}]`,
			"no harts",
		},
		{
			"source id zero",
			`{harts: [{privileges: 1}], sources: [{id: 0, name: bad, hart: 0}]}`,
			"out of range",
		},
		{
			"source id too large",
			`{harts: [{privileges: 1}], sources: [{id: 1024, name: bad, hart: 0}]}`,
			"out of range",
		},
		{
			"duplicate id",
			`{harts: [{privileges: 1}], sources: [{id: 5, name: a, hart: 0}, {id: 5, name: b, hart: 0}]}`,
			"used by both",
		},
		{
			"unknown hart",
			`{harts: [{privileges: 1}], sources: [{id: 5, name: a, hart: 3}]}`,
			"unknown hart",
		},
		{
			"unsupported mode",
			`{harts: [{privileges: 1}], sources: [{id: 5, name: a, hart: 0, mode: supervisor}]}`,
			"privilege level",
		},
		{
			"unknown mode",
			`{harts: [{privileges: 2}], sources: [{id: 5, name: a, hart: 0, mode: hypervisor}]}`,
			"unknown privilege mode",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	cfg, err := Parse([]byte(boardYAML))
	if err != nil {
		t.Fatal(err)
	}

	dev := emu.New()
	p := plic.NewWithRegisterFile(dev)

	// Leave stale state behind to prove Apply resets what it owns.
	p.SetThreshold(1, 5)

	cfg.Apply(p)

	for ctx := plic.Context(0); ctx < 4; ctx++ {
		if got := p.Threshold(ctx); got != 0 {
			t.Errorf("threshold of context %d: got %d, want 0", ctx, got)
		}
	}

	if got := p.Priority(10); got != 3 {
		t.Errorf("uart0 priority: got %d, want 3", got)
	}
	if !p.IsEnabled(10, 1) {
		t.Error("uart0 should be enabled for hart 0 supervisor (context 1)")
	}
	if p.IsEnabled(10, 0) {
		t.Error("uart0 must not leak into context 0")
	}
	if !p.IsEnabled(8, 3) {
		t.Error("virtio0 should be enabled for hart 1 supervisor (context 3)")
	}

	// The applied configuration makes an asserted source claimable.
	dev.SetPending(10, true)
	if s, ok := p.Claim(1); !ok || s != 10 {
		t.Fatalf("claim: got (%d, %v), want (10, true)", s, ok)
	}
}

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	plic "github.com/arceos-org/riscv-plic"
	"github.com/arceos-org/riscv-plic/devmem"
	"github.com/arceos-org/riscv-plic/emu"
	"github.com/arceos-org/riscv-plic/platform"
	"golang.org/x/term"
)

func run() error {
	platformPath := flag.String("platform", "", "platform description YAML (required)")
	device := flag.String("device", devmem.DefaultDevice, "physical memory device file")
	useEmu := flag.Bool("emu", false, "run against an in-memory controller model instead of hardware")
	apply := flag.Bool("apply", false, "initialize contexts and program the platform description before dumping")
	probe := flag.Bool("probe", false, "probe implemented priority/threshold bits (destructive, setup only)")
	watch := flag.Bool("watch", false, "redraw the dump periodically")
	interval := flag.Duration("interval", time.Second, "redraw interval for -watch")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `plicdump - inspect a RISC-V PLIC through a platform description

USAGE:
  plicdump -platform FILE [flags]

FLAGS:
  -platform FILE  Platform description YAML naming the controller base,
                  harts and interrupt sources
  -device FILE    Physical memory device to map (default: %s)
  -emu            Use an in-memory controller model instead of hardware
  -apply          Zero thresholds and program priorities/enables from the
                  platform description before dumping
  -probe          Probe implemented priority and threshold bits. Overwrites
                  the probed registers; only safe before interrupts are live
  -watch          Redraw periodically (clears the screen on terminals)
  -interval DUR   Redraw interval for -watch (default: 1s)

EXAMPLES:
  plicdump -platform board.yaml -emu -apply
  plicdump -platform board.yaml -device /dev/mem -watch -interval 250ms
`, devmem.DefaultDevice)
	}
	flag.Parse()

	if *platformPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := platform.Load(*platformPath)
	if err != nil {
		return err
	}

	var p *plic.PLIC
	if *useEmu {
		slog.Info("using in-memory controller model")
		p = plic.NewWithRegisterFile(emu.New())
	} else {
		region, err := devmem.Map(*device, cfg.Base)
		if err != nil {
			return err
		}
		defer region.Close()
		slog.Info("mapped controller", "device", *device, "base", fmt.Sprintf("0x%x", cfg.Base))
		p = region.PLIC()
	}

	if *apply {
		cfg.Apply(p)
		slog.Info("programmed platform description",
			"contexts", cfg.NumContexts(), "sources", len(cfg.Sources))
	}

	if *probe {
		probeBits(p, cfg)
	}

	if !*watch {
		dump(os.Stdout, p, cfg)
		return nil
	}

	clear := term.IsTerminal(int(os.Stdout.Fd()))
	for {
		if clear {
			fmt.Print("\x1b[H\x1b[2J")
		}
		dump(os.Stdout, p, cfg)
		time.Sleep(*interval)
	}
}

// probeBits reports the implemented register widths, using the first
// described source and context as probe victims.
func probeBits(p *plic.PLIC, cfg *platform.Config) {
	if len(cfg.Sources) == 0 {
		slog.Warn("no sources described, skipping priority probe")
	} else {
		s := plic.Source(cfg.Sources[0].ID)
		max := p.ProbePriorityBits(s)
		fmt.Printf("max priority: %d (probed on source %d)\n", max, s)
	}

	max := p.ProbeThresholdBits(0)
	fmt.Printf("max threshold: %d (probed on context 0)\n", max)
}

func dump(w *os.File, p *plic.PLIC, cfg *platform.Config) {
	fmt.Fprintln(w, "contexts:")
	for hart := range cfg.Harts {
		for mode := plic.ModeMachine; int(mode) < int(cfg.Harts[hart].Privileges); mode++ {
			ctx := cfg.Context(hart, mode)
			fmt.Fprintf(w, "  %4d  hart %d %-10s  threshold %d\n", ctx, hart, mode, p.Threshold(ctx))
		}
	}

	fmt.Fprintln(w, "sources:")
	for _, src := range cfg.Sources {
		s := plic.Source(src.ID)
		ctx := cfg.SourceContext(src)

		var state []string
		if p.IsPending(s) {
			state = append(state, "pending")
		}
		if p.IsEnabled(s, ctx) {
			state = append(state, fmt.Sprintf("enabled@%d", ctx))
		}

		fmt.Fprintf(w, "  %4d  %-16s priority %-3d %s\n", src.ID, src.Name, p.Priority(s), strings.Join(state, " "))
	}
}

func main() {
	if err := run(); err != nil {
		slog.Error("plicdump failed", "err", err)
		os.Exit(1)
	}
}

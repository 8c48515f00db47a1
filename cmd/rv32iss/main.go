// Command rv32iss loads a raw binary or ELF32 RISC-V program and runs it
// on the rvcore simulator, optionally under the command-line or TUI
// debugger or the WebSocket remote debug transport. Flag layout and flow
// are grounded on the teacher's main.go, trimmed to this module's scope
// (no assembler/parser stage: programs arrive pre-assembled) and
// re-targeted from ARM's cycle/stack/entry flags to RV32's.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rv32iss/rv32iss/config"
	"github.com/rv32iss/rv32iss/internal/debugger"
	"github.com/rv32iss/rv32iss/internal/debugtransport"
	"github.com/rv32iss/rv32iss/internal/loader"
	"github.com/rv32iss/rv32iss/internal/memsys"
	"github.com/rv32iss/rv32iss/internal/rvcore"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		debugMode   = flag.Bool("debug", false, "Start in command-line debugger mode")
		tuiMode     = flag.Bool("tui", false, "Start in TUI debugger mode")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum cycles before halt (0 = use config default)")
		entryFlag   = flag.String("entry", "", "Entry point address, hex or decimal (overrides ELF/config default)")
		disass      = flag.Bool("disass", false, "Enable disassembly trace output")
		syncLevel   = flag.String("sync-level", "", "Observation sync level: none, pre, post, all (overrides config)")
		traceFlag   = flag.Bool("trace", false, "Enable execution trace output")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: config trace.output_file)")
		remoteFlag  = flag.Bool("remote", false, "Start the WebSocket remote debug transport")
		remoteAddr  = flag.String("remote-listen", "", "Remote debug transport listen address (overrides config)")
		configPath  = flag.String("config", "", "Path to config.toml (default: platform config dir)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32iss %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: rv32iss [flags] <program-file>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	programPath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyCLIOverrides(cfg, *maxCycles, *entryFlag, *disass, *syncLevel, *remoteAddr)

	mem := memsys.NewMemory()
	sys := memsys.NewSystem(mem)
	sys.SetTrapVector(memsys.CodeSegmentStart)

	image, err := os.ReadFile(programPath) // #nosec G304 -- user-specified program path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program file: %v\n", err)
		os.Exit(1)
	}

	entry, err := loadProgram(mem, image, cfg.Execution.DefaultEntry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}
	if *entryFlag != "" {
		// -entry also overrides the entry point an ELF header names.
		if entry, err = parseAddress(*entryFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
			os.Exit(1)
		}
	}

	hartCfg := rvcore.HartConfig{
		DisassEnabled: cfg.Execution.DisassEnabled,
		SyncLevel:     parseSyncLevel(cfg.Execution.SyncLevel),
		DebugEnabled:  cfg.Execution.Debug,
	}
	hart := rvcore.NewHart(rvcore.Collaborator{Mem: mem, Chan: sys, Trap: sys}, hartCfg)
	hart.PC = entry

	if cfg.Execution.DisassEnabled {
		sys.Disasm = os.Stdout
	}

	var traceWriter *os.File
	if *traceFlag {
		path := cfg.Trace.OutputFile
		if *traceFile != "" {
			path = *traceFile
		}
		f, err := os.Create(path) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		traceWriter = f
		bw := installTrace(hart, traceWriter, cfg.Trace.MaxEntries)
		defer bw.Flush()
	}

	machine := debugger.NewMachine(hart, sys)

	switch {
	case *remoteFlag:
		runRemote(cfg, machine, *maxCycles)
	case *tuiMode:
		runTUI(machine)
	case *debugMode:
		runCLIDebugger(machine)
	default:
		runHeadless(machine, cfg.Execution.MaxCycles)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func applyCLIOverrides(cfg *config.Config, maxCycles uint64, entry string, disass bool, syncLevel, remoteAddr string) {
	if maxCycles != 0 {
		cfg.Execution.MaxCycles = maxCycles
	}
	if entry != "" {
		cfg.Execution.DefaultEntry = entry
	}
	if disass {
		cfg.Execution.DisassEnabled = true
	}
	if syncLevel != "" {
		cfg.Execution.SyncLevel = syncLevel
	}
	if remoteAddr != "" {
		cfg.Remote.Listen = remoteAddr
	}
}

// loadProgram chooses raw vs ELF32 loading by magic number, then falls
// back to defaultEntry for raw images (spec.md's fetch/decode core takes
// a pre-assembled image; it does not itself resolve an entry symbol).
func loadProgram(mem *memsys.Memory, image []byte, defaultEntry string) (uint32, error) {
	if len(image) >= 4 && image[0] == 0x7F && image[1] == 'E' && image[2] == 'L' && image[3] == 'F' {
		result, err := loader.LoadELF(mem, image)
		if err != nil {
			return 0, err
		}
		return result.EntryPoint, nil
	}

	entry, err := parseAddress(defaultEntry)
	if err != nil {
		return 0, err
	}
	result, err := loader.LoadRaw(mem, image, entry)
	if err != nil {
		return 0, err
	}
	return result.EntryPoint, nil
}

func parseAddress(s string) (uint32, error) {
	var addr uint32
	if _, err := fmt.Sscanf(s, "0x%x", &addr); err == nil {
		return addr, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &addr); err == nil {
		return addr, nil
	}
	return 0, fmt.Errorf("invalid entry point: %s", s)
}

func parseSyncLevel(s string) rvcore.SyncLevel {
	switch s {
	case "pre":
		return rvcore.SyncPre
	case "post":
		return rvcore.SyncPost
	case "all":
		return rvcore.SyncAll
	default:
		return rvcore.SyncNone
	}
}

// installTrace wires a PostSync hook that logs one line per retired
// instruction, capped at maxEntries (spec.md §6 "Observability"). PostSync
// only fires at sync level post or all, so the level is raised to include
// it; the returned writer holds buffered lines until it is flushed.
func installTrace(hart *rvcore.Hart, w *os.File, maxEntries int) *bufio.Writer {
	bw := bufio.NewWriter(w)
	switch hart.Config.SyncLevel {
	case rvcore.SyncNone:
		hart.Config.SyncLevel = rvcore.SyncPost
	case rvcore.SyncPre:
		hart.Config.SyncLevel = rvcore.SyncAll
	}
	count := 0
	hart.PostSync = func(h *rvcore.Hart, opcodeIndex int) {
		if maxEntries > 0 && count >= maxEntries {
			return
		}
		fmt.Fprintf(bw, "pc=0x%08X next_pc=0x%08X opcode=%d\n", h.PC, h.NextPC, opcodeIndex)
		count++
		if count%1000 == 0 {
			_ = bw.Flush()
		}
	}
	return bw
}

func runHeadless(m *debugger.Machine, maxCycles uint64) {
	cycles := uint64(0)
	err := m.Hart.Run(m.Hart.PC, func() bool {
		cycles++
		return maxCycles == 0 || cycles <= maxCycles
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}

func runCLIDebugger(m *debugger.Machine) {
	d := debugger.NewDebugger(m)
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("rv32iss debugger. Type 'help' for commands.")
	for {
		fmt.Print("(rv32iss) ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if execErr := d.ExecuteCommand(line); execErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", execErr)
		}
		fmt.Print(d.GetOutput())

		if d.Running {
			stepUntilStop(d)
		}
	}
}

func stepUntilStop(d *debugger.Debugger) {
	for d.Running {
		if stop, reason := d.ShouldBreak(); stop {
			fmt.Printf("Stopped: %s at pc=0x%08X\n", reason, d.Machine.Hart.PC)
			d.Running = false
			return
		}
		if err := d.Machine.Hart.Step(); err != nil {
			fmt.Printf("Execution stopped: %v\n", err)
			d.Running = false
			return
		}
	}
}

func runTUI(m *debugger.Machine) {
	d := debugger.NewDebugger(m)
	tui := debugger.NewTUI(d)
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

func runRemote(cfg *config.Config, m *debugger.Machine, maxCycles uint64) {
	d := debugger.NewDebugger(m)
	server := debugtransport.NewServer(cfg.Remote.Listen, d)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Remote debug transport error: %v\n", err)
		}
	}()

	<-sigChan
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}

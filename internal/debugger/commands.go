package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// cmdRun resets the machine and starts execution from its entry point.
func (d *Debugger) cmdRun(args []string) error {
	d.Machine.Reset()
	d.Machine.State = StateRunning
	d.Running = true
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return nil
}

// cmdContinue resumes execution from the current PC.
func (d *Debugger) cmdContinue(args []string) error {
	if d.Machine.State == StateHalted {
		return fmt.Errorf("program is not running")
	}
	d.Machine.State = StateRunning
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction, stepping into calls.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over calls at the current PC.
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish steps out of the current function.
func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

// cmdBreak sets a breakpoint, optionally with an "if <condition>" clause.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(address, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at 0x%08X (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%08X\n", bp.ID, address)
	}
	return nil
}

// cmdTBreak sets a temporary (auto-delete-on-hit) breakpoint.
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%08X\n", bp.ID, address)
	return nil
}

// cmdDelete deletes one breakpoint by ID, or all if no ID is given.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint by ID.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint by ID.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a register or memory expression.
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <expression>")
	}

	expression := strings.Join(args, " ")
	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchWrite, expression, address, isRegister, register)
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Machine); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}
	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

func (d *Debugger) parseWatchExpression(expression string) (isRegister bool, register int, address uint32, err error) {
	expr := strings.ToLower(strings.TrimSpace(expression))
	if r, ok := registerAliases[expr]; ok {
		return true, int(r), 0, nil
	}
	if strings.HasPrefix(expr, "x") {
		var regNum int
		if _, scanErr := fmt.Sscanf(expr, "x%d", &regNum); scanErr == nil && regNum >= 0 && regNum <= 31 {
			return true, regNum, 0, nil
		}
	}

	addr, resolveErr := d.ResolveAddress(expression)
	if resolveErr != nil {
		return false, 0, 0, fmt.Errorf("cannot watch %q: %w", expression, resolveErr)
	}
	return false, 0, addr, nil
}

// cmdPrint evaluates and prints an expression.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}
	expr := strings.Join(args, " ")
	value, err := d.Evaluator.EvaluateExpression(expr, d.Machine, d.Symbols)
	if err != nil {
		return err
	}
	d.Printf("$%d = 0x%08X (%d)\n", d.Evaluator.GetValueNumber(), value, value)
	return nil
}

// cmdInfo reports machine or debugger state: "info registers", "info
// breakpoints", or "info watchpoints".
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		for i := 0; i < 32; i += 4 {
			d.Printf("x%-2d=0x%08X  x%-2d=0x%08X  x%-2d=0x%08X  x%-2d=0x%08X\n",
				i, d.Machine.Hart.GetX(uint32(i)),
				i+1, d.Machine.Hart.GetX(uint32(i+1)),
				i+2, d.Machine.Hart.GetX(uint32(i+2)),
				i+3, d.Machine.Hart.GetX(uint32(i+3)))
		}
		d.Printf("pc=0x%08X\n", d.Machine.Hart.PC)

	case "breakpoints", "break", "b":
		bps := d.Breakpoints.GetAllBreakpoints()
		if len(bps) == 0 {
			d.Println("No breakpoints set")
			return nil
		}
		for _, bp := range bps {
			status := "enabled"
			if !bp.Enabled {
				status = "disabled"
			}
			d.Printf("Breakpoint %d at 0x%08X [%s] hits=%d\n", bp.ID, bp.Address, status, bp.HitCount)
		}

	case "watchpoints", "watch", "w":
		wps := d.Watchpoints.GetAllWatchpoints()
		if len(wps) == 0 {
			d.Println("No watchpoints set")
			return nil
		}
		for _, wp := range wps {
			d.Printf("Watchpoint %d: %s hits=%d\n", wp.ID, wp.Expression, wp.HitCount)
		}

	default:
		return fmt.Errorf("unknown info subcommand: %s", args[0])
	}
	return nil
}

// cmdReset resets the machine without starting execution.
func (d *Debugger) cmdReset(args []string) error {
	d.Machine.Reset()
	d.Running = false
	d.StepMode = StepNone
	d.Println("Machine reset")
	return nil
}

// cmdHelp lists available commands.
func (d *Debugger) cmdHelp(args []string) error {
	d.Println("Commands:")
	d.Println("  run, continue, step, next, finish")
	d.Println("  break <addr> [if <cond>], tbreak <addr>, delete [id], enable <id>, disable <id>")
	d.Println("  watch <expr>")
	d.Println("  print <expr>, info registers|breakpoints|watchpoints")
	d.Println("  reset, help")
	return nil
}

package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rv32iss/rv32iss/internal/rvcore"
)

// ExpressionEvaluator evaluates the small expression language debugger
// commands accept: register names, CSR reads, memory dereferences,
// numeric literals, symbols, and a handful of binary operators.
type ExpressionEvaluator struct {
	valueHistory []uint32
	valueNumber  int
}

// NewExpressionEvaluator creates an evaluator with empty value history.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// EvaluateExpression evaluates expr and records the result in the $N
// value history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, m *Machine, symbols map[string]uint32) (uint32, error) {
	result, err := e.evaluate(expr, m, symbols)
	if err != nil {
		return 0, err
	}
	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)
	return result, nil
}

// Evaluate evaluates expr as a boolean condition (nonzero is true).
func (e *ExpressionEvaluator) Evaluate(expr string, m *Machine, symbols map[string]uint32) (bool, error) {
	result, err := e.evaluate(expr, m, symbols)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

// GetValueNumber returns the index of the most recently recorded value.
func (e *ExpressionEvaluator) GetValueNumber() int { return e.valueNumber }

// GetValue returns a previously evaluated value by its $N index (1-based).
func (e *ExpressionEvaluator) GetValue(number int) (uint32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

func (e *ExpressionEvaluator) evaluate(expr string, m *Machine, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	if val, err := e.trySimpleEval(expr, m, symbols); err == nil {
		return val, nil
	}

	operators := []string{"<<", ">>", "&", "|", "^", "+", "-", "*", "/"}
	for _, op := range operators {
		patterns := []string{" " + op + " ", " " + op, op + " "}
		for _, pattern := range patterns {
			idx := strings.Index(expr, pattern)
			if idx < 0 {
				continue
			}
			opPos := idx
			if pattern[0] == ' ' {
				opPos++
			}

			left := strings.TrimSpace(expr[:opPos])
			right := strings.TrimSpace(expr[opPos+len(op):])
			if left == "" || right == "" {
				continue
			}

			leftVal, err := e.evaluate(left, m, symbols)
			if err != nil {
				continue
			}
			rightVal, err := e.evaluate(right, m, symbols)
			if err != nil {
				continue
			}
			return e.applyOperator(leftVal, rightVal, op)
		}
	}

	return 0, fmt.Errorf("invalid expression: %s", expr)
}

func (e *ExpressionEvaluator) trySimpleEval(expr string, m *Machine, symbols map[string]uint32) (uint32, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addr, err := e.evaluate(strings.TrimSpace(expr[1:len(expr)-1]), m, symbols)
		if err != nil {
			return 0, err
		}
		value, err := m.ReadWord(addr)
		if err != nil {
			return 0, fmt.Errorf("failed to read memory at 0x%08X: %w", addr, err)
		}
		return value, nil
	}

	if strings.HasPrefix(expr, "*") {
		addr, err := e.evaluate(strings.TrimSpace(expr[1:]), m, symbols)
		if err != nil {
			return 0, err
		}
		value, err := m.ReadWord(addr)
		if err != nil {
			return 0, fmt.Errorf("failed to read memory at 0x%08X: %w", addr, err)
		}
		return value, nil
	}

	if strings.HasPrefix(expr, "csr[") && strings.HasSuffix(expr, "]") {
		num, err := e.evaluate(strings.TrimSpace(expr[4:len(expr)-1]), m, symbols)
		if err != nil {
			return 0, err
		}
		return m.Sys.ReadChannel(rvcore.ChannelCSR, num), nil
	}

	if strings.HasPrefix(expr, "$") {
		num, err := strconv.Atoi(expr[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid value reference: %s", expr)
		}
		return e.GetValue(num)
	}

	if val, err := e.evalRegister(expr, m); err == nil {
		return val, nil
	}

	if addr, exists := symbols[expr]; exists {
		return addr, nil
	}

	return e.parseNumber(expr)
}

// registerAliases maps the ABI mnemonic names to x-register numbers
// (spec.md's register file is numbered x0-x31; these are the
// conventional software names used in assembly and calling-convention
// documentation).
var registerAliases = map[string]uint32{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

func (e *ExpressionEvaluator) evalRegister(expr string, m *Machine) (uint32, error) {
	expr = strings.ToLower(expr)

	if expr == "pc" {
		return m.Hart.PC, nil
	}
	if r, ok := registerAliases[expr]; ok {
		return m.Hart.GetX(r), nil
	}
	if strings.HasPrefix(expr, "x") {
		var regNum uint32
		if _, err := fmt.Sscanf(expr, "x%d", &regNum); err == nil && regNum <= 31 {
			return m.Hart.GetX(regNum), nil
		}
	}
	return 0, fmt.Errorf("not a register")
}

func (e *ExpressionEvaluator) parseNumber(expr string) (uint32, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(strings.ToLower(expr), "0x") {
		val, err := strconv.ParseUint(expr[2:], 16, 32)
		if err != nil {
			return 0, err
		}
		return uint32(val), nil
	}
	if strings.HasPrefix(expr, "0b") || strings.HasPrefix(expr, "0B") {
		val, err := strconv.ParseUint(expr[2:], 2, 32)
		if err != nil {
			return 0, err
		}
		return uint32(val), nil
	}
	if strings.HasPrefix(expr, "0") && len(expr) > 1 {
		val, err := strconv.ParseUint(expr, 8, 32)
		if err != nil {
			return 0, err
		}
		return uint32(val), nil
	}

	val, err := strconv.ParseInt(expr, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(val), nil
}

func (e *ExpressionEvaluator) applyOperator(left, right uint32, op string) (uint32, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case "&":
		return left & right, nil
	case "|":
		return left | right, nil
	case "^":
		return left ^ right, nil
	case "<<":
		return left << right, nil
	case ">>":
		return left >> right, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", op)
	}
}

// Reset clears the $N value history.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}

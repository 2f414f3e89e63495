package vm

import (
	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/object"
	"github.com/deepnoodle-ai/kut/op"
)

// StepMode selects which instructions are reported to Observer.OnStep.
type StepMode uint8

const (
	// StepAll reports every instruction.
	StepAll StepMode = iota
	// StepNone reports no instructions; calls and returns are still
	// reported if the config asks for them.
	StepNone
	// StepSampled reports one instruction out of every SampleInterval,
	// counted across all activations of a run.
	StepSampled
)

// ObserverConfig is returned by Observer.Config and read once, by New.
type ObserverConfig struct {
	StepMode StepMode
	// SampleInterval applies to StepSampled only. NormalizeConfig raises
	// values below 1 to 1.
	SampleInterval int
	ObserveCalls   bool
	ObserveReturns bool
}

// NewObserverConfig returns a config for the given mode that also observes
// calls and returns, sampling every 1000 instructions under StepSampled.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig returns cfg with out-of-range values clamped.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives execution events synchronously, on the goroutine running
// the activation. Any method may stop the run by returning false, which fails
// the current activation with an errz.Halted error.
type Observer interface {
	Config() ObserverConfig
	// OnStep is called before an instruction executes.
	OnStep(event StepEvent) bool
	// OnCall is called before a callee activation starts.
	OnCall(event CallEvent) bool
	// OnReturn is called after a callee activation returns without error.
	OnReturn(event ReturnEvent) bool
}

// StepEvent describes the instruction about to execute.
type StepEvent struct {
	// Template is the pool index of the executing template, or -1.
	Template     int
	FunctionName string
	Offset       int
	Instruction  bytecode.Instruction
	Opcode       op.Code
	OpcodeName   string
	// StackDepth is the number of values on the activation's operand stack.
	StackDepth int
	// CallDepth is 0 for a root activation.
	CallDepth int
}

// CallEvent describes a callee activation about to start.
type CallEvent struct {
	Template     int
	FunctionName string
	ArgCount     int
	// CallDepth is the depth of the callee.
	CallDepth int
}

// ReturnEvent describes a callee activation that returned.
type ReturnEvent struct {
	Template     int
	FunctionName string
	Result       object.Object
	// CallDepth is the depth of the caller, and 0 for host calls.
	CallDepth int
}

// NoOpObserver observes everything and never halts. Embed it to implement
// only the callbacks you need.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}

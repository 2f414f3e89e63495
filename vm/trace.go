package vm

import "github.com/rs/zerolog"

// TraceObserver logs every instruction, call and return at trace level.
type TraceObserver struct {
	logger zerolog.Logger
}

// NewTraceObserver returns an observer that writes execution events to the
// given logger.
func NewTraceObserver(logger zerolog.Logger) *TraceObserver {
	return &TraceObserver{logger: logger}
}

func (o *TraceObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (o *TraceObserver) OnStep(event StepEvent) bool {
	o.logger.Trace().
		Int("template", event.Template).
		Str("function", event.FunctionName).
		Int("offset", event.Offset).
		Str("instruction", event.Instruction.String()).
		Int("stack", event.StackDepth).
		Int("depth", event.CallDepth).
		Msg("step")
	return true
}

func (o *TraceObserver) OnCall(event CallEvent) bool {
	o.logger.Trace().
		Str("function", event.FunctionName).
		Int("argc", event.ArgCount).
		Int("depth", event.CallDepth).
		Msg("enter")
	return true
}

func (o *TraceObserver) OnReturn(event ReturnEvent) bool {
	o.logger.Trace().
		Str("function", event.FunctionName).
		Str("result", event.Result.Inspect()).
		Int("depth", event.CallDepth).
		Msg("leave")
	return true
}

var _ Observer = (*TraceObserver)(nil)

package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
	"github.com/deepnoodle-ai/kut/op"
)

// TestObserver is a test observer that records events.
type TestObserver struct {
	NoOpObserver
	config  *ObserverConfig
	Steps   []StepEvent
	Calls   []CallEvent
	Returns []ReturnEvent
}

func (o *TestObserver) Config() ObserverConfig {
	if o.config != nil {
		return *o.config
	}
	return o.NoOpObserver.Config()
}

func (o *TestObserver) OnStep(event StepEvent) bool {
	o.Steps = append(o.Steps, event)
	return true
}

func (o *TestObserver) OnCall(event CallEvent) bool {
	o.Calls = append(o.Calls, event)
	return true
}

func (o *TestObserver) OnReturn(event ReturnEvent) bool {
	o.Returns = append(o.Returns, event)
	return true
}

func callProgram() ([]object.Object, []*bytecode.Template) {
	literals := []object.Object{object.NewNumber(5)}
	return literals, []*bytecode.Template{
		tmpl("main", 2, nil,
			bytecode.CaptureFunc(0, 1),
			bytecode.PushLiteral(0),
			bytecode.CallMethodR(1, 1, 0),
			bytecode.RetfMethodR(1),
		),
		tmpl("identity", 1, nil, bytecode.RetfMethodR(0)),
	}
}

func TestObserverEvents(t *testing.T) {
	observer := &TestObserver{}
	literals, templates := callProgram()
	_, result, err := runMain(t, literals, templates, WithObserver(observer))
	require.Nil(t, err)
	require.Equal(t, object.NewNumber(5), result)

	require.Len(t, observer.Steps, 5)
	first := observer.Steps[0]
	require.Equal(t, 0, first.Offset)
	require.Equal(t, op.CaptureFunc, first.Opcode)
	require.Equal(t, "CaptureFunc", first.OpcodeName)
	require.Equal(t, "main", first.FunctionName)
	require.Equal(t, 0, first.CallDepth)
	require.Equal(t, 0, first.Template)

	call := observer.Steps[2]
	require.Equal(t, op.CallMethodR, call.Opcode)
	require.Equal(t, 1, call.StackDepth)

	inner := observer.Steps[3]
	require.Equal(t, "identity", inner.FunctionName)
	require.Equal(t, 1, inner.CallDepth)
	require.Equal(t, 1, inner.Template)
	require.Equal(t, 0, inner.StackDepth)

	require.Equal(t, []CallEvent{{Template: 1, FunctionName: "identity", ArgCount: 1, CallDepth: 1}}, observer.Calls)
	require.Len(t, observer.Returns, 1)
	require.Equal(t, "identity", observer.Returns[0].FunctionName)
	require.Equal(t, 1, observer.Returns[0].Template)
	require.Equal(t, object.NewNumber(5), observer.Returns[0].Result)
	require.Equal(t, 0, observer.Returns[0].CallDepth)
}

func TestObserverStepModes(t *testing.T) {
	literals, templates := callProgram()

	none := NewObserverConfig(StepNone)
	observer := &TestObserver{config: &none}
	_, _, err := runMain(t, literals, templates, WithObserver(observer))
	require.Nil(t, err)
	require.Empty(t, observer.Steps)
	require.Len(t, observer.Calls, 1)

	sampled := NewObserverConfig(StepSampled)
	sampled.SampleInterval = 2
	observer = &TestObserver{config: &sampled}
	_, _, err = runMain(t, literals, templates, WithObserver(observer))
	require.Nil(t, err)
	require.Len(t, observer.Steps, 2)
	require.Equal(t, 1, observer.Steps[0].Offset)
	require.Equal(t, "identity", observer.Steps[1].FunctionName)

	quiet := NewObserverConfig(StepAll)
	quiet.ObserveCalls = false
	quiet.ObserveReturns = false
	observer = &TestObserver{config: &quiet}
	_, _, err = runMain(t, literals, templates, WithObserver(observer))
	require.Nil(t, err)
	require.Len(t, observer.Steps, 5)
	require.Empty(t, observer.Calls)
	require.Empty(t, observer.Returns)
}

func TestNormalizeConfig(t *testing.T) {
	cfg := NormalizeConfig(ObserverConfig{StepMode: StepSampled})
	require.Equal(t, 1, cfg.SampleInterval)
	cfg = NormalizeConfig(ObserverConfig{StepMode: StepAll})
	require.Equal(t, 0, cfg.SampleInterval)
}

type haltingObserver struct {
	NoOpObserver
	haltOnCall bool
}

func (o *haltingObserver) OnStep(event StepEvent) bool {
	return o.haltOnCall || event.Offset < 1
}

func (o *haltingObserver) OnCall(event CallEvent) bool {
	return !o.haltOnCall
}

func TestObserverHalts(t *testing.T) {
	literals, templates := callProgram()

	act, _, err := runMain(t, literals, templates, WithObserver(&haltingObserver{}))
	e := requireKind(t, err, errz.Halted, 0, 0)
	require.Equal(t, "Halted: execution halted by observer", e.Error())
	require.Equal(t, 1, e.Trace[0].Offset)
	require.Empty(t, act.Stack())

	_, _, err = runMain(t, literals, templates, WithObserver(&haltingObserver{haltOnCall: true}))
	require.True(t, errors.Is(err, errz.ErrHalted))
	require.Equal(t, 2, err.(*errz.Error).Trace[0].Offset)
}

func TestTraceObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	literals, templates := callProgram()
	_, _, err := runMain(t, literals, templates, WithObserver(NewTraceObserver(logger)))
	require.Nil(t, err)
	out := buf.String()
	require.Contains(t, out, `"instruction":"CaptureFunc\t0,1"`)
	require.Contains(t, out, `"message":"enter"`)
	require.Contains(t, out, `"result":"5"`)

	buf.Reset()
	quiet := zerolog.New(&buf).Level(zerolog.InfoLevel)
	_, _, err = runMain(t, literals, templates, WithObserver(NewTraceObserver(quiet)))
	require.Nil(t, err)
	require.Empty(t, buf.String())
}

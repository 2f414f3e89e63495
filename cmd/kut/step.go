package main

import (
	"fmt"
	"io"
	"strings"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"

	"github.com/deepnoodle-ai/kut/vm"
)

// stepAction is what the user chose to do at a step prompt.
type stepAction int

const (
	stepNext stepAction = iota
	stepContinue
	stepQuit
)

// stepObserver prints each instruction before it runs and waits for the user
// to choose how to proceed.
type stepObserver struct {
	vm.NoOpObserver
	out       io.Writer
	wait      func() (stepAction, error)
	continued bool
}

func newStepObserver(out io.Writer, wait func() (stepAction, error)) *stepObserver {
	return &stepObserver{out: out, wait: wait}
}

func (o *stepObserver) OnStep(event vm.StepEvent) bool {
	if o.continued {
		return true
	}
	name := event.FunctionName
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Fprintf(o.out, "%s%s@%d  %s  [stack %d]  (n)ext (c)ontinue (q)uit\n",
		indent(event.CallDepth), name, event.Offset,
		event.Instruction, event.StackDepth)
	action, err := o.wait()
	if err != nil {
		fmt.Fprintln(o.out, red(err.Error()))
		return false
	}
	switch action {
	case stepContinue:
		o.continued = true
	case stepQuit:
		return false
	}
	return true
}

func (o *stepObserver) OnCall(event vm.CallEvent) bool {
	if !o.continued {
		fmt.Fprintf(o.out, "%s-> %s(%d args)\n", indent(event.CallDepth-1), event.FunctionName, event.ArgCount)
	}
	return true
}

func (o *stepObserver) OnReturn(event vm.ReturnEvent) bool {
	if !o.continued {
		fmt.Fprintf(o.out, "%s<- %s = %s\n", indent(event.CallDepth), event.FunctionName, event.Result.Inspect())
	}
	return true
}

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}

// waitForKey blocks until a key is pressed on the terminal.
func waitForKey() (stepAction, error) {
	action := stepNext
	err := keyboard.Listen(func(key keys.Key) (stop bool, err error) {
		switch key.Code {
		case keys.CtrlC:
			action = stepQuit
		case keys.RuneKey:
			switch string(key.Runes) {
			case "q":
				action = stepQuit
			case "c":
				action = stepContinue
			}
		}
		return true, nil
	})
	return action, err
}

var _ vm.Observer = (*stepObserver)(nil)

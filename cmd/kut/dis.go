package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/kut/bytecode"
	"github.com/deepnoodle-ai/kut/dis"
	"github.com/deepnoodle-ai/kut/program"
)

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis FILE",
		Short: "Disassemble the templates of a program manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  disHandler,
	}
	cmd.Flags().String("func", "", "template to disassemble, by name or index")
	return cmd
}

func disHandler(cmd *cobra.Command, args []string) error {
	prog, err := program.Load(args[0])
	if err != nil {
		return err
	}
	pools := dis.Program{Literals: prog.Literals, Templates: prog.Templates}
	out := cmd.OutOrStdout()

	// If a template was named, disassemble it only
	if name, _ := cmd.Flags().GetString("func"); name != "" {
		t, err := findTemplate(prog.Templates, name)
		if err != nil {
			return err
		}
		return dis.PrintTemplate(t, pools, out)
	}
	for i, t := range prog.Templates {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if i == prog.Entry {
			fmt.Fprint(out, "(entry) ")
		}
		if err := dis.PrintTemplate(t, pools, out); err != nil {
			return fmt.Errorf("template %d: %w", i, err)
		}
	}
	return nil
}

func findTemplate(templates []*bytecode.Template, name string) (*bytecode.Template, error) {
	for _, t := range templates {
		if t.Name() == name {
			return t, nil
		}
	}
	if index, err := strconv.Atoi(name); err == nil && index >= 0 && index < len(templates) {
		return templates[index], nil
	}
	return nil, fmt.Errorf("template %q not found", name)
}

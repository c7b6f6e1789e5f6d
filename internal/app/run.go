package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/optlang/internal/binding"
	"github.com/vk/optlang/internal/ctxlog"
	"github.com/vk/optlang/internal/lpformat"
)

// Run compiles the loaded definition and writes the LP text. Declarations
// compile in file order within each phase: every variable first, then
// every constraint, then the objective, so a constraint can reference any
// family the workspace declares regardless of file layout.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	root := binding.NewContext()

	for _, decl := range a.def.Variables {
		if err := a.compiler.DeclareVariable(decl.Name, decl.Index, decl.Kind, decl.Bounds, root); err != nil {
			return fmt.Errorf("variable %q: %w", decl.Name, err)
		}
	}
	a.logger.Debug("Variable families declared.", "count", len(a.def.Variables))

	for _, decl := range a.def.Constraints {
		if err := a.compiler.CompileConstraint(decl.Name, decl.Clauses, decl.Expr, root); err != nil {
			return err
		}
	}
	a.logger.Debug("Constraints compiled.", "count", len(a.def.Constraints))

	for _, decl := range a.def.Objectives {
		if err := a.compiler.CompileObjective(decl.Expr, decl.Direction, root, true); err != nil {
			return err
		}
	}

	m := a.compiler.Model()
	a.logger.Info("Model compiled.",
		"variables", len(m.Instances()),
		"constraints", len(m.Constraints()),
	)

	out := a.outW
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := lpformat.Write(out, m); err != nil {
		return fmt.Errorf("failed to write LP output: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/vk/optlang/internal/compile"
	"github.com/vk/optlang/internal/ctxlog"
	"github.com/vk/optlang/internal/eval"
	"github.com/vk/optlang/internal/frontend"
	"github.com/vk/optlang/internal/model"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	def      *frontend.Definition
	compiler *compile.Compiler
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, the parsed model
// definition, and a compiler primed with the merged constant-data table.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	def, err := frontend.Load(ctx, cfg.ModelPath)
	if err != nil {
		// A failure to load the model definition is a fatal startup error.
		panic(fmt.Errorf("failed to load model definition: %w", err))
	}
	logger.Debug("Model definition parsed.")

	params, err := mergedParams(def, cfg.ParamsPath)
	if err != nil {
		panic(fmt.Errorf("failed to load params: %w", err))
	}

	m := model.New(logger)
	compiler := compile.New(m, eval.New(params))

	return &App{
		outW:     outW,
		logger:   logger,
		def:      def,
		compiler: compiler,
	}
}

// Compiler returns the application's compiler. This is primarily for testing.
func (a *App) Compiler() *compile.Compiler {
	return a.compiler
}

// mergedParams builds the constant-data table: params blocks from the
// model files first, then entries from the optional JSON file, which win
// on name collisions.
func mergedParams(def *frontend.Definition, paramsPath string) (cty.Value, error) {
	merged := make(map[string]cty.Value, len(def.Params))
	for name, v := range def.Params {
		merged[name] = v
	}

	if paramsPath != "" {
		data, err := os.ReadFile(paramsPath)
		if err != nil {
			return cty.NilVal, err
		}
		ty, err := ctyjson.ImpliedType(data)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", paramsPath, err)
		}
		v, err := ctyjson.Unmarshal(data, ty)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", paramsPath, err)
		}
		if !v.Type().IsObjectType() && !v.Type().IsMapType() {
			return cty.NilVal, fmt.Errorf("%s: top-level value must be a JSON object", paramsPath)
		}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			merged[k.AsString()] = ev
		}
	}

	if len(merged) == 0 {
		return cty.EmptyObjectVal, nil
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	attrs := make(map[string]cty.Value, len(merged))
	for _, name := range names {
		attrs[name] = merged[name]
	}
	return cty.ObjectVal(attrs), nil
}

package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"goeval/config"
	"goeval/eval"
	"goeval/inference"
	"goeval/searcher"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a YAML config file (optional)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	if !cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	candidate, closeCandidate, err := bindPolicy(cfg, "candidate", cfg.EvalModel, cfg.EvalDevice, cfg.EvalReadouts)
	if err != nil {
		log.Fatal().Err(err).Msg("bind candidate policy")
	}
	defer closeCandidate()

	reference, closeReference, err := bindPolicy(cfg, "reference", cfg.TargetModel, cfg.TargetDevice, cfg.TargetReadouts)
	if err != nil {
		log.Fatal().Err(err).Msg("bind reference policy")
	}
	defer closeReference()

	if candidate.Name() == reference.Name() {
		log.Fatal().Msgf("both policies resolve to name %q; stats would be meaningless", candidate.Name())
	}

	opts := []eval.Option{
		eval.WithVerbose(cfg.Verbose),
		eval.WithBoard(cfg.BoardSize, cfg.Komi),
	}
	if cfg.MinPassAliveMove > 0 {
		opts = append(opts, eval.WithMinPassAliveMoves(cfg.MinPassAliveMove))
	}
	if cfg.SGFDir != "" {
		opts = append(opts, eval.WithSGFDir(cfg.SGFDir))
	}
	if cfg.ExportTable != "" {
		opts = append(opts, eval.WithExport(cfg.ExportTable, cfg.ExportTag))
	}

	evaluator := eval.NewEvaluator(candidate, reference, cfg.ParallelGames, opts...)
	if _, err := evaluator.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("evaluation run failed")
	}
}

// bindPolicy builds the inference stack for one side and names the policy
// after its model file. An empty model path binds the uniform backend, which
// is only useful for dry runs.
func bindPolicy(cfg *config.Config, fallbackName, model, device string, readouts int) (*eval.Binding, func(), error) {
	var backend inference.Backend
	name := fallbackName
	if model == "" {
		log.Warn().Msgf("no model for %s policy, using uniform backend", fallbackName)
		backend = inference.Uniform{}
	} else {
		b, err := inference.NewOnnxBackend(inference.OnnxConfig{
			Model:    model,
			Library:  cfg.OnnxLibrary,
			Device:   device,
			Size:     cfg.BoardSize,
			MaxBatch: cfg.ParallelGames,
		})
		if err != nil {
			return nil, nil, err
		}
		backend = b
		name = strings.TrimSuffix(filepath.Base(model), filepath.Ext(model))
	}

	svc := inference.NewBatcher(backend, cfg.ParallelGames)
	binding, err := eval.NewBinding(name, svc, searcher.Options{
		Readouts:         readouts,
		VirtualLosses:    cfg.VirtualLosses,
		Seed:             cfg.Seed,
		ValueInitPenalty: cfg.ValueInitPenalty,
		ResignEnabled:    cfg.ResignEnabled,
		ResignThreshold:  cfg.ResignThreshold,
	})
	if err != nil {
		svc.Close()
		return nil, nil, err
	}
	return binding, func() { svc.Close() }, nil
}

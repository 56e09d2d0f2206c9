// cmd/bot-builder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lex-build-workers/internal/bootstrap"
	"lex-build-workers/internal/common/camunda"
	"lex-build-workers/internal/common/config"
	"lex-build-workers/internal/common/logger"
	"lex-build-workers/internal/common/observability"
	"lex-build-workers/internal/models"
	"lex-build-workers/internal/orchestrator"
	"lex-build-workers/pkg/registry"
)

func main() {
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)
	startCmd := flag.NewFlagSet("start", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate-registry", flag.ExitOnError)

	// Run command flags
	runArtifact := runCmd.String("artifact", "", "Artifact ID to build")
	maxSteps := runCmd.Int("max-steps", orchestrator.DefaultMaxSteps, "Stop after this many stage executions")

	// Start command flags
	startArtifact := startCmd.String("artifact", "", "Artifact ID to build")
	processID := startCmd.String("process", "", "BPMN process id (defaults to camunda.process_id)")

	// Validate command flags
	registryPath := validateCmd.String("path", "", "Path to registry file (empty validates the embedded default)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCmd.Parse(os.Args[2:])
		if *runArtifact == "" {
			fmt.Println("Error: artifact is required for run.")
			runCmd.Usage()
			os.Exit(1)
		}
		if err := run(*runArtifact, *maxSteps); err != nil {
			fmt.Printf("Build failed: %v\n", err)
			os.Exit(1)
		}

	case "start":
		startCmd.Parse(os.Args[2:])
		if *startArtifact == "" {
			fmt.Println("Error: artifact is required for start.")
			startCmd.Usage()
			os.Exit(1)
		}
		key, err := start(*startArtifact, *processID)
		if err != nil {
			fmt.Printf("Error starting process: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Started process instance %d for artifact %s\n", key, *startArtifact)

	case "validate-registry":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(*registryPath); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}

// run drives one artifact through every stage in this process.
func run(artifactID string, maxSteps int) error {
	cfg, zapLog, err := setup()
	if err != nil {
		return err
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New("bot-builder", log)
	defer obs.Shutdown()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	runner := app.Workers.Runner(log, orchestrator.WithMaxSteps(maxSteps), orchestrator.WithTracer(obs.Tracer()))

	started := time.Now()
	res, err := runner.Run(ctx, &models.StageEvent{Bot: models.BotRef{ArtifactID: artifactID}})
	if res != nil {
		obs.RecordRun(ctx, string(res.State), time.Since(started))
	}
	if err != nil {
		return err
	}

	artifact, err := app.Tracker.Repository().Get(ctx, artifactID)
	if err != nil {
		return err
	}
	summary := map[string]interface{}{
		"artifactId":     artifactID,
		"state":          res.State,
		"steps":          res.Steps,
		"status":         artifact.Status,
		"exportLocation": artifact.ExportLocation,
	}
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
	return nil
}

// start hands the artifact to the BPMN process on the Zeebe broker.
func start(artifactID, processID string) (int64, error) {
	cfg, zapLog, err := setup()
	if err != nil {
		return 0, err
	}
	defer zapLog.Sync()

	if processID == "" {
		processID = cfg.Camunda.ProcessID
	}

	client, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		return 0, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Camunda.RequestTimeout)+30*time.Second)
	defer cancel()

	key, err := client.StartBotBuild(ctx, processID, artifactID)
	if err != nil {
		return 0, err
	}
	zapLog.Info("process instance created",
		zap.String("artifactId", artifactID),
		zap.String("processId", processID),
		zap.Int64("processInstanceKey", key),
	)
	return key, nil
}

func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	for _, kind := range registry.Kinds {
		spec, _ := reg.Lookup(kind)
		schema := "none"
		if reg.SchemaJSON(kind) != nil {
			schema = "present"
		}
		fmt.Printf("  %-10s %-20s schema=%s\n", kind, spec.DisplayName, schema)
	}
	return nil
}

func help() {
	fmt.Println("Usage: bot-builder <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  run                Build an artifact in-process through every stage")
	fmt.Println("  start              Start the bot build process on the Zeebe broker")
	fmt.Println("  validate-registry  Validate a resource registry file")
	fmt.Println("  help               Show this help message")
	fmt.Println("\nUse 'bot-builder <command> -h' for more information about a command.")
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"api-test-planner/internal/config"
	"api-test-planner/internal/generator"
	"api-test-planner/internal/history"
	"api-test-planner/internal/inference"
	"api-test-planner/internal/llm"
	"api-test-planner/internal/logger"
	"api-test-planner/internal/models"
	"api-test-planner/internal/parser"
	"api-test-planner/internal/planner"
	"api-test-planner/internal/reporter"
	"api-test-planner/internal/validator"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	_ "github.com/go-sql-driver/mysql"   // for mysql
	_ "github.com/lib/pq"                // for postgres
)

func main() {
	inputPath := flag.String("input", "", "Path to API requirements file")
	openapiURL := flag.String("openapi", "", "Base URL of a running API to discover via its OpenAPI document")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	outputDir := flag.String("output", "", "Output directory for generated artifacts (overrides config)")
	formats := flag.String("formats", "pytest", "Comma-separated output formats (pytest,postman,junit,gherkin,openapi)")
	existingPath := flag.String("existing", "", "Path to a file listing existing test names, one per line")
	showProviders := flag.Bool("providers", false, "List configured LLM providers and exit")

	dbType := flag.String("db-type", "", "Test history database type (postgres|mysql|sqlserver)")
	dbHost := flag.String("db-host", "", "Test history database host")
	dbPort := flag.Int("db-port", 0, "Test history database port")
	dbName := flag.String("db-name", "", "Test history database name")
	dbUser := flag.String("db-user", "", "Test history database user")
	dbPassword := flag.String("db-password", "", "Test history database password")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *outputDir != "" {
		cfg.Reporting.OutputDir = *outputDir
	}

	appLogger, err := logger.NewLogger("logs")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	registry := llm.NewRegistry(cfg.LLMSettings(), appLogger)

	if *showProviders {
		printProviders(registry)
		return
	}

	if *inputPath == "" && *openapiURL == "" {
		fmt.Println("Usage:")
		fmt.Println("  api-test-planner -input <requirements-file> [flags]")
		fmt.Println("  api-test-planner -openapi <base-url> [flags]")
		flag.Usage()
		os.Exit(1)
	}

	var completer llm.Completer
	if cfg.HasAPIKey() || isLocalProvider(cfg.LLM.Provider) {
		adapter, err := registry.Adapter("")
		if err != nil {
			fmt.Printf("LLM provider unavailable, continuing with deterministic inference only: %v\n", err)
		} else {
			completer = adapter
		}
	}

	ctx := context.Background()

	// Build the system context from one of the two sources.
	var sysCtx *models.SystemContext
	var requirementsText string
	if *openapiURL != "" {
		swaggerParser := parser.NewSwaggerParser(*openapiURL)
		sysCtx, err = swaggerParser.ParseSystemContext()
		if err != nil {
			log.Fatalf("Failed to discover API at %s: %v", *openapiURL, err)
		}
	} else {
		raw, err := os.ReadFile(*inputPath)
		if err != nil {
			log.Fatalf("Failed to read requirements file: %v", err)
		}
		requirementsText = string(raw)

		var usedLLM bool
		sysCtx, usedLLM, err = parser.ParseRequirements(ctx, requirementsText, completer, cfg.LLM.ParsingModel, cfg.LLM.ParsingTemp)
		if err != nil {
			log.Fatalf("Failed to parse requirements: %v", err)
		}
		if usedLLM {
			fmt.Println("Converted prose requirements to structured format via LLM")
		}
	}

	fmt.Printf("Found %d endpoints to plan for\n", len(sysCtx.Endpoints))
	appLogger.LogStage("parse", fmt.Sprintf("%d endpoints", len(sysCtx.Endpoints)))

	inference.InferSchemas(ctx, sysCtx.Endpoints, requirementsText, inference.Options{
		Completer:   completer,
		Model:       cfg.LLM.GenerationModel,
		Temperature: cfg.LLM.GenerationTemp,
		Timeout:     cfg.RefineTimeout(),
		Log:         appLogger,
	})

	existingTests, store, err := loadExistingTests(ctx, cfg, *existingPath, *dbType, *dbHost, *dbPort, *dbName, *dbUser, *dbPassword)
	if err != nil {
		log.Fatalf("Failed to load existing tests: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	plan, err := planner.PlanTests(sysCtx, existingTests)
	if err != nil {
		log.Fatalf("Failed to plan tests: %v", err)
	}
	coverage := validator.ValidateCoverage(plan.TestNames(), existingTests)
	appLogger.LogStage("plan", plan.Rationale)

	if err := writeArtifacts(plan, sysCtx, cfg.Reporting.OutputDir, *formats); err != nil {
		log.Fatalf("Failed to write artifacts: %v", err)
	}

	testReporter := reporter.NewReporter(reporter.ReportingConfig{
		OutputDir: cfg.Reporting.OutputDir,
		Detailed:  cfg.Reporting.Detailed,
	})
	reportPath, err := testReporter.WriteReport(plan, &coverage)
	if err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	if store != nil {
		if err := store.RecordPlan(ctx, plan); err != nil {
			fmt.Printf("Warning: failed to record plan in history database: %v\n", err)
		}
	}

	fmt.Printf("Planned %d tests (%d new, %d already covered)\n",
		coverage.TotalPlanned, len(coverage.NewTests), len(coverage.AlreadyCovered))
	fmt.Printf("Report written to %s\n", reportPath)
	fmt.Println(plan.Rationale)
}

func isLocalProvider(name string) bool {
	switch name {
	case "ollama", "vllm", "tgi":
		return true
	}
	return false
}

func printProviders(registry *llm.Registry) {
	for _, status := range registry.Providers() {
		state := "unavailable"
		if status.Available {
			state = "available"
		}
		if status.BlockedByPrivacy {
			state = "blocked (external calls disabled)"
		}
		locality := "external"
		if status.IsLocal {
			locality = "local"
		}
		fmt.Printf("%-12s %-8s %s\n", status.Name, locality, state)
		for _, model := range status.Models {
			fmt.Printf("  - %s\n", model)
		}
	}
}

// loadExistingTests merges test names from the -existing file and the
// history database. Flags override the configured database settings.
func loadExistingTests(ctx context.Context, cfg *config.Config, existingPath, dbType, dbHost string, dbPort int, dbName, dbUser, dbPassword string) ([]string, *history.Store, error) {
	var existing []string

	if existingPath != "" {
		f, err := os.Open(existingPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open existing tests file: %w", err)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			name := strings.TrimSpace(scanner.Text())
			if name != "" && !strings.HasPrefix(name, "#") {
				existing = append(existing, name)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to read existing tests file: %w", err)
		}
	}

	historyCfg := history.Config{
		Type:     cfg.History.Type,
		Host:     cfg.History.Host,
		Port:     cfg.History.Port,
		Database: cfg.History.Database,
		User:     cfg.History.User,
		Password: cfg.History.Password,
		Table:    cfg.History.Table,
	}
	if dbType != "" {
		historyCfg.Type = dbType
		historyCfg.Host = dbHost
		historyCfg.Port = dbPort
		historyCfg.Database = dbName
		historyCfg.User = dbUser
		historyCfg.Password = dbPassword
	}
	if historyCfg.Type == "" {
		return existing, nil, nil
	}

	store, err := history.Open(historyCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	recorded, err := store.ExistingTestNames(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load recorded test names: %w", err)
	}
	existing = append(existing, recorded...)
	return existing, store, nil
}

func writeArtifacts(plan *models.TestPlan, sysCtx *models.SystemContext, outputDir, formats string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, format := range strings.Split(formats, ",") {
		format = strings.TrimSpace(format)
		if format == "" {
			continue
		}

		var (
			content  string
			filename string
			err      error
		)
		switch format {
		case "pytest":
			content = generator.GeneratePytest(plan, sysCtx)
			filename = "test_generated.py"
		case "postman":
			content, err = generator.GeneratePostman(plan, sysCtx)
			filename = "postman_collection.json"
		case "junit":
			content, err = generator.GenerateJUnitXML(plan, sysCtx)
			filename = "junit_plan.xml"
		case "gherkin":
			content = generator.GenerateGherkin(plan, sysCtx)
			filename = "scenarios.feature"
		case "openapi":
			content, err = generator.GenerateOpenAPI(plan, sysCtx)
			filename = "openapi_plan.yaml"
		default:
			return fmt.Errorf("unknown output format: %s", format)
		}
		if err != nil {
			return fmt.Errorf("failed to generate %s output: %w", format, err)
		}

		path := filepath.Join(outputDir, filename)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nblast/nblast/pkg/api/rest"
	"github.com/nblast/nblast/pkg/api/rest/middleware"
	"github.com/nblast/nblast/pkg/config"
	"github.com/nblast/nblast/pkg/nblast"
	"github.com/nblast/nblast/pkg/observability"
	"github.com/nblast/nblast/pkg/tenant"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	// Parse command-line flags
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		configFile  = flag.String("config", "", "path to configuration file (optional)")
		host        = flag.String("host", "", "server host (overrides config/env)")
		port        = flag.Int("port", 0, "server port (overrides config/env)")
	)
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("NBLAST Server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// Show help
	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	// Print banner
	printBanner()

	// Load configuration
	cfg := loadConfig(*configFile)

	// Override with command-line flags
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := observability.NewDefaultLogger()
	observability.SetGlobalLogger(logger)
	metrics := observability.NewMetrics()

	log.Println("Initializing NBLAST server...")
	scoreFn, err := loadScoreFunction(cfg.Score.TablePath)
	if err != nil {
		log.Fatalf("Failed to build score function: %v", err)
	}

	tenants := tenant.NewManager(scoreFn)
	if cfg.PairCache.Enabled {
		tenants.EnablePairCaching(cfg.PairCache.Capacity, cfg.PairCache.TTL)
	}
	if _, err := tenants.CreateTenant("default", tenant.DefaultQuota()); err != nil {
		log.Fatalf("Failed to create default tenant: %v", err)
	}

	restConfig := rest.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: cfg.Server.CORSEnabled,
		CORSOrigins: cfg.Server.CORSOrigins,
		Auth: middleware.AuthConfig{
			Enabled:     cfg.Server.AuthEnabled,
			JWTSecret:   cfg.Server.JWTSecret,
			PublicPaths: cfg.Server.PublicPaths,
			AdminPaths:  cfg.Server.AdminPaths,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:        cfg.Server.RateLimitEnabled,
			RequestsPerSec: cfg.Server.RateLimitPerSec,
			Burst:          cfg.Server.RateLimitBurst,
			PerIP:          cfg.Server.RateLimitPerIP,
			PerUser:        cfg.Server.RateLimitPerUser,
			GlobalLimit:    cfg.Server.RateLimitGlobal,
		},
	}

	server := rest.NewServer(restConfig, tenants, metrics, logger)

	// Print startup info
	printStartupInfo(cfg)

	// Create error channel for server failures
	errChan := make(chan error, 1)

	go func() {
		log.Println("Starting REST API server...")
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("REST server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Wait for shutdown signal or error
	log.Println("Server is ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-errChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Error stopping REST server: %v", err)
	}

	log.Println("Server stopped. Goodbye!")
}

// loadScoreFunction builds the arena's ScoreFunc from a table path. Loading
// and parsing a table file stays this binary's concern, not pkg/nblast's;
// with no path configured, a built-in default table is used instead.
func loadScoreFunction(tablePath string) (nblast.ScoreFunc, error) {
	if tablePath != "" {
		log.Printf("Warning: score table file loading not yet implemented, using built-in default (requested: %s)", tablePath)
	}
	return nblast.BuildScoreFunction(defaultScoreTable())
}

// defaultScoreTable is a coarse, hand-picked dist/|dot| lookup table in the
// spirit of the reference smat.fcwb table: short distances with aligned
// tangents score highest, and score falls off as either distance grows or
// tangents diverge.
func defaultScoreTable() nblast.ScoreTable {
	return nblast.ScoreTable{
		DistUpper: []float64{1, 2, 5, 10, 20, 40, 80},
		DotUpper:  []float64{0.25, 0.5, 0.75, 0.9, 1.0},
		Cells: []float64{
			-0.5, 0.5, 1.5, 3.0, 5.0, // dist < 1
			-0.5, 0.25, 1.0, 2.0, 3.5, // dist < 2
			-0.5, 0.0, 0.5, 1.0, 1.75, // dist < 5
			-0.5, -0.25, 0.1, 0.4, 0.75, // dist < 10
			-0.5, -0.4, -0.2, 0.0, 0.2, // dist < 20
			-0.75, -0.6, -0.5, -0.4, -0.3, // dist < 40
			-1.0, -0.9, -0.8, -0.7, -0.6, // dist >= 40
		},
	}
}

func loadConfig(configFile string) *config.Config {
	// TODO: support loading from YAML/JSON config file
	if configFile != "" {
		log.Printf("Warning: config file support not yet implemented, using environment variables")
	}

	// Load from environment variables
	cfg := config.LoadFromEnv()

	return cfg
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║   _   _ ____  _        _    ____ _____                    ║
║  | \ | | __ )| |      / \  / ___|_   _|                   ║
║  |  \| |  _ \| |     / _ \ \___ \ | |                     ║
║  | |\  | |_) | |___ / ___ \ ___) || |                     ║
║  |_| \_|____/|_____/_/   \_\____/ |_|                     ║
║                                                             ║
║   Morphological neuron similarity scoring service          ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║            REST API Configuration                      ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.Server.AuthEnabled)
	fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.Server.CORSEnabled)
	fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.Server.RateLimitEnabled)
	if cfg.Server.RateLimitEnabled {
		fmt.Printf("║ Rate:             %-35s ║\n", fmt.Sprintf("%.1f req/s (burst: %d)", cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst))
	}
	fmt.Printf("║ API Docs:         %-35s ║\n", fmt.Sprintf("http://%s:%d/docs", cfg.Server.Host, cfg.Server.Port))
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            Approximate Shortlist (pkg/neighbor)        ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled by default: %-33v ║\n", cfg.Neighbor.Enabled)
	fmt.Printf("║ M:                  %-33d ║\n", cfg.Neighbor.M)
	fmt.Printf("║ efConstruction:     %-33d ║\n", cfg.Neighbor.EfConstruction)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            Pairwise Score Cache                        ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.PairCache.Enabled)
	fmt.Printf("║ Capacity:         %-35d ║\n", cfg.PairCache.Capacity)
	fmt.Printf("║ TTL:              %-35s ║\n", cfg.PairCache.TTL)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("NBLAST Server - neuron morphological similarity scoring service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  nblast-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -config PATH      Configuration file (not read; settings come from environment variables)")
	fmt.Println("  -host HOST        Server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        Server port (default: 8080)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  NBLAST_HOST                     Server host")
	fmt.Println("  NBLAST_PORT                     Server port")
	fmt.Println("  NBLAST_MAX_CONNECTIONS          Max concurrent connections")
	fmt.Println("  NBLAST_REQUEST_TIMEOUT          Request timeout (e.g., 30s)")
	fmt.Println("  NBLAST_ENABLE_TLS               Enable TLS (true/false)")
	fmt.Println("  NBLAST_TLS_CERT                 TLS certificate file")
	fmt.Println("  NBLAST_TLS_KEY                  TLS key file")
	fmt.Println("  NBLAST_AUTH_ENABLED              Enable JWT auth (true/false)")
	fmt.Println("  NBLAST_JWT_SECRET                JWT signing secret")
	fmt.Println("  NBLAST_NEIGHBOR_ENABLED          Shortlist flag (validated and displayed only)")
	fmt.Println("  NBLAST_NEIGHBOR_M                Shortlist graph M (validated and displayed only)")
	fmt.Println("  NBLAST_NEIGHBOR_EF_CONSTRUCTION  Shortlist efConstruction (validated and displayed only)")
	fmt.Println("  NBLAST_PAIR_CACHE_ENABLED        Enable the pairwise score cache")
	fmt.Println("  NBLAST_PAIR_CACHE_CAPACITY       Pairwise cache capacity")
	fmt.Println("  NBLAST_PAIR_CACHE_TTL            Pairwise cache TTL (e.g., 5m)")
	fmt.Println("  NBLAST_SCORE_TABLE_PATH          Path to a score lookup table")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Start with default configuration")
	fmt.Println("  nblast-server")
	fmt.Println()
	fmt.Println("  # Start on custom port")
	fmt.Println("  nblast-server -port 9090")
	fmt.Println()
	fmt.Println("  # Start with environment variables")
	fmt.Println("  NBLAST_PORT=9090 NBLAST_NEIGHBOR_ENABLED=true nblast-server")
	fmt.Println()
}

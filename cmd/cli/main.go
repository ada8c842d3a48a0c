package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const version = "1.0.0"

var (
	serverAddr string
	namespace  string
	timeout    time.Duration
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	serverAddr = "http://localhost:8080"
	namespace = "default"
	timeout = 30 * time.Second

	command := os.Args[1]

	switch command {
	case "create-tenant":
		handleCreateTenant(os.Args[2:])
	case "add-neuron":
		handleAddNeuron(os.Args[2:])
	case "query":
		handleQuery(os.Args[2:])
	case "batch":
		handleBatch(os.Args[2:])
	case "all-vs-all":
		handleAllVsAll(os.Args[2:])
	case "similar":
		handleSimilar(os.Args[2:])
	case "search-labels":
		handleSearchLabels(os.Args[2:])
	case "health":
		handleHealth(os.Args[2:])
	case "version":
		fmt.Printf("nblast-cli version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

func client() *http.Client {
	return &http.Client{Timeout: timeout}
}

func apiURL(path string) string {
	return serverAddr + path
}

func doRequest(method, path string, body interface{}) (map[string]interface{}, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiURL(path), reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client().Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return out, resp.StatusCode, nil
}

func handleCreateTenant(args []string) {
	fs := newFlagSet("create-tenant", args)
	maxNeurons := fs.Int64("max-neurons", 0, "max neurons (0 = default quota)")
	fs.Parse(args)

	resp, status, err := doRequest(http.MethodPost, "/v1/tenants", map[string]interface{}{
		"namespace":   namespace,
		"max_neurons": *maxNeurons,
	})
	exitOnError(err)
	printResult(resp, status)
}

func handleAddNeuron(args []string) {
	fs := newFlagSet("add-neuron", args)
	pointsStr := fs.String("points", "", "points as JSON array of [x,y,z] (required)")
	label := fs.String("label", "", "optional neuron label")
	fs.Parse(args)

	if *pointsStr == "" {
		fmt.Println("Error: -points is required")
		os.Exit(1)
	}

	var points [][3]float64
	if err := json.Unmarshal([]byte(*pointsStr), &points); err != nil {
		fmt.Printf("Error parsing points: %v\n", err)
		os.Exit(1)
	}

	resp, status, err := doRequest(http.MethodPost, "/v1/tenants/"+namespace+"/neurons", map[string]interface{}{
		"points": points,
		"label":  *label,
	})
	exitOnError(err)
	printResult(resp, status)
}

func handleQuery(args []string) {
	fs := newFlagSet("query", args)
	query := fs.Int("query", 0, "query neuron index")
	target := fs.Int("target", 0, "target neuron index")
	normalized := fs.Bool("normalized", false, "divide by the query's self-hit")
	symmetric := fs.Bool("symmetric", false, "average forward and reverse scores")
	fs.Parse(args)

	resp, status, err := doRequest(http.MethodPost, "/v1/tenants/"+namespace+"/query", map[string]interface{}{
		"query":      *query,
		"target":     *target,
		"normalized": *normalized,
		"symmetric":  *symmetric,
	})
	exitOnError(err)
	printResult(resp, status)
}

func handleBatch(args []string) {
	fs := newFlagSet("batch", args)
	queriesStr := fs.String("queries", "", "query indices as JSON array (required)")
	targetsStr := fs.String("targets", "", "target indices as JSON array (required)")
	normalized := fs.Bool("normalized", false, "divide by each query's self-hit")
	symmetric := fs.Bool("symmetric", false, "average forward and reverse scores")
	fs.Parse(args)

	var queries, targets []int
	if err := json.Unmarshal([]byte(*queriesStr), &queries); err != nil {
		fmt.Printf("Error parsing queries: %v\n", err)
		os.Exit(1)
	}
	if err := json.Unmarshal([]byte(*targetsStr), &targets); err != nil {
		fmt.Printf("Error parsing targets: %v\n", err)
		os.Exit(1)
	}

	resp, status, err := doRequest(http.MethodPost, "/v1/tenants/"+namespace+"/batch", map[string]interface{}{
		"queries":    queries,
		"targets":    targets,
		"normalized": *normalized,
		"symmetric":  *symmetric,
	})
	exitOnError(err)
	printResult(resp, status)
}

func handleAllVsAll(args []string) {
	fs := newFlagSet("all-vs-all", args)
	normalized := fs.Bool("normalized", false, "divide by each query's self-hit")
	symmetric := fs.Bool("symmetric", false, "average forward and reverse scores")
	fs.Parse(args)

	resp, status, err := doRequest(http.MethodPost, "/v1/tenants/"+namespace+"/all-vs-all", map[string]interface{}{
		"normalized": *normalized,
		"symmetric":  *symmetric,
	})
	exitOnError(err)
	printResult(resp, status)
}

func handleSimilar(args []string) {
	fs := newFlagSet("similar", args)
	id := fs.String("id", "", "neuron index (required)")
	k := fs.Int("k", 10, "number of suggestions")
	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: -id is required")
		os.Exit(1)
	}

	resp, status, err := doRequest(http.MethodGet,
		fmt.Sprintf("/v1/tenants/%s/neurons/%s/similar?k=%d", namespace, *id, *k), nil)
	exitOnError(err)
	printResult(resp, status)
}

func handleSearchLabels(args []string) {
	fs := newFlagSet("search-labels", args)
	query := fs.String("q", "", "label search query (required)")
	fs.Parse(args)

	if *query == "" {
		fmt.Println("Error: -q is required")
		os.Exit(1)
	}

	resp, status, err := doRequest(http.MethodGet,
		"/v1/tenants/"+namespace+"/labels/search?q="+*query, nil)
	exitOnError(err)
	printResult(resp, status)
}

func handleHealth(args []string) {
	resp, status, err := doRequest(http.MethodGet, "/v1/health", nil)
	exitOnError(err)
	printResult(resp, status)
	if status != http.StatusOK {
		os.Exit(1)
	}
}

func printResult(resp map[string]interface{}, status int) {
	encoded, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(encoded))
	if status >= 400 {
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet builds a per-command FlagSet pre-bound to the global
// -server/-namespace/-timeout overrides, applied before the caller's own
// flags are parsed.
func newFlagSet(name string, args []string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "REST API base URL")
	fs.StringVar(&namespace, "namespace", namespace, "tenant namespace")
	fs.DurationVar(&timeout, "timeout", timeout, "request timeout")
	return fs
}

func showUsage() {
	fmt.Println(`NBLAST CLI - client for the NBLAST REST API

Usage:
  nblast-cli <command> [options]

Commands:
  create-tenant   Create a tenant namespace
  add-neuron      Add a neuron (point cloud) to a tenant's arena
  query           Score one query neuron against one target neuron
  batch           Score a cartesian product of query and target neurons
  all-vs-all      Score every neuron against every other neuron
  similar         Suggest approximately similar neurons (pkg/neighbor shortlist)
  search-labels   Search neuron labels
  health          Check server health
  version         Show version
  help            Show this help message

Global Options (set via -server/-namespace/-timeout on each subcommand):
  -server ADDRESS    REST API base URL (default: http://localhost:8080)
  -namespace NAME    Tenant namespace (default: default)
  -timeout DURATION  Request timeout (default: 30s)

Examples:

  # Create a tenant
  nblast-cli create-tenant -max-neurons 10000

  # Add a neuron
  nblast-cli add-neuron -points '[[0,0,0],[1,0,0],[2,0,0],[3,0,0],[4,0,0]]' -label "DA1 PN"

  # Score neuron 0 against neuron 1
  nblast-cli query -query 0 -target 1 -normalized -symmetric

  # Score a batch
  nblast-cli batch -queries '[0,1]' -targets '[2,3]'

  # Score everything against everything
  nblast-cli all-vs-all -normalized

  # Suggest similar neurons
  nblast-cli similar -id 0 -k 5

  # Search labels
  nblast-cli search-labels -q "DA1"

  # Check server health
  nblast-cli health`)
}

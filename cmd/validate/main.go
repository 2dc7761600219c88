// Package main checks that a running finance tracker answers on every read-only route.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	path        string
	contentType string
	contains    []string
}

var endpoints = []endpoint{
	// Pages
	{path: "/dashboard", contentType: "text/html", contains: []string{"Finance tracker", "Net worth"}},
	{path: "/static/plotly.min.js", contentType: "application/javascript"},

	// Collections
	{path: "/api/expenses", contentType: "application/json"},
	{path: "/api/investments", contentType: "application/json"},
	{path: "/api/crypto", contentType: "application/json"},

	// Dashboard data
	{path: "/api/summary", contentType: "application/json", contains: []string{`"netWorth"`}},
	{path: "/api/charts", contentType: "application/json", contains: []string{`"expenses"`, `"portfolio"`}},
	{path: "/api/charts/expenses", contentType: "application/json", contains: []string{"Expenses by category"}},
	{path: "/api/charts/portfolio", contentType: "application/json", contains: []string{"Portfolio"}},
	{path: "/api/prices", contentType: "application/json", contains: []string{`"quotes"`}},

	// Settings and backup
	{path: "/api/settings/theme", contentType: "application/json", contains: []string{`"themes"`}},
	{path: "/api/settings/encryption", contentType: "application/json", contains: []string{`"available"`}},
	{path: "/api/backup/export", contentType: "application/json", contains: []string{`"exportDate"`}},

	{path: "/api/health", contentType: "application/json", contains: []string{`"status":"ok"`}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	fmt.Printf("Validating server at %s\n", *url)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	_, failed := validateAll(os.Stdout, client, *url, endpoints, *verbose)
	if failed > 0 {
		os.Exit(1)
	}
}

// validateAll checks every endpoint and prints one line per failure
func validateAll(w io.Writer, client *http.Client, baseURL string, eps []endpoint, verbose bool) (passed, failed int) {
	for _, ep := range eps {
		r := validateEndpoint(client, baseURL, ep)

		switch {
		case r.err != nil:
			failed++
			fmt.Fprintf(w, "FAIL GET %s\n", ep.path)
			fmt.Fprintf(w, "     Error: %v\n", r.err)
		default:
			passed++
			if verbose {
				fmt.Fprintf(w, "PASS GET %s (%v)\n", ep.path, r.duration)
			}
		}
	}

	fmt.Fprintf(w, "\n========================================\n")
	fmt.Fprintf(w, "Results: %d passed, %d failed\n", passed, failed)
	return passed, failed
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint) result {
	start := time.Now()

	resp, err := client.Get(baseURL + ep.path)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: time.Since(start),
	}

	if resp.StatusCode != http.StatusOK {
		r.err = fmt.Errorf("status %d (expected 200)", resp.StatusCode)
		return r
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	if ep.contentType == "application/json" && !json.Valid(body) {
		r.err = fmt.Errorf("invalid JSON")
		return r
	}

	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}

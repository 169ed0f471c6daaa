// Command auditforge-ctl drives the marketplace API from the shell.
// Exit codes: 0 ok, 2 validation, 3 conflict, 4 authorization,
// 5 external/unavailable, 1 anything else.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	perr "auditforge/internal/platform/errors"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Status     string          `json:"status"`
	Code       perr.ErrorCode  `json:"code,omitempty"`
	Error      string          `json:"error,omitempty"`
	Step       string          `json:"step,omitempty"`
	CID        string          `json:"cid,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type client struct {
	base string
	http *http.Client
}

func (c *client) do(method, path string, body any) (*envelope, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("malformed response (%s): %w", resp.Status, err)
	}
	return &env, nil
}

func exitFor(code perr.ErrorCode) int {
	switch code {
	case perr.ErrorCodeValidation, perr.ErrorCodeInvalidArgument, perr.ErrorCodeJSON:
		return 2
	case perr.ErrorCodeConflict, perr.ErrorCodeDuplicateKey:
		return 3
	case perr.ErrorCodeAuthorization, perr.ErrorCodeUnauthorized:
		return 4
	case perr.ErrorCodeExternal, perr.ErrorCodeUnavailable:
		return 5
	default:
		return 1
	}
}

func render(env *envelope) int {
	if env.Error != "" {
		fmt.Fprintf(os.Stderr, "error: %s\n", env.Error)
		if env.Step != "" {
			fmt.Fprintf(os.Stderr, "step: %s\n", env.Step)
		}
		if env.CID != "" {
			// durable evidence survived the failure; pass this back via
			// -resume-cid to skip re-publishing
			fmt.Fprintf(os.Stderr, "evidence cid: %s\n", env.CID)
		}
		return exitFor(env.Code)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, env.Data, "", "  "); err != nil {
		fmt.Println(string(env.Data))
	} else {
		fmt.Println(out.String())
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: auditforge-ctl <command> [flags]

commands:
  quote    estimate a repository without creating a request
  submit   submit a repository for audit
  list     list audit requests
  get      fetch one audit request
  report   fetch the full report with findings and certificates
  accept   commit a reviewer to an available request
  results  submit findings and complete an audit
  cancel   abandon a request

common flags:
  -api     API base URL (default $AUDITFORGE_API or http://localhost:4000/api/v1)
`)
	os.Exit(2)
}

func newClient(fs *flag.FlagSet) *client {
	base := fs.Lookup("api").Value.String()
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

func commonFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	def := os.Getenv("AUDITFORGE_API")
	if def == "" {
		def = "http://localhost:4000/api/v1"
	}
	fs.String("api", def, "API base URL")
	return fs
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

	var (
		env *envelope
		err error
	)

	switch os.Args[1] {
	case "quote":
		fs := commonFlags("quote")
		repo := fs.String("repo", "", "repository URL (required)")
		_ = fs.Parse(os.Args[2:])
		if *repo == "" {
			fs.Usage()
			os.Exit(2)
		}
		c := newClient(fs)
		env, err = c.do(http.MethodPost, "/estimates/quote", map[string]any{
			"repository_url": *repo,
		})

	case "submit":
		fs := commonFlags("submit")
		name := fs.String("name", "", "project name (required)")
		desc := fs.String("desc", "", "project description")
		repo := fs.String("repo", "", "repository URL (required)")
		hash := fs.String("hash", "", "repository content hash (required)")
		tags := fs.String("tags", "", "comma separated tags")
		reviewers := fs.Int("reviewers", 1, "reviewer count (1-3)")
		price := fs.Int64("price", 0, "negotiated price, 0 keeps the proposed price")
		submitter := fs.String("submitter", "", "submitter wallet address (required)")
		resume := fs.String("resume-cid", "", "evidence CID from a failed attempt")
		_ = fs.Parse(os.Args[2:])
		if *name == "" || *repo == "" || *hash == "" || *submitter == "" {
			fs.Usage()
			os.Exit(2)
		}
		body := map[string]any{
			"project_name":        *name,
			"project_description": *desc,
			"source_url":          *repo,
			"repository_hash":     *hash,
			"reviewer_count":      *reviewers,
			"submitter_address":   *submitter,
		}
		if *tags != "" {
			body["tags"] = strings.Split(*tags, ",")
		}
		if *price > 0 {
			body["negotiated_price"] = *price
		}
		if *resume != "" {
			body["resume_evidence_cid"] = *resume
		}
		c := newClient(fs)
		env, err = c.do(http.MethodPost, "/audits", body)

	case "list":
		fs := commonFlags("list")
		status := fs.String("status", "", "filter by lifecycle status")
		reviewer := fs.String("reviewer", "", "filter by reviewer address")
		limit := fs.Int("limit", 0, "page size")
		_ = fs.Parse(os.Args[2:])
		c := newClient(fs)
		q := make([]string, 0, 3)
		if *status != "" {
			q = append(q, "status="+*status)
		}
		if *reviewer != "" {
			q = append(q, "reviewer="+*reviewer)
		}
		if *limit > 0 {
			q = append(q, fmt.Sprintf("limit=%d", *limit))
		}
		path := "/audits"
		if len(q) > 0 {
			path += "?" + strings.Join(q, "&")
		}
		env, err = c.do(http.MethodGet, path, nil)

	case "get":
		fs := commonFlags("get")
		id := fs.String("id", "", "audit request id (required)")
		_ = fs.Parse(os.Args[2:])
		if *id == "" {
			fs.Usage()
			os.Exit(2)
		}
		c := newClient(fs)
		env, err = c.do(http.MethodGet, "/audits/"+*id, nil)

	case "report":
		fs := commonFlags("report")
		id := fs.String("id", "", "audit request id (required)")
		_ = fs.Parse(os.Args[2:])
		if *id == "" {
			fs.Usage()
			os.Exit(2)
		}
		c := newClient(fs)
		env, err = c.do(http.MethodGet, "/audits/"+*id+"/report", nil)

	case "accept":
		fs := commonFlags("accept")
		id := fs.String("id", "", "audit request id (required)")
		reviewer := fs.String("reviewer", "", "reviewer wallet address (required)")
		_ = fs.Parse(os.Args[2:])
		if *id == "" || *reviewer == "" {
			fs.Usage()
			os.Exit(2)
		}
		c := newClient(fs)
		env, err = c.do(http.MethodPost, "/audits/"+*id+"/accept", map[string]any{
			"reviewer_address": *reviewer,
		})

	case "results":
		fs := commonFlags("results")
		id := fs.String("id", "", "audit request id (required)")
		reviewer := fs.String("reviewer", "", "reviewer wallet address (required)")
		summary := fs.String("summary", "", "audit summary (required)")
		findingsPath := fs.String("findings", "", "path to a findings JSON file")
		resume := fs.String("resume-cid", "", "evidence CID from a failed attempt")
		_ = fs.Parse(os.Args[2:])
		if *id == "" || *reviewer == "" || *summary == "" {
			fs.Usage()
			os.Exit(2)
		}
		body := map[string]any{
			"reviewer_address": *reviewer,
			"summary":          *summary,
		}
		if *findingsPath != "" {
			raw, rerr := os.ReadFile(*findingsPath)
			if rerr != nil {
				fmt.Fprintf(os.Stderr, "read findings: %v\n", rerr)
				os.Exit(2)
			}
			var findings []map[string]any
			if jerr := json.Unmarshal(raw, &findings); jerr != nil {
				fmt.Fprintf(os.Stderr, "parse findings: %v\n", jerr)
				os.Exit(2)
			}
			body["findings"] = findings
		}
		if *resume != "" {
			body["resume_evidence_cid"] = *resume
		}
		c := newClient(fs)
		env, err = c.do(http.MethodPost, "/audits/"+*id+"/results", body)

	case "cancel":
		fs := commonFlags("cancel")
		id := fs.String("id", "", "audit request id (required)")
		by := fs.String("by", "", "requesting wallet address (required)")
		reason := fs.String("reason", "", "cancellation reason")
		_ = fs.Parse(os.Args[2:])
		if *id == "" || *by == "" {
			fs.Usage()
			os.Exit(2)
		}
		c := newClient(fs)
		env, err = c.do(http.MethodPost, "/audits/"+*id+"/cancel", map[string]any{
			"requested_by": *by,
			"reason":       *reason,
		})

	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(5)
	}
	os.Exit(render(env))
}

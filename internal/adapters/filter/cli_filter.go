package filter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/detector"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for bot scoring
type CliFilter struct {
	service    *core.ClassificationService
	logger     *zap.Logger
	out        io.Writer
	verbose    bool
	jsonOutput bool
}

// cliRecord is one line of -json output
type cliRecord struct {
	Email       string                `json:"email"`
	BotScore    int                   `json:"bot_score"`
	Category    string                `json:"category"`
	ReasonTags  []string              `json:"reason_tags"`
	Source      string                `json:"source"`
	Diagnostics *detector.Diagnostics `json:"diagnostics,omitempty"`
	Skipped     string                `json:"skipped,omitempty"`
}

// NewCliFilter creates a new CLI filter writing reports to out
func NewCliFilter(service *core.ClassificationService, logger *zap.Logger, out io.Writer, verbose, jsonOutput bool) (*CliFilter, error) {
	if out == nil {
		return nil, errors.New("output writer is required")
	}
	return &CliFilter{
		service:    service,
		logger:     logger,
		out:        out,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}, nil
}

// ProcessContact classifies one contact and prints the result
func (f *CliFilter) ProcessContact(ctx context.Context, contact *core.Contact) (*core.ClassificationResult, error) {
	f.logger.Debug("Processing contact", zap.String("email", contact.Email))

	start := time.Now()
	result, err := f.service.Classify(ctx, contact)
	if errors.Is(err, core.ErrNoEmail) || errors.Is(err, core.ErrUnclassifiable) {
		f.printSkipped(contact.Email, err)
		return nil, err
	}
	if err != nil {
		f.logger.Error("Failed to classify contact", zap.Error(err))
		return nil, err
	}

	if f.jsonOutput {
		rec := cliRecord{
			Email:      result.Email,
			BotScore:   result.Score,
			Category:   string(result.Category),
			ReasonTags: result.Reasons,
			Source:     result.ModelUsed,
		}
		if f.verbose {
			rec.Diagnostics = &result.Diagnostics
		}
		return result, json.NewEncoder(f.out).Encode(rec)
	}

	fmt.Fprintf(f.out, "\n=== %s ===\n", result.Email)
	if contact.FirstName != "" || contact.LastName != "" {
		fmt.Fprintf(f.out, "Name: %s\n", strings.TrimSpace(contact.FirstName+" "+contact.LastName))
	}
	fmt.Fprintf(f.out, "Bot score: %d\n", result.Score)
	fmt.Fprintf(f.out, "Category: %s\n", result.Category)
	if len(result.Reasons) == 0 {
		fmt.Fprintf(f.out, "Reasons: none\n")
	} else {
		fmt.Fprintf(f.out, "Reasons:\n")
		for _, reason := range result.Reasons {
			fmt.Fprintf(f.out, "  - %s\n", reason)
		}
	}

	if f.verbose {
		d := result.Diagnostics
		fmt.Fprintf(f.out, "\n--- Diagnostics ---\n")
		fmt.Fprintf(f.out, "Entropy: %s\n", toFixed(d.Entropy, 2))
		fmt.Fprintf(f.out, "Digit ratio: %s%%\n", toFixed(d.DigitRatio*100, 1))
		fmt.Fprintf(f.out, "Local part length: %d\n", d.LocalPartLength)
		fmt.Fprintf(f.out, "Domain: %s\n", d.Domain)
		fmt.Fprintf(f.out, "Dot count: %d\n", d.DotCount)
		fmt.Fprintf(f.out, "Source: %s\n", result.ModelUsed)
		fmt.Fprintf(f.out, "Processing time: %v\n", time.Since(start))
	}

	return result, nil
}

func (f *CliFilter) printSkipped(email string, reason error) {
	if f.jsonOutput {
		_ = json.NewEncoder(f.out).Encode(cliRecord{Email: email, ReasonTags: []string{}, Skipped: reason.Error()})
		return
	}
	fmt.Fprintf(f.out, "\n=== %s ===\nSkipped: %v\n", email, reason)
}

// ProcessLines classifies one address per line. Blank lines and lines
// starting with '#' are ignored; "email,first,last" lines carry names.
// It returns the number of addresses classified.
func (f *CliFilter) ProcessLines(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ",", 3)
		contact := &core.Contact{Email: parts[0]}
		if len(parts) > 1 {
			contact.FirstName = parts[1]
		}
		if len(parts) > 2 {
			contact.LastName = parts[2]
		}

		if _, err := f.ProcessContact(ctx, contact); err != nil {
			if errors.Is(err, core.ErrNoEmail) || errors.Is(err, core.ErrUnclassifiable) {
				continue
			}
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read input: %w", err)
	}
	return count, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}

// Package repl implements the interactive line loop over the matching
// service. One line is one query; a comma-separated line is a batch.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dhowes/lpmatch/internal/logging"
)

// Service is the slice of the matching service the REPL needs.
type Service interface {
	Match(input string) (string, bool)
	MatchBatch(ctx context.Context, inputs []string) (map[string]string, error)
}

const (
	exitCommand = "exit"

	// noMatchIndicator is what the user sees for an input with no
	// matching prefix. It is deliberately distinct from error output.
	noMatchIndicator = "<no match>"
)

// REPL reads queries line by line and prints match results.
type REPL struct {
	service Service
	in      io.Reader
	out     io.Writer
	log     *logging.Logger
}

// New creates a REPL reading from in and writing to out.
func New(service Service, in io.Reader, out io.Writer, log *logging.Logger) *REPL {
	if log == nil {
		log = logging.Null
	}
	return &REPL{
		service: service,
		in:      in,
		out:     out,
		log:     log.WithComponent("repl"),
	}
}

// Run processes lines until "exit", end of input, or a read error. Queries
// issued after ctx is cancelled fail their batches; single lookups are pure
// and always answer.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Prefix matcher ready.")
	fmt.Fprintln(r.out, "Single match: type a string. Batch match: comma-separated values.")
	fmt.Fprintf(r.out, "Type %q to quit.\n", exitCommand)

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			fmt.Fprintln(r.out, "Empty input. Please provide a string to match.")
			continue
		}
		if strings.EqualFold(line, exitCommand) {
			break
		}

		if strings.Contains(line, ",") {
			r.runBatch(ctx, line)
			continue
		}
		r.runSingle(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(r.out, "Goodbye.")
	return nil
}

// runSingle answers one query on the calling goroutine.
func (r *REPL) runSingle(input string) {
	match, found := r.service.Match(input)
	if !found {
		match = noMatchIndicator
	}
	fmt.Fprintf(r.out, "  %s -> %s\n", input, match)
}

// runBatch splits a comma-separated line and answers it as one batch.
func (r *REPL) runBatch(ctx context.Context, line string) {
	var inputs []string
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		inputs = append(inputs, part)
	}
	if len(inputs) == 0 {
		fmt.Fprintln(r.out, "No valid strings provided for matching.")
		return
	}

	r.log.Debug("processing batch of %d inputs", len(inputs))

	results, err := r.service.MatchBatch(ctx, inputs)
	if err != nil {
		fmt.Fprintf(r.out, "Error: batch failed: %v\n", err)
		return
	}

	keys := make([]string, 0, len(results))
	for input := range results {
		keys = append(keys, input)
	}
	sort.Strings(keys)

	fmt.Fprintln(r.out, "Batch results:")
	for _, input := range keys {
		match := results[input]
		if match == "" {
			match = noMatchIndicator
		}
		fmt.Fprintf(r.out, "  %s -> %s\n", input, match)
	}
}

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/logger"
)

// Searcher is satisfied by *executor.Executor.
type Searcher interface {
	Execute(ctx context.Context, query string, limit int) *executor.SearchResult
}

// RunShell answers one query per input line until EOF, ":quit" or ctx is
// cancelled. Blank lines are ignored.
func RunShell(ctx context.Context, s Searcher, in io.Reader, out io.Writer, limit int) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	fmt.Fprint(out, "> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading queries: %w", err)
					}
				default:
				}
				return nil
			}
			query := strings.TrimSpace(line)
			switch query {
			case "":
			case ":quit", ":q":
				return nil
			default:
				qctx := logger.WithQueryID(ctx, uuid.NewString())
				PrintResult(out, s.Execute(qctx, query, limit))
			}
			fmt.Fprint(out, "> ")
		}
	}
}

// PrintResult writes one line per hit, best first.
func PrintResult(out io.Writer, res *executor.SearchResult) {
	if len(res.Hits) == 0 {
		fmt.Fprintf(out, "no results for %q\n", res.Query)
		return
	}
	for _, h := range res.Hits {
		fmt.Fprintf(out, "id=%d score=%.2f name=%s\n", h.Product.ID, h.Score, h.Product.Name)
	}
	if res.TotalHits > len(res.Hits) {
		fmt.Fprintf(out, "(%d of %d matches)\n", len(res.Hits), res.TotalHits)
	}
}

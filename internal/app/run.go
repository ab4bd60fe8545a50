package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

// Run читает запросы построчно и печатает найденный контекст
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	log.Println("Knowledge base ready")
	log.Println("Enter a query (one per line). Ctrl+C to exit.")

	scanner := bufio.NewScanner(in)

	// Письма бывают длинными
	const maxLineSize = 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down application")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("stdin error: %w", err)
				}
				log.Println("stdin closed")
				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			a.handleQuery(ctx, line, out)
		}
	}
}

func (a *App) handleQuery(ctx context.Context, query string, out io.Writer) {
	kbContext := a.QueryKnowledgeBase(ctx, query, a.cfg.TopK)
	if kbContext == "" {
		fmt.Fprintln(out, "🔍 No relevant context found")
		return
	}
	fmt.Fprintf(out, "🔍 Context:\n%s\n\n", kbContext)
}

package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"filmes/movie"
	"filmes/pkg/config"
	"filmes/pkg/logger"
	"filmes/pkg/store"

	"go.uber.org/zap"
)

// columns every seed file must carry, in any order.
var columns = []string{"nome", "genero", "diretor", "anoLancamento", "notaIMDB"}

type movieCreator interface {
	CreateMovie(ctx context.Context, in movie.Input) (movie.InsertResult, error)
}

func main() {
	var (
		csvPath string
		csvURL  string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to a movies csv file")
	flag.StringVar(&csvURL, "url", "", "URL of a movies csv file (used when -csv is empty)")
	flag.IntVar(&limit, "limit", 0, "Limit number of rows to import (0 = all)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	src, err := openSource(ctx, csvPath, csvURL)
	if err != nil {
		log.Fatalw("cannot open csv", "error", err)
	}
	defer src.Close()

	repo, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatalw("cannot open store", "driver", cfg.DB.Driver, "error", err)
	}
	defer func() { _ = closeStore(ctx) }()

	imported, skipped, err := importMovies(ctx, movie.NewUsecase(repo), src, limit, log)
	if err != nil {
		log.Errorw("import failed", "imported", imported, "error", err)
		return
	}

	log.Infow("import completed", "imported", imported, "skipped", skipped)
}

func openSource(ctx context.Context, path, url string) (io.ReadCloser, error) {
	if path != "" {
		return os.Open(path)
	}
	if url == "" {
		return nil, errors.New("either -csv or -url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// importMovies creates one movie per csv row. Rows failing validation are
// logged and skipped; any other error stops the import.
func importMovies(ctx context.Context, svc movieCreator, r io.Reader, limit int, log *zap.SugaredLogger) (int, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	idx, err := parseHeader(reader)
	if err != nil {
		return 0, 0, err
	}

	imported, skipped := 0, 0
	for line := 2; limit <= 0 || imported < limit; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, skipped, err
		}

		in := parseRecord(record, idx)
		if _, err := svc.CreateMovie(ctx, in); err != nil {
			var verr *movie.ValidationError
			if errors.As(err, &verr) {
				log.Warnw("skipping invalid row", "line", line, "error", verr.Error())
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	return imported, skipped, nil
}

func parseHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns in csv header: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}

func parseRecord(record []string, idx map[string]int) movie.Input {
	field := func(name string) string {
		i := idx[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	return movie.Input{
		Name:        field("nome"),
		Genre:       field("genero"),
		Director:    field("diretor"),
		ReleaseYear: movie.Number(field("anoLancamento")),
		IMDBRating:  movie.Number(field("notaIMDB")),
	}
}

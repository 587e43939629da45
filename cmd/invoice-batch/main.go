// invoice-batch extracts every *.txt invoice in a directory, writes an
// XLSX report, and optionally records the results in a local SQLite
// database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/common"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/export"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/pipeline"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/store"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/validate"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory of invoice .txt files (required)")
		out      = flag.String("out", "", "output XLSX path (defaults to <dir>/../invoices.xlsx)")
		dbPath   = flag.String("db", "", "optional SQLite database path for results")
		workers  = flag.Int("workers", 4, "number of parallel extraction workers")
		format   = flag.String("format", "", "force the invoice format instead of classifying")
		language = flag.String("language", "", "force the invoice language instead of detecting")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *format != "" {
		if _, ok := constants.CanonicalFormat(*format); !ok {
			printError("Error: unknown --format %q, supported: %s\n",
				*format, strings.Join(constants.Formats(), ", "))
			os.Exit(1)
		}
	}
	if *language != "" {
		if _, ok := constants.CanonicalLanguage(*language); !ok {
			printError("Error: unknown --language %q, supported: %s\n",
				*language, strings.Join(constants.Languages(), ", "))
			os.Exit(1)
		}
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "invoices.xlsx")
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	reqs, err := readInvoices(*dir, *format, *language)
	if err != nil {
		logger.Error("failed to read invoice directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(reqs) == 0 {
		printError("Error: no .txt files found in %s\n", *dir)
		os.Exit(1)
	}
	logger.Info("starting batch extraction", "dir", *dir, "files", len(reqs))

	policy := validate.PolicyFromFloats(
		cfg.Pipeline.PassTolerance,
		cfg.Pipeline.WarnTolerance,
		cfg.Pipeline.SuspiciousPrice,
		cfg.Pipeline.CorruptedPrice,
		cfg.Pipeline.OCRMergeThreshold,
	)
	proc := pipeline.NewProcessor(policy, logger)
	queue := pipeline.NewQueue(proc, logger, pipeline.WithWorkers(*workers))
	defer queue.Shutdown(ctx)

	var st *store.SQLiteStore
	if *dbPath != "" {
		st, err = store.OpenSQLite(ctx, *dbPath, logger)
		if err != nil {
			logger.Error("failed to open database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	results := queue.ProcessBatch(ctx, reqs)

	var (
		records   []*entity.InvoiceRecord
		extracted int
		partial   int
		failed    int
	)
	for _, res := range results {
		if res.Err != nil {
			logger.Error("extraction failed",
				"id", res.ID,
				"category", string(res.Err.Type),
				"error", res.Err.Message)
			failed++
			continue
		}
		if res.Invoice.Metadata != nil {
			partial++
		} else {
			extracted++
		}
		records = append(records, res.Invoice)

		if st != nil {
			saveErr := st.SaveResult(ctx, &store.StoredResult{ID: res.ID, Invoice: res.Invoice})
			if saveErr != nil {
				logger.Warn("result not persisted", "id", res.ID, "error", saveErr)
			}
		}
	}

	svc := export.NewService(logger)
	xlsxBytes, err := svc.WriteXLSX(records)
	if err != nil {
		logger.Error("failed to build XLSX report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch extraction complete",
		"files", len(reqs),
		"extracted", extracted,
		"partial", partial,
		"failed", failed,
		"output_file", *out)

	fmt.Printf("Batch extraction complete!\n")
	fmt.Printf("- Files processed: %d\n", len(reqs))
	fmt.Printf("- Extracted: %d\n", extracted)
	fmt.Printf("- Partial (needs review): %d\n", partial)
	fmt.Printf("- Failed: %d\n", failed)
	fmt.Printf("- Output: %s\n", *out)
}

// readInvoices loads every *.txt file in dir as one extraction request,
// keyed by the file name without extension.
func readInvoices(dir, format, language string) ([]pipeline.Request, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var reqs []pipeline.Request
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		name := filepath.Base(path)
		id := name[:len(name)-len(filepath.Ext(name))]
		reqs = append(reqs, pipeline.Request{
			ID:       id,
			RawText:  string(data),
			Format:   format,
			Language: language,
		})
	}
	return reqs, nil
}

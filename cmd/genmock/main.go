// Command genmock reads an orders CSV export and generates mock data fixtures
// for the pipeline and display test suites. It uses the actual domain package
// so the transformed output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/orders.csv \
//	  -raw-out data/mock/orders_raw.json \
//	  -display-out data/mock/orders_display.json
//
// The CSV header must contain orderId, userId, status and orderedAt.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/order-status-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// fixtureTime is the ProcessedAt stamped on every generated display event.
var fixtureTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "orders CSV export")
	rawOut := flag.String("raw-out", "", "output path for raw order JSON fixture")
	displayOut := flag.String("display-out", "", "output path for display order JSON fixture")
	flag.Parse()

	if *csvPath == "" || *rawOut == "" || *displayOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -raw-out, -display-out")
	}

	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	records, events, err := processCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("total: %d orders", len(records))

	if err := writeJSON(*rawOut, records); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*displayOut, events); err != nil {
		return fmt.Errorf("writing display fixture: %w", err)
	}
	log.Printf("wrote display fixture: %s", *displayOut)

	printStats(events)
	return nil
}

func processCSV(path string) ([]domain.RawOrderRecord, []domain.OrderEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}

	records := make([]domain.RawOrderRecord, 0, len(rows)-1)
	events := make([]domain.OrderEvent, 0, len(rows)-1)

	for _, row := range rows[1:] {
		rec := domain.RawOrderRecord{
			OrderID: get(row, colIdx, "orderId"),
			UserID:  get(row, colIdx, "userId"),
			// Status is kept untrimmed: pass-through labels preserve it verbatim.
			Status:    getRaw(row, colIdx, "status"),
			OrderedAt: get(row, colIdx, "orderedAt"),
		}
		records = append(records, rec)

		rawJSON, err := json.Marshal(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal record: %w", err)
		}
		parsed, err := domain.ParseRawEvent(domain.RawEvent{Value: rawJSON})
		if err != nil {
			return nil, nil, fmt.Errorf("parse raw event: %w", err)
		}
		events = append(events, domain.EnrichOrderEvent(parsed))
	}

	return records, events, nil
}

func get(row []string, idx map[string]int, col string) string {
	return strings.TrimSpace(getRaw(row, idx, col))
}

func getRaw(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type labelCount struct {
	label string
	count int
}

func printStats(events []domain.OrderEvent) {
	labels := map[string]int{}
	var known, withArrival int
	for i := range events {
		labels[events[i].StatusLabel]++
		if events[i].StatusKnown {
			known++
		}
		if events[i].ArrivalLabel != "" {
			withArrival++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(events))
	fmt.Printf("Known status: %d, pass-through: %d\n", known, len(events)-known)
	fmt.Printf("With arrival label: %d\n", withArrival)

	lc := make([]labelCount, 0, len(labels))
	for l, c := range labels {
		lc = append(lc, labelCount{l, c})
	}
	sort.Slice(lc, func(i, j int) bool { return lc[i].count > lc[j].count })
	fmt.Println("Status labels:")
	for _, l := range lc {
		fmt.Printf("  %q=%d\n", l.label, l.count)
	}
}

// Command validate checks the mock order fixtures produced by genmock. It
// re-derives every display event from the raw fixture using the current
// domain package and reports any drift, so stale fixtures are caught when
// label rules change.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/orders_raw.json \
//	  -display-json data/mock/orders_display.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/couchcryptid/order-status-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
)

var arrivalLabelRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}\([일월화수목금토]\) 도착$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to raw order JSON fixture")
	displayJSON := flag.String("display-json", "", "path to display order JSON fixture")
	flag.Parse()

	if *rawJSON == "" || *displayJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*rawJSON, *displayJSON))
}

func run(rawPath, displayPath string) int {
	// Same frozen clock as genmock so ProcessedAt matches.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Order Fixture Validation ===")

	raw, err := loadJSON[domain.RawOrderRecord](rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}
	display, err := loadJSON[domain.OrderEvent](displayPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load display JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRawIntegrity(raw),
		validateDisplayTransformation(raw, display),
		validateDisplaySchema(display),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}
	fmt.Printf("\nRecords: %d raw, %d display\n", len(raw), len(display))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func validateRawIntegrity(raw []domain.RawOrderRecord) *phase {
	p := &phase{name: "Raw fixture integrity"}
	seen := map[string]int{}
	for i := range raw {
		id := raw[i].OrderID
		if id == "" {
			p.errorf("record %d: missing orderId", i)
			continue
		}
		if prev, ok := seen[id]; ok {
			p.errorf("record %d: duplicate orderId %q (first at %d)", i, id, prev)
		}
		seen[id] = i
	}
	return p
}

func validateDisplayTransformation(raw []domain.RawOrderRecord, display []domain.OrderEvent) *phase {
	p := &phase{name: "Display transformation"}
	if len(raw) != len(display) {
		p.errorf("count mismatch: %d raw vs %d display", len(raw), len(display))
		return p
	}

	for i := range raw {
		want, err := transformRecord(raw[i])
		if err != nil {
			p.errorf("record %d (%s): %v", i, raw[i].OrderID, err)
			continue
		}
		if diff := cmp.Diff(want, display[i], cmpopts.IgnoreFields(domain.OrderEvent{}, "RawPayload")); diff != "" {
			p.errorf("record %d (%s) drifted (-want +got):\n%s", i, raw[i].OrderID, diff)
		}
	}
	return p
}

func transformRecord(rec domain.RawOrderRecord) (domain.OrderEvent, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.OrderEvent{}, err
	}
	parsed, err := domain.ParseRawEvent(domain.RawEvent{Value: data})
	if err != nil {
		return domain.OrderEvent{}, err
	}
	return domain.EnrichOrderEvent(parsed), nil
}

func validateDisplaySchema(display []domain.OrderEvent) *phase {
	p := &phase{name: "Display schema"}
	for i := range display {
		e := &display[i]
		if e.Status != "" && e.StatusLabel == "" {
			p.errorf("record %d (%s): empty status_label for status %q", i, e.ID, e.Status)
		}
		if !e.StatusKnown && e.StatusLabel != e.Status {
			p.errorf("record %d (%s): unknown status %q was rewritten to %q", i, e.ID, e.Status, e.StatusLabel)
		}
		if e.StatusKnown && e.StatusLabel != domain.StatusPreparing && e.StatusLabel != domain.StatusDelivered {
			p.errorf("record %d (%s): known status has non-canonical label %q", i, e.ID, e.StatusLabel)
		}
		if e.ArrivalLabel != "" && !arrivalLabelRe.MatchString(e.ArrivalLabel) {
			p.errorf("record %d (%s): malformed arrival_label %q", i, e.ID, e.ArrivalLabel)
		}
		if (e.ArrivalLabel == "") != (e.ArrivesAt == nil) {
			p.errorf("record %d (%s): arrival_label and arrives_at disagree", i, e.ID)
		}
	}
	return p
}

package quote

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseBatchYAML(t *testing.T) {
	doc := `
requests:
  - itemName: Fridge
    customerName: Ali
    principal: 45000
    annualRatePercent: 12
    advancePayment: 5000
  - itemName: Phone
    customerName: Sara
    principal: 1200
    durations: [4]
    includeSchedule: true
`
	reqs, err := ParseBatch(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].ItemName != "Fridge" || reqs[0].Principal != 45000 || reqs[0].AdvancePayment != 5000 {
		t.Errorf("unexpected first request %+v", reqs[0])
	}
	if len(reqs[1].Durations) != 1 || reqs[1].Durations[0] != 4 || !reqs[1].IncludeSchedule {
		t.Errorf("unexpected second request %+v", reqs[1])
	}
}

func TestParseBatchJSON(t *testing.T) {
	reqs, err := ParseBatch(strings.NewReader(`{"requests": [{"itemName": "TV", "principal": 800}]}`))
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if len(reqs) != 1 || reqs[0].ItemName != "TV" {
		t.Errorf("unexpected requests %+v", reqs)
	}
}

func TestParseBatchErrors(t *testing.T) {
	if _, err := ParseBatch(strings.NewReader("  ")); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch for blank input, got %v", err)
	}
	if _, err := ParseBatch(strings.NewReader("requests: []")); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch for empty list, got %v", err)
	}
	if _, err := ParseBatch(strings.NewReader("requests: [")); err == nil {
		t.Error("expected parse error for malformed YAML")
	}

	var b strings.Builder
	b.WriteString("requests:\n")
	for i := 0; i < 1001; i++ {
		fmt.Fprintf(&b, "  - principal: %d\n", i)
	}
	if _, err := ParseBatch(strings.NewReader(b.String())); !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("expected ErrBatchTooLarge for oversized batch, got %v", err)
	}
}

package broker

import (
	"errors"
	"testing"
	"time"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"empty", "", false},
		{"blank", "   ", false},
		{"field compare", "data.amount > 10", false},
		{"key match", `key.startsWith("ord")`, false},
		{"syntax error", "data.amount >", true},
		{"non bool", "created_ms + 1", true},
		{"unknown variable", "payload.x == 1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileFilter(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("compileFilter(%q) err=%v wantErr=%v", tt.expr, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("error should wrap ErrInvalidArgument: %v", err)
			}
		})
	}
}

func TestFilterMatch(t *testing.T) {
	now := time.UnixMilli(10_000)
	ev := Event{ID: "orders-1-0-x", Data: map[string]any{"amount": 50.0, "kind": "refund"}, CreatedAt: time.UnixMilli(9_000)}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"data.amount > 10", true},
		{"data.amount > 100", false},
		{`data.kind == "refund" && key == "orders"`, true},
		{"now_ms - created_ms < 500", false},
		{"data.missing == 1", false},
	}
	for _, tt := range tests {
		f, err := compileFilter(tt.expr)
		if err != nil {
			t.Fatalf("compile %q: %v", tt.expr, err)
		}
		if got := f.match("orders", ev, now); got != tt.want {
			t.Fatalf("match(%q)=%v want %v", tt.expr, got, tt.want)
		}
	}
}

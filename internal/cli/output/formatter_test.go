package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	if _, ok := NewFormatter(FormatTable).(*TableFormatter); !ok {
		t.Error("expected TableFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TableFormatter); !ok {
		t.Error("unknown format should default to table")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := &JSONFormatter{}

	t.Run("struct", func(t *testing.T) {
		data := struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}{Name: "test", Value: 42}

		var buf bytes.Buffer
		if err := f.Format(&buf, data); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"name": "test"`) {
			t.Error("Format() missing name field")
		}
		if !strings.Contains(buf.String(), `"value": 42`) {
			t.Error("Format() missing value field")
		}
	})

	t.Run("snapshot hides token", func(t *testing.T) {
		snap := domain.Snapshot{
			State: domain.StateAuthenticated,
			User:  &domain.UserIdentity{Username: "alice"},
			Token: "secret-token",
		}

		var buf bytes.Buffer
		if err := f.Format(&buf, snap); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		out := buf.String()
		if strings.Contains(out, "secret-token") {
			t.Errorf("token leaked into output:\n%s", out)
		}
		if !strings.Contains(out, `"state": "authenticated"`) {
			t.Errorf("state should be encoded by name:\n%s", out)
		}
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, nil); err != nil {
			t.Fatalf("Format(nil) error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "null" {
			t.Errorf("Format(nil) = %q, want 'null'", got)
		}
	})
}

func TestYAMLFormatter_Format(t *testing.T) {
	f := &YAMLFormatter{}

	t.Run("uses json names", func(t *testing.T) {
		age := 30
		profile := domain.Profile{Age: &age, FitnessGoal: "strength", AvailableEquipment: []string{"dumbbells"}}

		var buf bytes.Buffer
		if err := f.Format(&buf, profile); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"age: 30", "fitness_goal: strength", "available_equipment:", "  - dumbbells"} {
			if !strings.Contains(out, want) {
				t.Errorf("YAML missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "weight") {
			t.Errorf("omitted fields should not appear:\n%s", out)
		}
	})

	t.Run("snapshot", func(t *testing.T) {
		snap := domain.Snapshot{
			State:     domain.StateAnonymous,
			ChangedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}

		var buf bytes.Buffer
		if err := f.Format(&buf, snap); err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(buf.String(), "state: anonymous") {
			t.Errorf("YAML = %s", buf.String())
		}
	})

	t.Run("unencodable", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Format(&buf, map[string]any{"ch": make(chan int)}); err == nil {
			t.Error("Format() should fail for channels")
		}
	})
}

package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

func TestTableFormatter_Format_Table(t *testing.T) {
	table := &Table{
		Headers: []string{"NAME", "VALUE"},
		Rows: [][]string{
			{"key1", "value1"},
			{"key2", "value2"},
		},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "NAME") {
		t.Error("Format() missing header NAME")
	}
	if !strings.Contains(output, "key1") {
		t.Error("Format() missing row data key1")
	}
}

func TestTableFormatter_Format_TableValue(t *testing.T) {
	table := Table{
		Headers: []string{"COL"},
		Rows:    [][]string{{"data"}},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "data") {
		t.Error("Format() missing data from Table value")
	}
}

func TestTableFormatter_Format_NoHeaders(t *testing.T) {
	table := NewTable("NAME", "VALUE")
	table.AddRow("key1", "value1")

	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "NAME") {
		t.Error("Format() should not contain headers when NoHeaders=true")
	}
	if !strings.Contains(output, "key1") {
		t.Error("Format() missing row data")
	}
}

func TestTableFormatter_Format_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("Format(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Error("Format(nil) should produce empty output")
	}
}

type weekView struct{ days []string }

func (w weekView) Table() *Table {
	t := NewTable("DAY")
	for _, d := range w.days {
		t.AddRow(d)
	}
	return t
}

func TestTableFormatter_Format_Tabler(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, weekView{days: []string{"monday", "thursday"}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "DAY" || lines[2] != "thursday" {
		t.Errorf("Format() lines = %q", lines)
	}
}

type exerciseRow struct {
	Name    string  `json:"name"`
	Sets    int     `json:"sets"`
	Reps    string  `json:"reps"`
	Rest    *int    `json:"rest_seconds,omitempty"`
	Notes   *string `json:"-"`
	Skipped string  `json:"skipped" table:"-"`
}

func TestTableFormatter_Format_Slice(t *testing.T) {
	rest := 90
	data := []exerciseRow{
		{Name: "Squat", Sets: 5, Reps: "5", Rest: &rest, Skipped: "hidden"},
		{Name: "Plank", Sets: 3, Reps: "60s"},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), output)
	}
	if fields := strings.Fields(lines[0]); !reflect.DeepEqual(fields, []string{"NAME", "SETS", "REPS", "REST_SECONDS"}) {
		t.Errorf("headers = %v", fields)
	}
	if fields := strings.Fields(lines[1]); !reflect.DeepEqual(fields, []string{"Squat", "5", "5", "90"}) {
		t.Errorf("row 1 = %v", fields)
	}
	if fields := strings.Fields(lines[2]); !reflect.DeepEqual(fields, []string{"Plank", "3", "60s", "-"}) {
		t.Errorf("row 2 = %v", fields)
	}
	if strings.Contains(output, "hidden") || strings.Contains(output, "NOTES") {
		t.Error("Format() should skip fields tagged json:\"-\" or table:\"-\"")
	}
}

func TestTableFormatter_Format_PointerSlice(t *testing.T) {
	data := []*exerciseRow{{Name: "Squat"}, nil, {Name: "Row"}}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Squat") || !strings.Contains(output, "Row") {
		t.Error("Format() missing pointer slice data")
	}
	if lines := strings.Split(strings.TrimSpace(output), "\n"); len(lines) != 3 {
		t.Errorf("nil elements should be skipped, got %d lines", len(lines))
	}
}

func TestTableFormatter_Format_StringSlice(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []string{"Hydrate", "Sleep 8h"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "VALUE") || !strings.Contains(buf.String(), "Sleep 8h") {
		t.Errorf("Format() = %q", buf.String())
	}
}

func TestTableFormatter_Format_MapSorted(t *testing.T) {
	data := map[string]any{
		"bmi":    22.5,
		"age":    30,
		"weight": "80kg",
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	var keys []string
	for _, l := range lines[1:] {
		keys = append(keys, strings.Fields(l)[0])
	}
	if !reflect.DeepEqual(keys, []string{"age", "bmi", "weight"}) {
		t.Errorf("keys = %v, want sorted", keys)
	}
}

func TestTableFormatter_Format_SingleStruct(t *testing.T) {
	user := domain.UserIdentity{ID: "7", Username: "alice"}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, &user); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "FIELD") || !strings.Contains(output, "VALUE") {
		t.Error("Format() missing struct headers")
	}
	if !strings.Contains(output, "username") || !strings.Contains(output, "alice") {
		t.Errorf("Format() missing struct data:\n%s", output)
	}
}

func TestTableFormatter_Format_SnapshotState(t *testing.T) {
	snap := domain.Snapshot{State: domain.StateAuthenticated, Token: "secret"}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, snap); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "authenticated") {
		t.Errorf("state should render by name:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "secret") {
		t.Error("token must not be rendered")
	}
}

func TestTableFormatter_Format_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, 42); err != nil {
		t.Fatalf("Format(42) error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "42" {
		t.Errorf("Format(42) = %q", buf.String())
	}
}

func TestTable_Render(t *testing.T) {
	table := &Table{
		Headers: []string{"COL1", "COL2"},
		Rows:    [][]string{{"a", "b"}, {"c", "d"}},
	}

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("Render() lines = %d, want 3", len(lines))
	}
	if lines[1] != "a     b" {
		t.Errorf("columns should be aligned, got %q", lines[1])
	}
}

func TestTable_RenderNoRows(t *testing.T) {
	table := NewTable("COL1", "COL2")

	var buf bytes.Buffer
	if err := table.RenderWithOptions(&buf, false); err != nil {
		t.Fatalf("RenderWithOptions() error = %v", err)
	}
	if !strings.Contains(buf.String(), "COL1") {
		t.Error("RenderWithOptions() missing headers")
	}
}

func TestTable_SetHeaders(t *testing.T) {
	table := &Table{}
	table.SetHeaders("H1", "H2", "H3")

	if !reflect.DeepEqual(table.Headers, []string{"H1", "H2", "H3"}) {
		t.Errorf("SetHeaders() = %v", table.Headers)
	}
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", "hello"},
		{"empty string", "", "-"},
		{"int", 42, "42"},
		{"int64", int64(123), "123"},
		{"uint", uint(99), "99"},
		{"float64", 72.5, "72.5"},
		{"whole float", 80.0, "80"},
		{"bool", true, "true"},
		{"empty slice", []int{}, "-"},
		{"slice", []int{1, 2, 3}, "[3 items]"},
		{"string slice", []string{"vegan", "gluten-free"}, "vegan, gluten-free"},
		{"empty map", map[string]int{}, "-"},
		{"map", map[string]int{"a": 1}, "{1 keys}"},
		{"text marshaler", domain.StateAnonymous, "anonymous"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatValue(reflect.ValueOf(tc.input)); got != tc.expected {
				t.Errorf("formatValue(%v) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFormatValue_Time(t *testing.T) {
	tm := time.Date(2024, 6, 15, 14, 30, 0, 0, time.Local)
	if got := formatValue(reflect.ValueOf(tm)); got != "2024-06-15 14:30" {
		t.Errorf("formatValue(time) = %q, want %q", got, "2024-06-15 14:30")
	}

	var zeroTime time.Time
	if got := formatValue(reflect.ValueOf(zeroTime)); got != "-" {
		t.Errorf("formatValue(zero time) = %q, want %q", got, "-")
	}
}

func TestFormatValue_PointerAndInterface(t *testing.T) {
	val := "pointer value"
	if got := formatValue(reflect.ValueOf(&val)); got != "pointer value" {
		t.Errorf("formatValue(*string) = %q", got)
	}

	var nilPtr *string
	if got := formatValue(reflect.ValueOf(nilPtr)); got != "-" {
		t.Errorf("formatValue(nil ptr) = %q, want -", got)
	}

	var iface any = "interface value"
	if got := formatValue(reflect.ValueOf(&iface).Elem()); got != "interface value" {
		t.Errorf("formatValue(interface) = %q", got)
	}

	var nilIface any
	if got := formatValue(reflect.ValueOf(&nilIface).Elem()); got != "-" {
		t.Errorf("formatValue(nil interface) = %q, want -", got)
	}

	if got := formatValue(reflect.Value{}); got != "-" {
		t.Errorf("formatValue(invalid) = %q, want -", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	testCases := map[string]string{
		"Name":          "name",
		"UserName":      "user_name",
		"already_snake": "already_snake",
	}

	for in, want := range testCases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseDay_BareDateAndTimestampAgree(t *testing.T) {
	cases := []string{
		"2024-01-15",
		"2024-01-15T00:00:00Z",
		"2024-01-15T23:59:59-08:00",
		" 2024-01-15 10:00:00 ",
	}
	for _, in := range cases {
		d, ok := ParseDay(in)
		if !ok {
			t.Fatalf("ParseDay(%q): expected ok", in)
		}
		if got := d.String(); got != "2024-01-15" {
			t.Fatalf("ParseDay(%q) = %s, want 2024-01-15", in, got)
		}
	}
	if _, ok := ParseDay("tomorrow"); ok {
		t.Fatalf("expected garbage to be rejected")
	}
	if _, ok := ParseDay(""); ok {
		t.Fatalf("expected empty to be rejected")
	}
}

func TestDay_AddDaysAndCompare(t *testing.T) {
	d := Day{Year: 2023, Month: time.December, Day: 31}
	next := d.AddDays(1)
	if next.String() != "2024-01-01" {
		t.Fatalf("expected year rollover, got %s", next)
	}
	if !d.Before(next) || next.Compare(d) != 1 || d.Compare(d) != 0 {
		t.Fatalf("unexpected ordering between %s and %s", d, next)
	}
	if got := d.DaysUntil(next.AddDays(2)); got != 3 {
		t.Fatalf("DaysUntil = %d, want 3", got)
	}
	if got := next.DaysUntil(d); got != -1 {
		t.Fatalf("DaysUntil backwards = %d, want -1", got)
	}
}

func TestOpt_JSON(t *testing.T) {
	task := Task{ID: "t1", Title: "x", Status: StatusTodo, Priority: PriorityLow, List: Some("work")}
	b, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"list":"work"`) {
		t.Fatalf("expected list in %s", s)
	}
	if strings.Contains(s, "description") || strings.Contains(s, "due_date") {
		t.Fatalf("expected absent optionals to be omitted: %s", s)
	}

	var back Task
	if err := json.Unmarshal([]byte(`{"id":"t1","title":"x","list":null,"description":"d"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.List.Present() {
		t.Fatalf("expected null list to be absent")
	}
	if v, ok := back.Description.Get(); !ok || v != "d" {
		t.Fatalf("unexpected description: %q %v", v, ok)
	}
}

func TestTaskUpdate_NullClearsField(t *testing.T) {
	cleared := None[string]()
	u := TaskUpdate{List: &cleared}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"list":null}` {
		t.Fatalf("unexpected body: %s", b)
	}
	if u.IsEmpty() {
		t.Fatalf("expected non-empty update")
	}
	if got := strings.Join(u.Fields(), ","); got != "list" {
		t.Fatalf("unexpected fields: %s", got)
	}
	if !(TaskUpdate{}).IsEmpty() {
		t.Fatalf("expected zero update to be empty")
	}
}

func TestIsBuiltinList_NormalizesCase(t *testing.T) {
	if !IsBuiltinList(" Work ") {
		t.Fatalf("expected Work to be built-in")
	}
	if IsBuiltinList("errands") {
		t.Fatalf("errands is not built-in")
	}
}

package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"task-tracker/backend/internal/models"
)

func TestPriority_Valid(t *testing.T) {
	valid := []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}
	for _, p := range valid {
		if !p.Valid() {
			t.Errorf("Expected priority '%s' to be valid", p)
		}
	}

	invalid := []models.Priority{"urgent", "", "LOW", "Medium"}
	for _, p := range invalid {
		if p.Valid() {
			t.Errorf("Expected priority '%s' to be invalid", p)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := models.ParseDate("2024-06-15")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if d.Year() != 2024 || d.Month() != time.June || d.Day() != 15 {
		t.Errorf("Expected 2024-06-15, got %s", d)
	}
}

func TestParseDate_InvalidCalendarDate(t *testing.T) {
	invalid := []string{"2024-13-40", "not-a-date", "2024-02-30", "15-06-2024"}
	for _, s := range invalid {
		if _, err := models.ParseDate(s); err == nil {
			t.Errorf("Expected error parsing '%s'", s)
		}
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := models.NewDate(2024, time.June, 15)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Failed to marshal date: %v", err)
	}

	if string(data) != `"2024-06-15"` {
		t.Errorf("Expected \"2024-06-15\", got %s", string(data))
	}

	var parsed models.Date
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal date: %v", err)
	}

	if !parsed.Equal(d.Time) {
		t.Errorf("Expected %s after round trip, got %s", d, parsed)
	}
}

func TestTask_SerializedShape(t *testing.T) {
	due := models.NewDate(2030, time.January, 2)
	task := models.Task{
		ID:        7,
		Text:      "Buy milk",
		Completed: false,
		Priority:  models.PriorityMedium,
		DueDate:   &due,
		CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Failed to marshal task: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal task: %v", err)
	}

	for _, key := range []string{"id", "text", "completed", "priority", "dueDate", "createdAt", "updatedAt"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key '%s' in serialized task", key)
		}
	}

	if decoded["dueDate"] != "2030-01-02" {
		t.Errorf("Expected dueDate '2030-01-02', got %v", decoded["dueDate"])
	}
}

func TestTask_NilDueDateSerializesAsNull(t *testing.T) {
	task := models.Task{ID: 1, Text: "No deadline", Priority: models.PriorityLow}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Failed to marshal task: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal task: %v", err)
	}

	if decoded["dueDate"] != nil {
		t.Errorf("Expected null dueDate, got %v", decoded["dueDate"])
	}
}

func TestTask_Overdue(t *testing.T) {
	today := models.NewDate(2024, time.June, 15)
	yesterday := models.NewDate(2024, time.June, 14)
	tomorrow := models.NewDate(2024, time.June, 16)

	tests := []struct {
		name    string
		task    models.Task
		overdue bool
	}{
		{"past due and pending", models.Task{DueDate: &yesterday}, true},
		{"past due but completed", models.Task{DueDate: &yesterday, Completed: true}, false},
		{"due today", models.Task{DueDate: &today}, false},
		{"due tomorrow", models.Task{DueDate: &tomorrow}, false},
		{"no due date", models.Task{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Overdue(today); got != tt.overdue {
				t.Errorf("Expected overdue=%v, got %v", tt.overdue, got)
			}
		})
	}
}

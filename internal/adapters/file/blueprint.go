package file

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/weaver/pkg/domain"
)

var csvHeader = []string{"index", "status", "model", "description", "result"}

// EncodeBlueprint renders a blueprint as CSV with a header row.
// Pending tasks flagged to be skipped are written with status SKIPPED.
func EncodeBlueprint(tasks []domain.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		status := t.Status
		if status == domain.TaskPending && t.Skip {
			status = domain.TaskSkipped
		}
		result := t.Result
		if t.Status == domain.TaskFailed {
			result = t.Error
		}
		row := []string{strconv.Itoa(t.Index), string(status), t.Model, t.Description, result}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeBlueprint parses a CSV blueprint as edited by a human.
// Column order follows the header; model and result columns are optional.
// Blank rows are ignored and indices are taken from row order.
func DecodeBlueprint(r io.Reader) ([]domain.Task, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []domain.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	descCol, ok := cols["description"]
	if !ok {
		return nil, fmt.Errorf("blueprint header is missing the description column")
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	tasks := []domain.Task{}
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read blueprint line %d: %w", line, err)
		}
		if descCol >= len(rec) || blank(rec) {
			continue
		}
		status, err := domain.ParseTaskStatus(field(rec, "status"))
		if err != nil {
			return nil, fmt.Errorf("blueprint line %d: %w", line, err)
		}
		t := domain.Task{
			Index:       len(tasks),
			Description: strings.TrimSpace(rec[descCol]),
			Model:       field(rec, "model"),
			Status:      status,
		}
		switch status {
		case domain.TaskFailed:
			t.Error = field(rec, "result")
		case domain.TaskDone:
			t.Result = field(rec, "result")
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

package export

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"leadhunt/internal/domain"
)

var leads = []domain.Lead{
	{Name: "Jane Doe", Email: "jane.doe@gmail.com", Phone: "(602) 555-0134", ProfileURL: "https://www.linkedin.com/in/janedoe", SourceSnippet: "Realtor, \"Phoenix\" metro"},
	{Email: "p1@gmail.com", SourceSnippet: "line one\nline two"},
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func readXLSX(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestExportWritesSameColumns(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "extracted_leads")
	e := New(dir, nil)

	paths, err := e.Export(context.Background(), "realtor_Phoenix_20260101_0900", leads)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || !strings.HasSuffix(paths[0], ".xlsx") || !strings.HasSuffix(paths[1], ".csv") {
		t.Fatalf("paths=%v", paths)
	}

	x := readXLSX(t, paths[0])
	c := readCSV(t, paths[1])

	if !reflect.DeepEqual(x[0], Header) || !reflect.DeepEqual(c[0], Header) {
		t.Fatalf("headers xlsx=%v csv=%v", x[0], c[0])
	}
	if len(c) != 3 || !reflect.DeepEqual(c[1], Row(leads[0])) || !reflect.DeepEqual(c[2], Row(leads[1])) {
		t.Fatalf("csv rows=%q", c)
	}
	if len(x) != 3 || !reflect.DeepEqual(x[1], Row(leads[0])) {
		t.Fatalf("xlsx rows=%q", x)
	}
}

func TestExportDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)

	first, err := e.Export(context.Background(), "base", leads[:1])
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Export(context.Background(), "base", leads[1:])
	if err != nil {
		t.Fatal(err)
	}
	if first[1] == second[1] || filepath.Base(second[1]) != "base_2.csv" {
		t.Fatalf("first=%v second=%v", first, second)
	}
}

type brokenWriter struct{}

func (brokenWriter) Ext() string { return ".xlsx" }

func (brokenWriter) Write(path string, _ []domain.Lead) error {
	if err := os.WriteFile(path, []byte("PK"), 0o644); err != nil {
		return err
	}
	return errors.New("disk full")
}

func TestExportFailureLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)
	e.Writers = []Writer{brokenWriter{}, CSV{}}

	paths, err := e.Export(context.Background(), "base", leads)
	if err == nil || paths != nil {
		t.Fatalf("paths=%v err=%v", paths, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, de := range entries {
		if de.Name() != lockName {
			t.Errorf("left behind: %s", de.Name())
		}
	}

	// the names are free again for the next attempt
	e.Writers = []Writer{XLSX{}, CSV{}}
	paths, err = e.Export(context.Background(), "base", leads)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(paths[1]) != "base.csv" {
		t.Fatalf("paths=%v", paths)
	}
}

func TestBaseName(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 5, 0, 0, time.UTC)
	tests := []struct {
		c    domain.SearchCriteria
		want string
	}{
		{domain.SearchCriteria{JobTitle: "real estate agent", Area: "Phoenix"}, "real_estate_agent_Phoenix_20261018_0905"},
		{domain.SearchCriteria{JobTitle: "c/o ../../etc", Area: ""}, "co_....etc_20261018_0905"},
		{domain.SearchCriteria{}, "leads_20261018_0905"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.c, at); got != tt.want {
			t.Errorf("BaseName(%+v) = %q want %q", tt.c, got, tt.want)
		}
	}
}

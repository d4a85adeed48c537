package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/ritzau/dystonia-kg/pkg/model"
)

func TestParseTableInfersColumnKinds(t *testing.T) {
	input := "node_name,count,sparse,ratio,flag,label,empty\n" +
		"a,1,3,0.5,True,x,\n" +
		"b,2,,1,False,7,\n"

	table, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}

	want := []model.Kind{
		model.KindString, model.KindInt, model.KindFloat, model.KindFloat,
		model.KindBool, model.KindString, model.KindFloat,
	}
	for i, kind := range want {
		if table.Kinds[i] != kind {
			t.Errorf("column %q: kind %v, want %v", table.Header[i], table.Kinds[i], kind)
		}
	}

	if got := table.Rows[0][1].String(); got != "1" {
		t.Errorf("count = %q, want 1", got)
	}
	if got := table.Rows[0][2].String(); got != "3.0" {
		t.Errorf("sparse = %q, want 3.0", got)
	}
	if !table.Rows[1][2].IsNull() {
		t.Errorf("empty sparse cell should be null, got %v", table.Rows[1][2])
	}
	if got := table.Rows[1][4].String(); got != "False" {
		t.Errorf("flag = %q, want False", got)
	}
	if got := table.Rows[1][5].String(); got != "7" {
		t.Errorf("label = %q, want 7", got)
	}
}

func TestParseTableNATokens(t *testing.T) {
	table, err := ParseTable(strings.NewReader("node_name,v\nNA,N/A\nx,null\ny,5\n"))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if got := table.Text(0, 0); got != "" {
		t.Errorf("NA name text = %q, want empty", got)
	}
	if !table.Rows[0][1].IsNull() || !table.Rows[1][1].IsNull() {
		t.Errorf("NA tokens should parse as null")
	}
	if table.Kinds[1] != model.KindFloat {
		t.Errorf("int column with missing cells should be float, got %v", table.Kinds[1])
	}
}

func TestParseTablePadsShortRows(t *testing.T) {
	table, err := ParseTable(strings.NewReader("node_name,a,b\nx,1\n"))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if len(table.Rows[0]) != 3 || !table.Rows[0][2].IsNull() {
		t.Errorf("short row should be padded with null, got %v", table.Rows[0])
	}
	if table.Lines[0] != 2 {
		t.Errorf("line = %d, want 2", table.Lines[0])
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"long row", "node_name,a\nx,1,2\n"},
		{"bad quote", "node_name,a\nx,\"1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.input))
			if !errors.Is(err, model.ErrMalformedTable) {
				t.Errorf("expected ErrMalformedTable, got %v", err)
			}
		})
	}
}

func TestParseTableStripsBOM(t *testing.T) {
	table, err := ParseTable(strings.NewReader("\ufeffnode_name,a\nx,1\n"))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if table.Header[0] != "node_name" {
		t.Errorf("header[0] = %q, want node_name", table.Header[0])
	}
	if table.Index("a") != 1 || table.Index("missing") != -1 {
		t.Errorf("unexpected column index")
	}
}

func TestReadTableMissingFile(t *testing.T) {
	if _, err := ReadTable("testdata/does_not_exist.csv"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

package schema

import (
	"errors"
	"testing"

	"github.com/clanvault/clanvault/tools"
)

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		in     string
		want   ColumnType
		wantOK bool
	}{
		{"TEXT", TypeText, true},
		{"integer", TypeInteger, true},
		{" Real ", TypeReal, true},
		{"boolean", TypeBoolean, true},
		{"VARCHAR", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseColumnType(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseColumnType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseColumnSpec(t *testing.T) {
	tests := []struct {
		decl    string
		want    ColumnSpec
		wantErr error
	}{
		{"TEXT", ColumnSpec{Name: "c", Type: TypeText}, nil},
		{"INTEGER PRIMARY KEY AUTOINCREMENT", ColumnSpec{Name: "c", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true}, nil},
		{"text primary key", ColumnSpec{Name: "c", Type: TypeText, PrimaryKey: true}, nil},
		{"", ColumnSpec{}, tools.ErrInvalidColumnType},
		{"BLOB", ColumnSpec{}, tools.ErrInvalidColumnType},
		{"TEXT NOT NULL", ColumnSpec{}, tools.ErrInvalidColumnType},
		{"TEXT PRIMARY KEY AUTOINCREMENT", ColumnSpec{}, tools.ErrInvalidConstraint},
		{"INTEGER AUTOINCREMENT", ColumnSpec{}, tools.ErrInvalidConstraint},
	}

	for _, tt := range tests {
		got, err := ParseColumnSpec("c", tt.decl)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseColumnSpec(%q) error = %v, want %v", tt.decl, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColumnSpec(%q) error = %v", tt.decl, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColumnSpec(%q) = %+v, want %+v", tt.decl, got, tt.want)
		}
	}
}

func TestDeclaration(t *testing.T) {
	tests := []struct {
		col  ColumnSpec
		want string
	}{
		{ColumnSpec{Name: "a", Type: TypeText}, "TEXT"},
		{ColumnSpec{Name: "a", Type: "real"}, "REAL"},
		{ColumnSpec{Name: "a", Type: TypeText, PrimaryKey: true}, "TEXT PRIMARY KEY"},
		{ColumnSpec{Name: "a", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true}, "INTEGER PRIMARY KEY AUTOINCREMENT"},
	}

	for _, tt := range tests {
		if got := tt.col.Declaration(); got != tt.want {
			t.Errorf("Declaration(%+v) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := TableSpec{
		Name: "A02_ClanMembers",
		Columns: []ColumnSpec{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "tag", Type: TypeText},
			{Name: "donations", Type: TypeInteger},
		},
		Indexes: []string{"tag"},
	}

	tests := []struct {
		name    string
		mutate  func(*TableSpec)
		wantErr error
	}{
		{"valid", func(*TableSpec) {}, nil},
		{"bad table name", func(s *TableSpec) { s.Name = "A02 members" }, tools.ErrInvalidIdentifier},
		{"no columns", func(s *TableSpec) { s.Columns = nil }, tools.ErrNoColumns},
		{"bad column name", func(s *TableSpec) { s.Columns[1].Name = "tag;--" }, tools.ErrInvalidIdentifier},
		{"duplicate column", func(s *TableSpec) { s.Columns[2].Name = "TAG" }, tools.ErrDuplicateColumn},
		{"bad type", func(s *TableSpec) { s.Columns[2].Type = "BIGINT" }, tools.ErrInvalidColumnType},
		{"lowercase type", func(s *TableSpec) { s.Columns[2].Type = "integer" }, nil},
		{"bad constraint", func(s *TableSpec) { s.Columns[1].AutoIncrement = true }, tools.ErrInvalidConstraint},
		{"undeclared index column", func(s *TableSpec) { s.Indexes = []string{"season"} }, tools.ErrUnknownIndexColumn},
		{"index column case", func(s *TableSpec) { s.Indexes = []string{"Tag"} }, nil},
		{"bad index column", func(s *TableSpec) { s.Indexes = []string{"a b"} }, tools.ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			spec.Columns = append([]ColumnSpec(nil), valid.Columns...)
			spec.Indexes = append([]string(nil), valid.Indexes...)
			tt.mutate(&spec)

			err := spec.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, tools.ErrInvalidSpec) {
				t.Errorf("Validate() = %v, want it to wrap ErrInvalidSpec", err)
			}
		})
	}
}

func TestColumnLookup(t *testing.T) {
	spec := TableSpec{Name: "t", Columns: []ColumnSpec{{Name: "a", Type: TypeText}}}
	if _, ok := spec.Column("a"); !ok {
		t.Error("Column(a) not found")
	}
	if _, ok := spec.Column("b"); ok {
		t.Error("Column(b) found, want missing")
	}
}

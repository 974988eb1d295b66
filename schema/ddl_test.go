package schema

import "testing"

func TestCreateTableSQL(t *testing.T) {
	spec := TableSpec{
		Name: "A01_ClanInfo",
		Columns: []ColumnSpec{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "tag", Type: TypeText},
			{Name: "isFamilyFriendly", Type: TypeBoolean},
		},
	}

	want := "CREATE TABLE IF NOT EXISTS [A01_ClanInfo] ([id] INTEGER PRIMARY KEY AUTOINCREMENT, [tag] TEXT, [isFamilyFriendly] BOOLEAN)"
	if got := CreateTableSQL(spec); got != want {
		t.Errorf("CreateTableSQL =\n%s\nwant\n%s", got, want)
	}
}

func TestAddColumnSQL(t *testing.T) {
	tests := []struct {
		col  ColumnSpec
		want string
	}{
		{ColumnSpec{Name: "score", Type: TypeReal}, "ALTER TABLE [Foo] ADD COLUMN [score] REAL"},
		{ColumnSpec{Name: "tag", Type: "text", PrimaryKey: true}, "ALTER TABLE [Foo] ADD COLUMN [tag] TEXT"},
	}

	for _, tt := range tests {
		if got := AddColumnSQL("Foo", tt.col); got != tt.want {
			t.Errorf("AddColumnSQL(%+v) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestCreateIndexSQL(t *testing.T) {
	if got := IndexName("A05_WarLog", "endTime"); got != "idx_A05_WarLog_endTime" {
		t.Errorf("IndexName = %q", got)
	}

	want := "CREATE INDEX IF NOT EXISTS [idx_A05_WarLog_endTime] ON [A05_WarLog]([endTime])"
	if got := CreateIndexSQL("A05_WarLog", "endTime"); got != want {
		t.Errorf("CreateIndexSQL = %q, want %q", got, want)
	}
}

package migration

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSScanner_ScanMigrations(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"migrations/002_add_index.sql":      {Data: []byte("CREATE INDEX idx_a ON a(id);")},
		"migrations/001_initial_schema.sql": {Data: []byte("-- Description: Create table a\nCREATE TABLE a (id INTEGER);")},
		"migrations/010_later.sql":          {Data: []byte("CREATE TABLE c (id INTEGER);")},
		"migrations/README.md":              {Data: []byte("ignored")},
	}

	migrations, err := NewScanner(files, "migrations").ScanMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, "001", migrations[0].Version)
	assert.Equal(t, "Create table a", migrations[0].Description)
	assert.Equal(t, "migrations/001_initial_schema.sql", migrations[0].FilePath)
	assert.Len(t, migrations[0].Checksum, 64)

	assert.Equal(t, "002", migrations[1].Version)
	assert.Equal(t, "add index", migrations[1].Description)
	assert.Equal(t, "010", migrations[2].Version)
}

func TestFSScanner_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files fstest.MapFS
		want  error
	}{
		{
			name:  "bad file name",
			files: fstest.MapFS{"m/initial.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")}},
			want:  ErrInvalidMigrationFile,
		},
		{
			name:  "comment only file",
			files: fstest.MapFS{"m/001_empty.sql": {Data: []byte("-- nothing here\n")}},
			want:  ErrInvalidMigrationFile,
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
				"m/1_b.sql":   {Data: []byte("CREATE TABLE b (id INTEGER);")},
			},
			want: ErrDuplicateVersion,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewScanner(tc.files, "m").ScanMigrations()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFSScanner_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewScanner(fstest.MapFS{}, "absent").ScanMigrations()
	var migrationErr *MigrationError
	require.ErrorAs(t, err, &migrationErr)
	assert.Equal(t, "read directory", migrationErr.Operation)
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	sql := `-- header
CREATE TABLE a (
	id INTEGER -- inline comments stay
);

-- only a comment;
INSERT INTO a (id) VALUES (1);
`
	statements := splitStatements(sql)
	require.Len(t, statements, 2)
	assert.Equal(t, "CREATE TABLE a (\nid INTEGER -- inline comments stay\n)", statements[0])
	assert.Equal(t, "INSERT INTO a (id) VALUES (1)", statements[1])
}

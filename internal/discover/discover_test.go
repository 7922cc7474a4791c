package discover

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/schema"
)

func createDB(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "school.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	return path
}

func TestSQLite(t *testing.T) {
	path := createDB(t,
		`CREATE TABLE departments (department_id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE student_records (
			student_id INTEGER PRIMARY KEY,
			full_name VARCHAR(80),
			department_id INTEGER REFERENCES departments(department_id),
			note
		)`,
	)

	s, err := SQLite(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", s.DBType)
	assert.Equal(t, "school", s.Database)
	require.Len(t, s.Nodes, 2)

	assert.Equal(t, schema.Table{
		ID:      "departments",
		Label:   "Departments",
		Columns: []string{"department_id (PK) [INTEGER]", "name [TEXT]"},
	}, s.Nodes[0])
	assert.Equal(t, schema.Table{
		ID:    "student_records",
		Label: "Student Records",
		Columns: []string{
			"student_id (PK) [INTEGER]",
			"full_name [VARCHAR(80)]",
			"department_id (FK:departments) [INTEGER]",
			"note",
		},
	}, s.Nodes[1])
	assert.Equal(t, []schema.Edge{{Source: "student_records", Target: "departments"}}, s.Edges)

	assert.Equal(t, schema.Summary{DBType: "sqlite", Database: "school", Tables: 2, Links: 1}, s.Summarize())
}

func TestSQLiteMultipleForeignKeys(t *testing.T) {
	path := createDB(t,
		`CREATE TABLE teachers (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE rooms (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE classes (
			id INTEGER PRIMARY KEY,
			teacher_id INTEGER REFERENCES teachers(id),
			room_id INTEGER REFERENCES rooms(id)
		)`,
	)

	s, err := SQLite(context.Background(), path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []schema.Edge{
		{Source: "classes", Target: "teachers"},
		{Source: "classes", Target: "rooms"},
	}, s.Edges)
}

func TestSQLiteEmpty(t *testing.T) {
	path := createDB(t, `CREATE TABLE IF NOT EXISTS t (id INTEGER)`, `DROP TABLE t`)

	s, err := SQLite(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, s.Nodes)
	assert.NotNil(t, s.Edges)
}

func TestSQLiteMissingFile(t *testing.T) {
	_, err := SQLite(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.db")
}

func TestSQLiteReadOnly(t *testing.T) {
	path := createDB(t, `CREATE TABLE a (id INTEGER PRIMARY KEY)`)
	_, err := SQLite(context.Background(), path)
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`INSERT INTO a (id) VALUES (1)`)
	assert.Error(t, err, "read-only handle")
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"students":        "Students",
		"club_members":    "Club Members",
		"ORDER_ITEMS":     "Order Items",
		"_internal__data": "Internal Data",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Label(in))
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "id (PK) [INT]", Column{Name: "id", Type: "INT", PK: true}.Describe())
	assert.Equal(t, "x (FK)", Column{Name: "x", FK: true}.Describe())
	assert.Equal(t, "y (PK) (FK:t) [TEXT]", Column{Name: "y", Type: "TEXT", PK: true, FK: true, FKTable: "t"}.Describe())
}

func TestSample(t *testing.T) {
	s := Sample()
	sum := s.Summarize()
	assert.Equal(t, "mysql", sum.DBType)
	assert.Equal(t, "school_management", sum.Database)
	assert.Equal(t, 10, sum.Tables)
	assert.Equal(t, 12, sum.Links)
}

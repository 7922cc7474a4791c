// Package discover produces schema snapshots from live databases.
package discover

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "github.com/mattn/go-sqlite3"

	"github.com/schemalens/schemalens/internal/parallel"
	"github.com/schemalens/schemalens/internal/schema"
)

//go:embed sample.json
var sampleJSON []byte

// Sample returns the built-in school management schema.
func Sample() *schema.Schema {
	s, err := schema.Parse(sampleJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded sample schema: %v", err))
	}
	return s
}

// Label turns a table name into a display label: underscores become
// spaces and every word is capitalized.
func Label(table string) string {
	words := strings.Fields(strings.ReplaceAll(table, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Column is one introspected column.
type Column struct {
	Name    string
	Type    string
	PK      bool
	FKTable string
	FK      bool
}

// Describe renders a column as "name (PK) (FK:table) [TYPE]".
func (c Column) Describe() string {
	parts := []string{c.Name}
	if c.PK {
		parts = append(parts, "(PK)")
	}
	if c.FK {
		if c.FKTable != "" {
			parts = append(parts, "(FK:"+c.FKTable+")")
		} else {
			parts = append(parts, "(FK)")
		}
	}
	if c.Type != "" {
		parts = append(parts, "["+c.Type+"]")
	}
	return strings.Join(parts, " ")
}

type tableInfo struct {
	name    string
	columns []Column
	refs    []string
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// SQLite introspects the database file at path, opened read-only.
func SQLite(ctx context.Context, path string) (*schema.Schema, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(4)

	names, err := tableNames(ctx, db)
	if err != nil {
		return nil, err
	}

	tables, err := parallel.Map(ctx, names, 4, func(ctx context.Context, name string) (tableInfo, error) {
		return introspect(ctx, db, name)
	})
	if err != nil {
		return nil, err
	}

	s := &schema.Schema{
		Database: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		DBType:   "sqlite",
		Nodes:    make([]schema.Table, 0, len(tables)),
		Edges:    []schema.Edge{},
	}
	for _, t := range tables {
		cols := make([]string, 0, len(t.columns))
		for _, c := range t.columns {
			cols = append(cols, c.Describe())
		}
		s.Nodes = append(s.Nodes, schema.Table{ID: t.name, Label: Label(t.name), Columns: cols})
		for _, ref := range t.refs {
			s.Edges = append(s.Edges, schema.Edge{Source: t.name, Target: ref})
		}
	}
	return s, nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func introspect(ctx context.Context, db *sql.DB, table string) (tableInfo, error) {
	info := tableInfo{name: table}

	fks, refs, err := foreignKeys(ctx, db, table)
	if err != nil {
		return info, err
	}
	info.refs = refs

	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quote(table)+")")
	if err != nil {
		return info, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return info, fmt.Errorf("columns of %s: %w", table, err)
		}
		target, isFK := fks[name]
		info.columns = append(info.columns, Column{
			Name:    name,
			Type:    typ,
			PK:      pk > 0,
			FK:      isFK,
			FKTable: target,
		})
	}
	return info, rows.Err()
}

// foreignKeys maps constrained columns to the referred table and lists the
// referred tables once per constraint.
func foreignKeys(ctx context.Context, db *sql.DB, table string) (map[string]string, []string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+quote(table)+")")
	if err != nil {
		return nil, nil, fmt.Errorf("foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]string)
	var refs []string
	seen := make(map[int]bool)
	for rows.Next() {
		var (
			id, seq                           int
			target, from                      string
			to, onUpdate, onDelete, matchRule sql.NullString
		)
		if err := rows.Scan(&id, &seq, &target, &from, &to, &onUpdate, &onDelete, &matchRule); err != nil {
			return nil, nil, fmt.Errorf("foreign keys of %s: %w", table, err)
		}
		cols[from] = target
		if !seen[id] {
			seen[id] = true
			refs = append(refs, target)
		}
	}
	return cols, refs, rows.Err()
}

// Package store provides a table-storage client on top of the db layer:
// tables keyed by a (partition key, row key) pair, segmented scans driven by
// opaque continuation tokens, point lookups and etag-guarded replaces.
package store

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/gocql/gocql"

	"github.com/riptano/table-data-demo/config"
	"github.com/riptano/table-data-demo/db"
	"github.com/riptano/table-data-demo/types"
)

// Column names every table managed by the store carries. partition_key and
// row_key form the record identity, etag is the concurrency token.
const (
	ColumnPartitionKey = "partition_key"
	ColumnRowKey       = "row_key"
	ColumnETag         = "etag"
)

// ETagAny is the wildcard concurrency token. A replace carrying it skips
// conflict detection entirely and the last writer wins.
const ETagAny = "*"

// Store gives access to the tables of a single keyspace.
type Store struct {
	db       *db.Db
	keyspace string
	cfg      config.Config
}

func New(dbClient *db.Db, keyspace string, cfg config.Config) *Store {
	return &Store{
		db:       dbClient,
		keyspace: keyspace,
		cfg:      cfg,
	}
}

func (s *Store) Keyspace() string {
	return s.keyspace
}

func (s *Store) Config() config.Config {
	return s.cfg
}

// TableDefinition describes the value columns of a table. The identity pair
// and the etag column are implicit on every table.
type TableDefinition struct {
	Name    string
	Columns []*gocql.ColumnMetadata
}

// Page is one segment of a scan. ContinuationToken is empty once the scan
// is exhausted.
type Page struct {
	Rows              []map[string]interface{}
	ContinuationToken string
}

// EnsureTable creates the table when it is not present in the keyspace
// schema. It reports whether a create was issued.
func (s *Store) EnsureTable(def *TableDefinition) (bool, error) {
	exists, err := s.db.TableExists(s.keyspace, def.Name)
	if err != nil {
		return false, opError("ensure", def.Name, err)
	}
	if exists {
		return false, nil
	}

	_, err = s.db.CreateTable(&db.CreateTableInfo{
		Keyspace: s.keyspace,
		Table:    def.Name,
		PartitionKeys: []*gocql.ColumnMetadata{
			{Name: ColumnPartitionKey, Type: gocql.NewNativeType(0, gocql.TypeText, "")},
		},
		ClusteringKeys: []*gocql.ColumnMetadata{
			{Name: ColumnRowKey, Type: gocql.NewNativeType(0, gocql.TypeText, "")},
		},
		Values: append([]*gocql.ColumnMetadata{
			{Name: ColumnETag, Type: gocql.NewNativeType(0, gocql.TypeText, "")},
		}, def.Columns...),
		IfNotExists: true,
	}, db.NewQueryOptions())
	if err != nil {
		return false, opError("ensure", def.Name, err)
	}

	s.cfg.Logger().Info("table created",
		"keyspace", s.keyspace,
		"table", def.Name)
	return true, nil
}

// Insert adds a new record. A fresh etag is minted and written back into the
// row. Inserting an existing identity pair fails with ErrAlreadyExists.
func (s *Store) Insert(table string, row map[string]interface{}) error {
	if err := requireKeys(row); err != nil {
		return opError("insert", table, err)
	}

	row[ColumnETag] = NewETag()

	columns := sortedColumns(row)
	params := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		params = append(params, row[column])
	}

	result, err := s.db.Insert(&db.InsertInfo{
		Keyspace:    s.keyspace,
		Table:       table,
		Columns:     columns,
		QueryParams: params,
		IfNotExists: true,
	}, db.NewQueryOptions())
	if err != nil {
		return opError("insert", table, err)
	}
	if !result.Applied {
		return opError("insert", table, ErrAlreadyExists)
	}

	return nil
}

// Scan returns one segment of the table. Pass the previous segment's
// continuation token to resume; an empty token starts from the beginning.
func (s *Store) Scan(table string, pageSize int, continuationToken string) (*Page, error) {
	pageState, err := base64.StdEncoding.DecodeString(continuationToken)
	if err != nil {
		return nil, opError("scan", table, fmt.Errorf("invalid continuation token: %w", err))
	}

	result, err := s.db.Select(
		&db.SelectInfo{
			Keyspace: s.keyspace,
			Table:    table,
		},
		db.NewQueryOptions().
			WithPageSize(pageSize).
			WithPageState(pageState))
	if err != nil {
		return nil, opError("scan", table, err)
	}

	return &Page{
		Rows:              result.Values(),
		ContinuationToken: base64.StdEncoding.EncodeToString(result.PageState()),
	}, nil
}

// Get retrieves a single record by its identity pair. Absent records yield
// (nil, nil).
func (s *Store) Get(table string, partitionKey string, rowKey string) (map[string]interface{}, error) {
	result, err := s.db.Select(
		&db.SelectInfo{
			Keyspace: s.keyspace,
			Table:    table,
			Where: []types.ConditionItem{
				{Column: ColumnPartitionKey, Operator: "=", Value: partitionKey},
				{Column: ColumnRowKey, Operator: "=", Value: rowKey},
			},
		},
		db.NewQueryOptions())
	if err != nil {
		return nil, opError("get", table, err)
	}

	rows := result.Values()
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Replace overwrites the record identified by the row's partition and row
// key. With ETagAny the overwrite is unconditional; any other etag guards
// the replace and a stale token fails with ErrETagMismatch. A fresh etag is
// minted and written back into the row either way.
func (s *Store) Replace(table string, row map[string]interface{}, etag string) error {
	if err := requireKeys(row); err != nil {
		return opError("replace", table, err)
	}

	row[ColumnETag] = NewETag()

	setColumns := make([]string, 0, len(row))
	for _, column := range sortedColumns(row) {
		if column == ColumnPartitionKey || column == ColumnRowKey {
			continue
		}
		setColumns = append(setColumns, column)
	}
	setParams := make([]interface{}, 0, len(setColumns))
	for _, column := range setColumns {
		setParams = append(setParams, row[column])
	}

	info := &db.UpdateInfo{
		Keyspace:   s.keyspace,
		Table:      table,
		SetColumns: setColumns,
		SetParams:  setParams,
		KeyColumns: []string{ColumnPartitionKey, ColumnRowKey},
		KeyParams:  []interface{}{row[ColumnPartitionKey], row[ColumnRowKey]},
	}
	if etag != ETagAny {
		info.IfCondition = []types.ConditionItem{
			{Column: ColumnETag, Operator: "=", Value: etag},
		}
	}

	result, err := s.db.Update(info, db.NewQueryOptions())
	if err != nil {
		return opError("replace", table, err)
	}
	if !result.Applied {
		return opError("replace", table, ErrETagMismatch)
	}

	return nil
}

// NewETag mints a fresh concurrency token.
func NewETag() string {
	return gocql.TimeUUID().String()
}

func requireKeys(row map[string]interface{}) error {
	for _, column := range []string{ColumnPartitionKey, ColumnRowKey} {
		if value, found := row[column]; !found || value == "" {
			return fmt.Errorf("row is missing the %s column", column)
		}
	}
	return nil
}

func sortedColumns(row map[string]interface{}) []string {
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

package people

import (
	"github.com/gocql/gocql"

	"github.com/riptano/table-data-demo/store"
)

var tableDefinition = &store.TableDefinition{
	Name: TableName,
	Columns: []*gocql.ColumnMetadata{
		{Name: "id", Type: gocql.NewNativeType(0, gocql.TypeUUID, "")},
		{Name: "first_name", Type: gocql.NewNativeType(0, gocql.TypeText, "")},
		{Name: "last_name", Type: gocql.NewNativeType(0, gocql.TypeText, "")},
	},
}

// Repo is the hand-written people repository. Every call spells out its
// columns; nothing is derived at runtime.
type Repo struct {
	store *store.Store
}

func NewRepo(s *store.Store) *Repo {
	return &Repo{store: s}
}

func (r *Repo) EnsureTable() (bool, error) {
	return r.store.EnsureTable(tableDefinition)
}

func (r *Repo) Insert(p *Person) error {
	row := toRow(p)
	if err := r.store.Insert(TableName, row); err != nil {
		return err
	}
	p.ETag = row[store.ColumnETag].(string)
	return nil
}

// Scan returns one segment of the people table.
func (r *Repo) Scan(pageSize int, continuationToken string) ([]*Person, string, error) {
	page, err := r.store.Scan(TableName, pageSize, continuationToken)
	if err != nil {
		return nil, "", err
	}

	items := make([]*Person, 0, len(page.Rows))
	for _, row := range page.Rows {
		items = append(items, fromRow(row))
	}
	return items, page.ContinuationToken, nil
}

// ScanAll drains the table, following continuation tokens until exhausted.
func (r *Repo) ScanAll(pageSize int) ([]*Person, error) {
	items := make([]*Person, 0)
	continuationToken := ""

	for {
		page, token, err := r.Scan(pageSize, continuationToken)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if token == "" {
			return items, nil
		}
		continuationToken = token
	}
}

// Get retrieves one person, or nil when absent.
func (r *Repo) Get(partitionKey string, rowKey string) (*Person, error) {
	row, err := r.store.Get(TableName, partitionKey, rowKey)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return fromRow(row), nil
}

// UpdateFirstName fetches the person, sets the new first name and replaces
// the record unconditionally. Absent records are a no-op returning nil.
func (r *Repo) UpdateFirstName(partitionKey string, rowKey string, firstName string) (*Person, error) {
	target, err := r.Get(partitionKey, rowKey)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}

	target.FirstName = firstName

	if err := r.Replace(target, store.ETagAny); err != nil {
		return nil, err
	}
	return target, nil
}

// Replace overwrites the stored record. Pass store.ETagAny for an
// unconditional last-writer-wins overwrite.
func (r *Repo) Replace(p *Person, etag string) error {
	row := toRow(p)
	if err := r.store.Replace(TableName, row, etag); err != nil {
		return err
	}
	p.ETag = row[store.ColumnETag].(string)
	return nil
}

func toRow(p *Person) map[string]interface{} {
	return map[string]interface{}{
		store.ColumnPartitionKey: p.PartitionKey,
		store.ColumnRowKey:       p.RowKey,
		store.ColumnETag:         p.ETag,
		"id":                     p.ID,
		"first_name":             p.FirstName,
		"last_name":              p.LastName,
	}
}

func fromRow(row map[string]interface{}) *Person {
	return &Person{
		Keys: store.Keys{
			PartitionKey: stringColumn(row, store.ColumnPartitionKey),
			RowKey:       stringColumn(row, store.ColumnRowKey),
			ETag:         stringColumn(row, store.ColumnETag),
		},
		ID:        uuidColumn(row, "id"),
		FirstName: stringColumn(row, "first_name"),
		LastName:  stringColumn(row, "last_name"),
	}
}

func stringColumn(row map[string]interface{}, column string) string {
	switch value := row[column].(type) {
	case *string:
		if value != nil {
			return *value
		}
	case string:
		return value
	}
	return ""
}

func uuidColumn(row map[string]interface{}, column string) gocql.UUID {
	switch value := row[column].(type) {
	case *gocql.UUID:
		if value != nil {
			return *value
		}
	case gocql.UUID:
		return value
	}
	return gocql.UUID{}
}

package store

import (
	"reflect"

	"go.uber.org/atomic"
)

// Repository provides typed access to one table, with the schema and column
// mapping derived from the entity type at construction time.
type Repository[T Entity] struct {
	store   *Store
	mapping *entityMapping
	ensured atomic.Bool
}

// EntityPage is one segment of a typed scan.
type EntityPage[T Entity] struct {
	Items             []T
	ContinuationToken string
}

// NewRepository derives the column mapping for T. T must be a pointer to a
// struct embedding Keys.
func NewRepository[T Entity](s *Store) (*Repository[T], error) {
	structType := reflect.TypeOf((*T)(nil)).Elem()
	for structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	mapping, err := newEntityMapping(structType, s.cfg.Naming())
	if err != nil {
		return nil, err
	}

	if namer, ok := any(newEntity[T]()).(TableNamer); ok {
		mapping.table = namer.TableName()
	}

	return &Repository[T]{
		store:   s,
		mapping: mapping,
	}, nil
}

// Table returns the name of the backing table.
func (r *Repository[T]) Table() string {
	return r.mapping.table
}

// EnsureTable creates the backing table when missing and reports whether a
// create was issued.
func (r *Repository[T]) EnsureTable() (bool, error) {
	created, err := r.store.EnsureTable(r.mapping.tableDefinition())
	if err != nil {
		return false, err
	}
	r.ensured.Store(true)
	return created, nil
}

// Insert adds the entity as a new record and writes the minted etag back
// into it.
func (r *Repository[T]) Insert(entity T) error {
	if err := r.ensure(); err != nil {
		return err
	}

	row := r.mapping.encode(entity)
	if err := r.store.Insert(r.mapping.table, row); err != nil {
		return err
	}

	entity.EntityKeys().ETag = row[ColumnETag].(string)
	return nil
}

// Get retrieves a single entity by its identity pair. Absent records yield
// the zero value of T and no error.
func (r *Repository[T]) Get(partitionKey string, rowKey string) (T, error) {
	var zero T

	row, err := r.store.Get(r.mapping.table, partitionKey, rowKey)
	if err != nil {
		return zero, err
	}
	if row == nil {
		return zero, nil
	}

	return r.decodeRow(row)
}

// Scan returns one segment of the table. An empty continuation token starts
// from the beginning.
func (r *Repository[T]) Scan(pageSize int, continuationToken string) (*EntityPage[T], error) {
	page, err := r.store.Scan(r.mapping.table, pageSize, continuationToken)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(page.Rows))
	for _, row := range page.Rows {
		entity, err := r.decodeRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
	}

	return &EntityPage[T]{
		Items:             items,
		ContinuationToken: page.ContinuationToken,
	}, nil
}

// ScanAll drains the table segment by segment until the continuation token
// is exhausted.
func (r *Repository[T]) ScanAll(pageSize int) ([]T, error) {
	items := make([]T, 0)
	continuationToken := ""

	for {
		page, err := r.Scan(pageSize, continuationToken)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		continuationToken = page.ContinuationToken
		if continuationToken == "" {
			return items, nil
		}
	}
}

// Update fetches the record identified by the identity pair, copies the
// matching fields of source onto it and replaces it unconditionally. When
// the record is absent no replace is issued and the zero value of T is
// returned. The merged entity survives in memory even if the replace fails.
func (r *Repository[T]) Update(partitionKey string, rowKey string, source T) (T, error) {
	var zero T

	if err := r.ensure(); err != nil {
		return zero, err
	}

	target, err := r.Get(partitionKey, rowKey)
	if err != nil {
		return zero, err
	}
	if isNil(target) {
		return zero, nil
	}

	if err := Merge(target, source); err != nil {
		return zero, err
	}

	// The merge may have copied the identity of the source record; the
	// record being replaced stays the one that was fetched.
	keys := target.EntityKeys()
	keys.PartitionKey = partitionKey
	keys.RowKey = rowKey

	if err := r.Replace(target, ETagAny); err != nil {
		return zero, err
	}

	return target, nil
}

// Replace overwrites the stored record with the entity. Pass ETagAny to
// skip conflict detection or the entity's current etag to fail on stale
// writes. The fresh etag is written back into the entity.
func (r *Repository[T]) Replace(entity T, etag string) error {
	row := r.mapping.encode(entity)
	if err := r.store.Replace(r.mapping.table, row, etag); err != nil {
		return err
	}

	entity.EntityKeys().ETag = row[ColumnETag].(string)
	return nil
}

// ensure lazily creates the backing table before the first write.
func (r *Repository[T]) ensure() error {
	if r.ensured.Load() {
		return nil
	}
	_, err := r.EnsureTable()
	return err
}

func (r *Repository[T]) decodeRow(row map[string]interface{}) (T, error) {
	entity := newEntity[T]()
	if err := r.mapping.decode(row, entity); err != nil {
		var zero T
		return zero, opError("decode", r.mapping.table, err)
	}
	return entity, nil
}

func newEntity[T Entity]() T {
	structType := reflect.TypeOf((*T)(nil)).Elem()
	for structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	return reflect.New(structType).Interface().(T)
}

func isNil(entity interface{}) bool {
	value := reflect.ValueOf(entity)
	return !value.IsValid() || (value.Kind() == reflect.Ptr && value.IsNil())
}

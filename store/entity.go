package store

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gocql/gocql"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/inf.v0"

	"github.com/riptano/table-data-demo/config"
)

// Keys is the identity and concurrency portion shared by every entity.
// Embed it in a record struct to make the type usable with Repository.
type Keys struct {
	PartitionKey string `cql:"partition_key"`
	RowKey       string `cql:"row_key"`
	ETag         string `cql:"etag"`
}

func (k *Keys) EntityKeys() *Keys {
	return k
}

// Entity is any record struct embedding Keys.
type Entity interface {
	EntityKeys() *Keys
}

// TableNamer overrides the table name derived from the struct name.
type TableNamer interface {
	TableName() string
}

type mappedColumn struct {
	name  string
	index []int
	typ   gocql.TypeInfo
}

// entityMapping is the reflection-derived bridge between a record struct and
// its table: value column names, their CQL types and field positions.
type entityMapping struct {
	table   string
	columns []mappedColumn
}

func newEntityMapping(structType reflect.Type, naming config.NamingConvention) (*entityMapping, error) {
	if structType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity type %s is not a struct", structType)
	}

	mapping := &entityMapping{
		table: naming.ToCQLTable(structType.Name()),
	}

	keysFound := false
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" {
			continue
		}

		if field.Anonymous {
			if field.Type == reflect.TypeOf(Keys{}) {
				keysFound = true
				continue
			}
			return nil, fmt.Errorf("entity type %s embeds unsupported type %s", structType, field.Type)
		}

		columnName := field.Tag.Get("cql")
		if columnName == "" {
			columnName = naming.ToCQLColumn(field.Name)
		}

		columnType, err := cqlTypeOf(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s of entity type %s: %w", field.Name, structType, err)
		}

		mapping.columns = append(mapping.columns, mappedColumn{
			name:  columnName,
			index: field.Index,
			typ:   columnType,
		})
	}

	if !keysFound {
		return nil, fmt.Errorf("entity type %s does not embed store.Keys", structType)
	}

	return mapping, nil
}

// tableDefinition returns the schema for EnsureTable.
func (m *entityMapping) tableDefinition() *TableDefinition {
	columns := make([]*gocql.ColumnMetadata, 0, len(m.columns))
	for _, column := range m.columns {
		columns = append(columns, &gocql.ColumnMetadata{
			Name: column.name,
			Type: column.typ,
		})
	}
	return &TableDefinition{Name: m.table, Columns: columns}
}

// encode turns an entity into a row, identity pair and etag included.
func (m *entityMapping) encode(entity Entity) map[string]interface{} {
	keys := entity.EntityKeys()
	row := map[string]interface{}{
		ColumnPartitionKey: keys.PartitionKey,
		ColumnRowKey:       keys.RowKey,
		ColumnETag:         keys.ETag,
	}

	value := reflect.Indirect(reflect.ValueOf(entity))
	for _, column := range m.columns {
		row[column.name] = value.FieldByIndex(column.index).Interface()
	}

	return row
}

// decode fills an entity from a row. Column values scanned as pointers are
// dereferenced on the way in.
func (m *entityMapping) decode(row map[string]interface{}, entity Entity) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "cql",
		Squash:  true,
		Result:  entity,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(row)
}

func cqlTypeOf(goType reflect.Type) (gocql.TypeInfo, error) {
	switch goType {
	case reflect.TypeOf(gocql.UUID{}):
		return gocql.NewNativeType(0, gocql.TypeUUID, ""), nil
	case reflect.TypeOf(time.Time{}):
		return gocql.NewNativeType(0, gocql.TypeTimestamp, ""), nil
	case reflect.TypeOf((*inf.Dec)(nil)):
		return gocql.NewNativeType(0, gocql.TypeDecimal, ""), nil
	}

	switch goType.Kind() {
	case reflect.String:
		return gocql.NewNativeType(0, gocql.TypeText, ""), nil
	case reflect.Bool:
		return gocql.NewNativeType(0, gocql.TypeBoolean, ""), nil
	case reflect.Int, reflect.Int32:
		return gocql.NewNativeType(0, gocql.TypeInt, ""), nil
	case reflect.Int64:
		return gocql.NewNativeType(0, gocql.TypeBigInt, ""), nil
	case reflect.Int16:
		return gocql.NewNativeType(0, gocql.TypeSmallInt, ""), nil
	case reflect.Int8:
		return gocql.NewNativeType(0, gocql.TypeTinyInt, ""), nil
	case reflect.Float32:
		return gocql.NewNativeType(0, gocql.TypeFloat, ""), nil
	case reflect.Float64:
		return gocql.NewNativeType(0, gocql.TypeDouble, ""), nil
	case reflect.Slice:
		if goType.Elem().Kind() == reflect.Uint8 {
			return gocql.NewNativeType(0, gocql.TypeBlob, ""), nil
		}
	case reflect.Ptr:
		return cqlTypeOf(goType.Elem())
	}

	return nil, fmt.Errorf("no CQL type mapping for Go type %s", goType)
}

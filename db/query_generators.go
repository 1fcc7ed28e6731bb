package db

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"

	"github.com/riptano/table-data-demo/types"
)

type SelectInfo struct {
	Keyspace string
	Table    string
	Where    []types.ConditionItem
	OrderBy  []ColumnOrder
	Limit    int
}

type InsertInfo struct {
	Keyspace    string
	Table       string
	Columns     []string
	QueryParams []interface{}
	IfNotExists bool
}

type UpdateInfo struct {
	Keyspace    string
	Table       string
	SetColumns  []string
	SetParams   []interface{}
	KeyColumns  []string
	KeyParams   []interface{}
	IfCondition []types.ConditionItem
	IfExists    bool
}

type ColumnOrder struct {
	Column string
	Order  string
}

func mapScan(scanner gocql.Scanner, columns []gocql.ColumnInfo) (map[string]interface{}, error) {
	values := make([]interface{}, len(columns))

	for i := range values {
		typeInfo := columns[i].TypeInfo
		switch typeInfo.Type() {
		case gocql.TypeVarchar, gocql.TypeAscii, gocql.TypeInet, gocql.TypeText:
			values[i] = new(*string)
		case gocql.TypeBoolean:
			values[i] = new(*bool)
		case gocql.TypeFloat:
			values[i] = new(*float32)
		case gocql.TypeDouble:
			values[i] = new(*float64)
		case gocql.TypeInt:
			values[i] = new(*int)
		case gocql.TypeBigInt, gocql.TypeCounter:
			values[i] = new(*int64)
		case gocql.TypeSmallInt:
			values[i] = new(*int16)
		case gocql.TypeTinyInt:
			values[i] = new(*int8)
		case gocql.TypeTimeUUID, gocql.TypeUUID:
			values[i] = new(*gocql.UUID)
		case gocql.TypeTimestamp:
			values[i] = new(*time.Time)
		case gocql.TypeDecimal:
			values[i] = new(*inf.Dec)
		case gocql.TypeBlob:
			values[i] = new([]byte)
		default:
			return nil, fmt.Errorf("support for CQL type not found: %s", typeInfo.Type().String())
		}
	}

	if err := scanner.Scan(values...); err != nil {
		return nil, err
	}

	mapped := make(map[string]interface{}, len(values))
	for i, column := range columns {
		value := values[i]
		switch column.TypeInfo.Type() {
		case gocql.TypeVarchar, gocql.TypeAscii, gocql.TypeInet, gocql.TypeText,
			gocql.TypeBigInt, gocql.TypeInt, gocql.TypeSmallInt, gocql.TypeTinyInt,
			gocql.TypeCounter, gocql.TypeBoolean,
			gocql.TypeTimeUUID, gocql.TypeUUID,
			gocql.TypeTimestamp, gocql.TypeDecimal,
			gocql.TypeFloat, gocql.TypeDouble:
			value = reflect.Indirect(reflect.ValueOf(value)).Interface()
		}

		mapped[column.Name] = value
	}

	return mapped, nil
}

// Select executes a query and returns one page of the result set.
func (db *Db) Select(info *SelectInfo, options *QueryOptions) (ResultSet, error) {
	values := make([]interface{}, 0, len(info.Where))
	query := fmt.Sprintf("SELECT * FROM %s.%s", info.Keyspace, info.Table)

	if len(info.Where) > 0 {
		query += " WHERE " + buildCondition(info.Where, &values)
	}

	if len(info.OrderBy) > 0 {
		query += " ORDER BY "
		for i, order := range info.OrderBy {
			if i > 0 {
				query += ", "
			}
			query += order.Column + " " + order.Order
		}
	}

	if info.Limit > 0 {
		query += " LIMIT ?"
		values = append(values, info.Limit)
	}

	return db.session.ExecuteIter(query, options, values...)
}

// Insert adds a row. With IfNotExists the result carries whether the insert
// was applied.
func (db *Db) Insert(info *InsertInfo, options *QueryOptions) (*types.ModificationResult, error) {
	placeholders := "?"
	for i := 1; i < len(info.Columns); i++ {
		placeholders += ", ?"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s.%s (%s) VALUES (%s)",
		info.Keyspace, info.Table, strings.Join(info.Columns, ", "), placeholders)

	if info.IfNotExists {
		query += " IF NOT EXISTS"
		return db.executeConditional(query, options, info.QueryParams...)
	}

	err := db.session.Execute(query, options, info.QueryParams...)
	return &types.ModificationResult{Applied: err == nil}, err
}

// Update overwrites columns of a single row identified by its key columns.
// An IfCondition turns it into a lightweight transaction and the result
// reports whether the condition held.
func (db *Db) Update(info *UpdateInfo, options *QueryOptions) (*types.ModificationResult, error) {
	if len(info.KeyColumns) == 0 {
		return nil, errors.New("key columns must be included in query")
	}
	if len(info.SetColumns) == 0 {
		return nil, errors.New("query must include columns to update")
	}

	setClause := ""
	for _, columnName := range info.SetColumns {
		setClause += fmt.Sprintf(", %s = ?", columnName)
	}

	queryParameters := make([]interface{}, 0, len(info.SetParams)+len(info.KeyParams))
	queryParameters = append(queryParameters, info.SetParams...)
	queryParameters = append(queryParameters, info.KeyParams...)

	query := fmt.Sprintf("UPDATE %s.%s SET %s WHERE %s",
		info.Keyspace, info.Table, setClause[2:], buildWhereClause(info.KeyColumns))

	if info.IfExists {
		query += " IF EXISTS"
		return db.executeConditional(query, options, queryParameters...)
	}

	if len(info.IfCondition) > 0 {
		query += " IF " + buildCondition(info.IfCondition, &queryParameters)
		return db.executeConditional(query, options, queryParameters...)
	}

	err := db.session.Execute(query, options, queryParameters...)
	return &types.ModificationResult{Applied: err == nil}, err
}

// executeConditional runs a lightweight transaction and extracts the
// [applied] column along with the current row values when not applied.
func (db *Db) executeConditional(query string, options *QueryOptions, values ...interface{}) (*types.ModificationResult, error) {
	rs, err := db.session.ExecuteIter(query, options, values...)
	if err != nil {
		return nil, err
	}

	result := &types.ModificationResult{Applied: true}
	rows := rs.Values()
	if len(rows) == 0 {
		return result, nil
	}

	row := rows[0]
	if applied, ok := row["[applied]"].(*bool); ok && applied != nil {
		result.Applied = *applied
	}
	result.Value = row

	return result, nil
}

func buildWhereClause(columnNames []string) string {
	whereClause := columnNames[0] + " = ?"
	for i := 1; i < len(columnNames); i++ {
		whereClause += " AND " + columnNames[i] + " = ?"
	}
	return whereClause
}

func buildCondition(condition []types.ConditionItem, queryParameters *[]interface{}) string {
	conditionClause := ""
	for _, item := range condition {
		if conditionClause != "" {
			conditionClause += " AND "
		}

		conditionClause += fmt.Sprintf("%s %s ?", item.Column, item.Operator)
		*queryParameters = append(*queryParameters, item.Value)
	}
	return conditionClause
}

package db

import (
	"sort"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/mock"
)

type SessionMock struct {
	mock.Mock
}

func (o *SessionMock) Execute(query string, options *QueryOptions, values ...interface{}) error {
	// Calls with no variadic values arrive as a nil slice; record an empty
	// slice so assertions using []interface{}{} can match.
	if values == nil {
		values = []interface{}{}
	}
	args := o.Called(query, options, values)
	return args.Error(0)
}

func (o *SessionMock) ExecuteIter(query string, options *QueryOptions, values ...interface{}) (ResultSet, error) {
	if values == nil {
		values = []interface{}{}
	}
	args := o.Called(query, options, values)
	return args.Get(0).(ResultSet), args.Error(1)
}

func (o *SessionMock) KeyspaceMetadata(keyspaceName string) (*gocql.KeyspaceMetadata, error) {
	args := o.Called(keyspaceName)
	return args.Get(0).(*gocql.KeyspaceMetadata), args.Error(1)
}

type ResultMock struct {
	mock.Mock
}

func (o *ResultMock) PageState() []byte {
	args := o.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]byte)
}

func (o *ResultMock) Values() []map[string]interface{} {
	args := o.Called()
	return args.Get(0).([]map[string]interface{})
}

// NewResultMock builds a result set returning the given rows and
// continuation state.
func NewResultMock(values []map[string]interface{}, pageState []byte) *ResultMock {
	resultMock := &ResultMock{}
	resultMock.On("Values").Return(values)
	resultMock.On("PageState").Return(pageState)
	return resultMock
}

// NewKeyspaceMetadata builds keyspace metadata containing the given tables,
// each column carrying its kind and component index.
func NewKeyspaceMetadata(keyspaceName string, tables map[string]map[string]*gocql.ColumnMetadata) *gocql.KeyspaceMetadata {
	ksMetadata := &gocql.KeyspaceMetadata{
		Name:          keyspaceName,
		DurableWrites: true,
		StrategyClass: "NetworkTopologyStrategy",
		StrategyOptions: map[string]interface{}{
			"dc1": "3",
		},
		Tables: map[string]*gocql.TableMetadata{},
	}

	for tableName, columns := range tables {
		ksMetadata.Tables[tableName] = &gocql.TableMetadata{
			Keyspace:          keyspaceName,
			Name:              tableName,
			PartitionKey:      createKey(columns, gocql.ColumnPartitionKey),
			ClusteringColumns: createKey(columns, gocql.ColumnClusteringKey),
			Columns:           columns,
		}
	}

	return ksMetadata
}

func createKey(columns map[string]*gocql.ColumnMetadata, kind gocql.ColumnKind) []*gocql.ColumnMetadata {
	key := make([]*gocql.ColumnMetadata, 0)
	for _, column := range columns {
		if column.Kind == kind {
			key = append(key, column)
		}
	}
	sort.Slice(key, func(i, j int) bool {
		return key[i].ComponentIndex < key[j].ComponentIndex
	})
	return key
}

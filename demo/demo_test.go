package demo

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riptano/table-data-demo/config"
	"github.com/riptano/table-data-demo/db"
	"github.com/riptano/table-data-demo/log"
	"github.com/riptano/table-data-demo/people"
	"github.com/riptano/table-data-demo/store"
)

func newDemoStore(sessionMock *db.SessionMock) *store.Store {
	logger := log.NewZapLogger(zap.NewNop())
	return store.New(db.NewDbWithSession(sessionMock), "store", config.New(logger))
}

func demoMetadata() *gocql.KeyspaceMetadata {
	return db.NewKeyspaceMetadata("store", map[string]map[string]*gocql.ColumnMetadata{
		people.TableName: {
			store.ColumnPartitionKey: {
				Keyspace: "store",
				Table:    people.TableName,
				Name:     store.ColumnPartitionKey,
				Kind:     gocql.ColumnPartitionKey,
				Type:     gocql.NewNativeType(0, gocql.TypeText, ""),
			},
		},
	})
}

func demoRow(partitionKey, rowKey string) map[string]interface{} {
	etag := store.NewETag()
	id := gocql.TimeUUID()
	firstName := "Nick"
	lastName := "Glas"
	return map[string]interface{}{
		store.ColumnPartitionKey: &partitionKey,
		store.ColumnRowKey:       &rowKey,
		store.ColumnETag:         &etag,
		"id":                     &id,
		"first_name":             &firstName,
		"last_name":              &lastName,
	}
}

func TestRunWalksThroughBothRepositories(t *testing.T) {
	sessionMock := &db.SessionMock{}
	s := newDemoStore(sessionMock)

	applied := true
	sessionMock.On("KeyspaceMetadata", "store").Return(demoMetadata(), nil)
	sessionMock.
		On("ExecuteIter",
			"INSERT INTO store.people (etag, first_name, id, last_name, partition_key, row_key) "+
				"VALUES (?, ?, ?, ?, ?, ?) IF NOT EXISTS",
			mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			{"[applied]": &applied},
		}, nil), nil)
	sessionMock.
		On("ExecuteIter", "SELECT * FROM store.people", mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			demoRow("demo", "hand-written"),
		}, nil), nil)
	sessionMock.
		On("ExecuteIter", "SELECT * FROM store.people WHERE partition_key = ? AND row_key = ?",
			mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			demoRow("demo", "hand-written"),
		}, nil), nil)
	sessionMock.
		On("Execute",
			"UPDATE store.people SET etag = ?, first_name = ?, id = ?, last_name = ? "+
				"WHERE partition_key = ? AND row_key = ?",
			mock.Anything, mock.Anything).
		Return(nil)

	opts := Options{PartitionKey: "demo", FirstName: "Simon"}
	err := Run(s, opts, log.NewZapLogger(zap.NewNop()))
	require.Nil(t, err)

	// Both walkthroughs insert and both update.
	sessionMock.AssertNumberOfCalls(t, "Execute", 2)
}

func TestRunStopsOnFirstStorageFailure(t *testing.T) {
	sessionMock := &db.SessionMock{}
	s := newDemoStore(sessionMock)

	applied := false
	sessionMock.On("KeyspaceMetadata", "store").Return(demoMetadata(), nil)
	sessionMock.
		On("ExecuteIter", mock.Anything, mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			{"[applied]": &applied},
		}, nil), nil)

	opts := Options{PartitionKey: "demo", FirstName: "Simon"}
	err := Run(s, opts, log.NewZapLogger(zap.NewNop()))

	require.NotNil(t, err)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	sessionMock.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

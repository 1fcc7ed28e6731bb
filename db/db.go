package db

import (
	"errors"

	"github.com/gocql/gocql"
)

// Db represents a connection to a cluster.
type Db struct {
	session Session
}

// NewDb connects to the cluster and returns a pointer to a db. Credentials
// are optional; when provided they are passed explicitly to the underlying
// cluster configuration.
func NewDb(username string, password string, hosts ...string) (*Db, error) {
	cluster := gocql.NewCluster(hosts...)

	if username != "" || password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: username,
			Password: password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	if session == nil {
		return nil, errors.New("failed to create session")
	}

	return NewDbWithSession(&GoCqlSession{ref: session}), nil
}

// NewDbWithSession returns a db backed by an existing session. Used by tests
// to plug in a mock session.
func NewDbWithSession(session Session) *Db {
	return &Db{session: session}
}

// Keyspace retrieves the keyspace metadata.
func (db *Db) Keyspace(keyspace string) (*gocql.KeyspaceMetadata, error) {
	// We expose gocql types for now, we should wrap them in the future instead
	return db.session.KeyspaceMetadata(keyspace)
}

// Execute executes a statement without returning row results.
func (db *Db) Execute(query string, options *QueryOptions, values ...interface{}) error {
	return db.session.Execute(query, options, values...)
}

// ExecuteIter executes a statement and returns the result set.
func (db *Db) ExecuteIter(query string, options *QueryOptions, values ...interface{}) (ResultSet, error) {
	return db.session.ExecuteIter(query, options, values...)
}

package db

import (
	"errors"

	"github.com/gocql/gocql"
)

type QueryOptions struct {
	Consistency       gocql.Consistency
	SerialConsistency gocql.SerialConsistency
	PageSize          int
	PageState         []byte
}

func NewQueryOptions() *QueryOptions {
	return &QueryOptions{
		// Set defaults for queries that are not affected by consistency
		// but still need the parameters, i.e. DDL queries.
		Consistency:       gocql.LocalOne,
		SerialConsistency: gocql.LocalSerial,
	}
}

func (q *QueryOptions) WithConsistency(consistency gocql.Consistency) *QueryOptions {
	q.Consistency = consistency
	return q
}

func (q *QueryOptions) WithSerialConsistency(serialConsistency gocql.SerialConsistency) *QueryOptions {
	q.SerialConsistency = serialConsistency
	return q
}

func (q *QueryOptions) WithPageSize(pageSize int) *QueryOptions {
	q.PageSize = pageSize
	return q
}

func (q *QueryOptions) WithPageState(pageState []byte) *QueryOptions {
	q.PageState = pageState
	return q
}

type Session interface {
	// Execute executes a statement without returning row results
	Execute(query string, options *QueryOptions, values ...interface{}) error

	// ExecuteIter executes a statement and returns the result set
	ExecuteIter(query string, options *QueryOptions, values ...interface{}) (ResultSet, error)

	KeyspaceMetadata(keyspaceName string) (*gocql.KeyspaceMetadata, error)
}

// ResultSet is one fully drained page of results. PageState returns the
// opaque continuation token for the next page, empty when the result set is
// exhausted.
type ResultSet interface {
	PageState() []byte
	Values() []map[string]interface{}
}

type goCqlResultIterator struct {
	pageState []byte
	values    []map[string]interface{}
}

func (r *goCqlResultIterator) PageState() []byte {
	return r.pageState
}

func (r *goCqlResultIterator) Values() []map[string]interface{} {
	return r.values
}

func newResultIterator(iter *gocql.Iter) (*goCqlResultIterator, error) {
	columns := iter.Columns()
	scanner := iter.Scanner()

	items := make([]map[string]interface{}, 0)

	for scanner.Next() {
		row, err := mapScan(scanner, columns)
		if err != nil {
			return nil, err
		}
		items = append(items, row)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}

	return &goCqlResultIterator{
		pageState: iter.PageState(),
		values:    items,
	}, nil
}

type GoCqlSession struct {
	ref *gocql.Session
}

func NewGoCqlSession(session *gocql.Session) *GoCqlSession {
	return &GoCqlSession{ref: session}
}

func (session *GoCqlSession) Execute(query string, options *QueryOptions, values ...interface{}) error {
	_, err := session.ExecuteIter(query, options, values...)
	return err
}

func (session *GoCqlSession) ExecuteIter(query string, options *QueryOptions, values ...interface{}) (ResultSet, error) {
	q := session.ref.Query(query, values...)

	// Avoid reusing metadata from the prepared statement
	// Otherwise, we will not get the [applied] column (https://github.com/gocql/gocql/issues/612)
	// Or new columns for SELECT *
	q.NoSkipMetadata()

	if options != nil {
		q.Consistency(options.Consistency)

		if options.SerialConsistency != gocql.Serial && options.SerialConsistency != gocql.LocalSerial {
			return nil, errors.New("invalid serial consistency")
		}
		q.SerialConsistency(options.SerialConsistency)

		if options.PageSize > 0 {
			q.PageSize(options.PageSize)
		}
		if len(options.PageState) > 0 {
			q.PageState(options.PageState)
		}
	}

	return newResultIterator(q.Iter())
}

func (session *GoCqlSession) KeyspaceMetadata(keyspaceName string) (*gocql.KeyspaceMetadata, error) {
	return session.ref.KeyspaceMetadata(keyspaceName)
}

// Package people holds the sample record type and a hand-written repository
// for it, with explicit per-call column lists instead of the reflective
// mapping used by store.Repository.
package people

import (
	"github.com/gocql/gocql"

	"github.com/riptano/table-data-demo/store"
)

// TableName is the table both the hand-written and the generic repository
// operate on.
const TableName = "people"

// Person is a record in the people table. Identity is the embedded
// (partition key, row key) pair.
type Person struct {
	store.Keys
	ID        gocql.UUID `cql:"id"`
	FirstName string     `cql:"first_name"`
	LastName  string     `cql:"last_name"`
}

func (p *Person) TableName() string {
	return TableName
}

// NewPerson mints a person with a fresh id under the given identity pair.
func NewPerson(partitionKey string, rowKey string, firstName string, lastName string) *Person {
	return &Person{
		Keys: store.Keys{
			PartitionKey: partitionKey,
			RowKey:       rowKey,
		},
		ID:        gocql.TimeUUID(),
		FirstName: firstName,
		LastName:  lastName,
	}
}

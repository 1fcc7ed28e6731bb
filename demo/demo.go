// Package demo walks through the table-storage operations end to end, once
// through the hand-written people repository and once through the generic
// one.
package demo

import (
	"fmt"

	"github.com/riptano/table-data-demo/log"
	"github.com/riptano/table-data-demo/people"
	"github.com/riptano/table-data-demo/store"
)

const scanPageSize = 100

// Options tune the walkthrough. FirstName is the replacement value used by
// the update step.
type Options struct {
	PartitionKey string
	FirstName    string
}

// Run executes both walkthroughs. The first storage failure stops the run
// and propagates to the caller.
func Run(s *store.Store, opts Options, logger log.Logger) error {
	if err := runHandWritten(s, opts, logger); err != nil {
		return err
	}
	return runGeneric(s, opts, logger)
}

func runHandWritten(s *store.Store, opts Options, logger log.Logger) error {
	logger.Info("starting hand-written walkthrough", "table", people.TableName)

	repo := people.NewRepo(s)

	created, err := repo.EnsureTable()
	if err != nil {
		return err
	}
	logger.Info("table ensured", "created", created)

	person := people.NewPerson(opts.PartitionKey, "hand-written", "Nick", "Glas")
	if err := repo.Insert(person); err != nil {
		return err
	}
	logger.Info("person inserted",
		"rowKey", person.RowKey,
		"etag", person.ETag)

	all, err := repo.ScanAll(scanPageSize)
	if err != nil {
		return err
	}
	logger.Info("table scanned", "records", len(all))

	fetched, err := repo.Get(person.PartitionKey, person.RowKey)
	if err != nil {
		return err
	}
	if fetched == nil {
		return fmt.Errorf("person %s/%s not found after insert", person.PartitionKey, person.RowKey)
	}
	logger.Info("person fetched",
		"firstName", fetched.FirstName,
		"lastName", fetched.LastName)

	updated, err := repo.UpdateFirstName(person.PartitionKey, person.RowKey, opts.FirstName)
	if err != nil {
		return err
	}
	logger.Info("person updated",
		"firstName", updated.FirstName,
		"etag", updated.ETag)

	return nil
}

func runGeneric(s *store.Store, opts Options, logger log.Logger) error {
	repo, err := store.NewRepository[*people.Person](s)
	if err != nil {
		return err
	}
	logger.Info("starting generic walkthrough", "table", repo.Table())

	created, err := repo.EnsureTable()
	if err != nil {
		return err
	}
	logger.Info("table ensured", "created", created)

	person := people.NewPerson(opts.PartitionKey, "generic", "Nick", "Glas")
	if err := repo.Insert(person); err != nil {
		return err
	}
	logger.Info("person inserted",
		"rowKey", person.RowKey,
		"etag", person.ETag)

	all, err := repo.ScanAll(scanPageSize)
	if err != nil {
		return err
	}
	logger.Info("table scanned", "records", len(all))

	fetched, err := repo.Get(person.PartitionKey, person.RowKey)
	if err != nil {
		return err
	}
	if fetched == nil {
		return fmt.Errorf("person %s/%s not found after insert", person.PartitionKey, person.RowKey)
	}
	logger.Info("person fetched",
		"firstName", fetched.FirstName,
		"lastName", fetched.LastName)

	source := &people.Person{
		Keys:      fetched.Keys,
		ID:        fetched.ID,
		FirstName: opts.FirstName,
		LastName:  fetched.LastName,
	}
	updated, err := repo.Update(person.PartitionKey, person.RowKey, source)
	if err != nil {
		return err
	}
	logger.Info("person updated",
		"firstName", updated.FirstName,
		"etag", updated.ETag)

	return nil
}

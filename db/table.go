package db

import (
	"fmt"

	"github.com/gocql/gocql"
)

type CreateTableInfo struct {
	Keyspace       string
	Table          string
	PartitionKeys  []*gocql.ColumnMetadata
	ClusteringKeys []*gocql.ColumnMetadata
	Values         []*gocql.ColumnMetadata
	IfNotExists    bool
}

func (db *Db) CreateTable(info *CreateTableInfo, options *QueryOptions) (bool, error) {
	columns := ""
	primaryKeys := ""
	clusteringOrder := ""

	for _, c := range info.PartitionKeys {
		columns += fmt.Sprintf(`"%s" %s, `, c.Name, c.Type)
		primaryKeys += fmt.Sprintf(`, "%s"`, c.Name)
	}

	if info.ClusteringKeys != nil {
		primaryKeys = fmt.Sprintf("(%s)", primaryKeys[2:])

		for _, c := range info.ClusteringKeys {
			columns += fmt.Sprintf(`"%s" %s, `, c.Name, c.Type)
			primaryKeys += fmt.Sprintf(`, "%s"`, c.Name)
			order := c.ClusteringOrder
			if order == "" {
				order = "ASC"
			}
			clusteringOrder += fmt.Sprintf(`, "%s" %s`, c.Name, order)
		}
	} else {
		primaryKeys = primaryKeys[2:]
	}

	for _, c := range info.Values {
		columns += fmt.Sprintf(`"%s" %s, `, c.Name, c.Type)
	}

	ifNotExists := ""
	if info.IfNotExists {
		ifNotExists = "IF NOT EXISTS "
	}

	query := fmt.Sprintf(`CREATE TABLE %s"%s"."%s" (%sPRIMARY KEY (%s))`,
		ifNotExists, info.Keyspace, info.Table, columns, primaryKeys)

	if clusteringOrder != "" {
		query += fmt.Sprintf(" WITH CLUSTERING ORDER BY (%s)", clusteringOrder[2:])
	}

	err := db.session.Execute(query, options)
	return err == nil, err
}

// TableExists reports whether the table is present in the keyspace schema.
func (db *Db) TableExists(keyspace string, table string) (bool, error) {
	ksMetadata, err := db.session.KeyspaceMetadata(keyspace)
	if err != nil {
		return false, err
	}

	_, found := ksMetadata.Tables[table]
	return found, nil
}

package config

import "github.com/iancoleman/strcase"

// NamingConvention maps Go-side entity and field names to CQL identifiers
// and JSON field names.
type NamingConvention interface {
	ToCQLColumn(fieldName string) string
	ToCQLTable(entityName string) string
	ToJSONField(columnName string) string
}

type defaultNaming struct{}

// NewDefaultNaming returns the snake_case/camelCase convention used when no
// custom convention is configured.
func NewDefaultNaming() NamingConvention {
	return &defaultNaming{}
}

func (n *defaultNaming) ToCQLColumn(fieldName string) string {
	return strcase.ToSnake(fieldName)
}

func (n *defaultNaming) ToCQLTable(entityName string) string {
	return strcase.ToSnake(entityName)
}

func (n *defaultNaming) ToJSONField(columnName string) string {
	return strcase.ToLowerCamel(columnName)
}

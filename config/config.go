package config

import (
	"github.com/riptano/table-data-demo/log"
)

// Config carries the cross-cutting collaborators that most packages need.
type Config interface {
	Naming() NamingConvention
	Logger() log.Logger
}

type config struct {
	naming NamingConvention
	logger log.Logger
}

func New(logger log.Logger) Config {
	return &config{
		naming: NewDefaultNaming(),
		logger: logger,
	}
}

func (c *config) Naming() NamingConvention {
	return c.naming
}

func (c *config) Logger() log.Logger {
	return c.logger
}

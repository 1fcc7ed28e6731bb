package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds the connection values required to reach the database. They
// are passed explicitly into the client constructor, there is no package
// level connection state.
type Settings struct {
	Hosts    []string
	Keyspace string
	Username string
	Password string
}

// requiredSettings is the fixed set of keys that must be non-empty for
// startup to proceed.
var requiredSettings = []string{"hosts", "keyspace"}

// InvalidSettingError marks a configuration problem. It is fatal at startup
// and distinct from storage errors raised later on.
type InvalidSettingError struct {
	Key    string
	Reason string
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid setting %q: %s", e.Key, e.Reason)
}

// SettingsFromViper reads and validates the connection settings.
func SettingsFromViper(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Hosts:    v.GetStringSlice("hosts"),
		Keyspace: v.GetString("keyspace"),
		Username: v.GetString("username"),
		Password: v.GetString("password"),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that every required setting is non-empty and that
// credentials come as a complete pair.
func (s *Settings) Validate() error {
	for _, key := range requiredSettings {
		switch key {
		case "hosts":
			if len(s.Hosts) == 0 {
				return &InvalidSettingError{Key: key, Reason: "at least one host is required"}
			}
			for _, host := range s.Hosts {
				if host == "" {
					return &InvalidSettingError{Key: key, Reason: "hosts must not be empty"}
				}
			}
		case "keyspace":
			if s.Keyspace == "" {
				return &InvalidSettingError{Key: key, Reason: "value must not be empty"}
			}
		}
	}

	if (s.Username == "") != (s.Password == "") {
		return &InvalidSettingError{Key: "username", Reason: "username and password must be provided together"}
	}

	return nil
}

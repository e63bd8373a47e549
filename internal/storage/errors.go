package storage

import "fmt"

// ConfigError reports a configuration value that was missing or invalid
// and has been replaced with its default.
type ConfigError struct {
	Path   string
	Key    string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	message := e.Reason
	if e.Key != "" {
		message = fmt.Sprintf("%s: %s", e.Key, e.Reason)
	}
	if e.Err != nil {
		message = fmt.Sprintf("%s: %v", message, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed read or write of a data file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

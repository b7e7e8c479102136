package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Version is the ODBC behaviour an Environment asks for.
type Version int

const (
	ODBC2 Version = 2
	ODBC3 Version = 3
)

func (v Version) String() string {
	switch v {
	case ODBC2:
		return "2.x"
	case ODBC3:
		return "3.x"
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// Environment is the top level handle every Driver belongs to. It must
// outlive the connections opened through it.
type Environment struct {
	version Version

	mu      sync.Mutex
	drivers map[*Driver]struct{}
}

// NewEnvironment returns an environment for the given ODBC version.
func NewEnvironment(version Version) (*Environment, error) {
	if version != ODBC2 && version != ODBC3 {
		return nil, fmt.Errorf("%w: version %s", ErrEnvironment, version)
	}
	return &Environment{
		version: version,
		drivers: make(map[*Driver]struct{}),
	}, nil
}

func (env *Environment) Version() Version {
	return env.version
}

func (env *Environment) add(driver *Driver) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.drivers[driver] = struct{}{}
}

func (env *Environment) remove(driver *Driver) {
	env.mu.Lock()
	defer env.mu.Unlock()
	delete(env.drivers, driver)
}

func (env *Environment) snapshot() []*Driver {
	env.mu.Lock()
	defer env.mu.Unlock()
	drivers := make([]*Driver, 0, len(env.drivers))
	for driver := range env.drivers {
		drivers = append(drivers, driver)
	}
	return drivers
}

// Commit commits the pending transaction of every connection opened through
// this environment.
func (env *Environment) Commit(ctx context.Context) error {
	var errs []error
	for _, driver := range env.snapshot() {
		errs = append(errs, driver.Commit(ctx))
	}
	return errors.Join(errs...)
}

// Rollback rolls back the pending transaction of every connection opened
// through this environment.
func (env *Environment) Rollback(ctx context.Context) error {
	var errs []error
	for _, driver := range env.snapshot() {
		errs = append(errs, driver.Rollback(ctx))
	}
	return errors.Join(errs...)
}

// Close closes every connection still open.
func (env *Environment) Close() error {
	var errs []error
	for _, driver := range env.snapshot() {
		errs = append(errs, driver.Close())
	}
	return errors.Join(errs...)
}

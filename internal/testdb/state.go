package testdb

import "fmt"

// State is the lifecycle position of a provisioned database.
type State int

const (
	Unconfigured State = iota
	NameAssigned
	Created
	Migrated
	PoolReady
	Closed
	Dropped
)

var stateNames = [...]string{
	Unconfigured: "unconfigured",
	NameAssigned: "name_assigned",
	Created:      "created",
	Migrated:     "migrated",
	PoolReady:    "pool_ready",
	Closed:       "closed",
	Dropped:      "dropped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

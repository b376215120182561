// Package id issues the time-ordered int64 identifiers used for posts and reports.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new globally unique int64 ID.
func New() int64 {
	return node.Generate().Int64()
}

// Generator yields ids. Services take one so tests can supply deterministic ids.
type Generator func() int64

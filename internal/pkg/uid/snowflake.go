package uid

import (
	"errors"
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// ErrNodeOutOfRange is returned when an explicit node id exceeds snowflake's 10 bits.
var ErrNodeOutOfRange = errors.New("uid: snowflake node must be between 0 and 1023")

// Snowflake generates time-ordered int64 ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator. A negative node derives the node id from
// the hostname, so replicas of one deployment get distinct ids.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 {
		node = hostNode()
	}
	if node > 1023 {
		return nil, ErrNodeOutOfRange
	}

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

func hostNode() int64 {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return int64(h.Sum32() % 1024)
}

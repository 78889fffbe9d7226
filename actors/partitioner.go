package actors

import (
	"crypto/sha256"
	"math/big"
)

// Partitioner assigns actor IDs to partitions
type Partitioner interface {
	// Get returns the partition for a given actorID
	Get(actorID string) (partition uint32)
}

// HashModPartitioner implements a Partitioner that computes partition by
// hashing the actor ID and computing the modulus of the number of partitions
type HashModPartitioner struct {
	numPartitions uint32
}

// NewHashModPartitioner returns a HashModPartitioner
func NewHashModPartitioner(numPartitions uint32) *HashModPartitioner {
	if numPartitions == 0 {
		numPartitions = 1
	}
	return &HashModPartitioner{numPartitions: numPartitions}
}

// Get returns the partition for a given actorID
func (d HashModPartitioner) Get(actorID string) uint32 {
	hash := sha256.Sum256([]byte(actorID))
	intHash := new(big.Int).SetBytes(hash[:])
	intHash.Mod(intHash, big.NewInt(int64(d.numPartitions)))
	return uint32(intHash.Int64())
}

package actors

import "sync"

// actorMap holds live mailboxes split over independently locked partitions,
// so unrelated actors never contend on one lock
type actorMap struct {
	partitioner Partitioner
	shards      []*actorShard
}

type actorShard struct {
	actors map[string]*Mailbox
	mtx    sync.Mutex
}

func newActorMap(partitions uint32) *actorMap {
	if partitions == 0 {
		partitions = 1
	}
	shards := make([]*actorShard, partitions)
	for i := range shards {
		shards[i] = &actorShard{actors: make(map[string]*Mailbox)}
	}
	return &actorMap{
		partitioner: NewHashModPartitioner(partitions),
		shards:      shards,
	}
}

func (x *actorMap) shard(id string) *actorShard {
	return x.shards[x.partitioner.Get(id)]
}

// Get returns the mailbox of a live actor
func (x *actorMap) Get(id string) (*Mailbox, bool) {
	shard := x.shard(id)
	shard.mtx.Lock()
	defer shard.mtx.Unlock()
	mailbox, exists := shard.actors[id]
	return mailbox, exists
}

// GetOrCreate returns the mailbox for id, building it with create when absent.
// Nothing is stored when create fails.
func (x *actorMap) GetOrCreate(id string, create func() (*Mailbox, error)) (*Mailbox, error) {
	shard := x.shard(id)
	shard.mtx.Lock()
	defer shard.mtx.Unlock()
	if mailbox, exists := shard.actors[id]; exists {
		return mailbox, nil
	}
	mailbox, err := create()
	if err != nil {
		return nil, err
	}
	shard.actors[id] = mailbox
	return mailbox, nil
}

// Delete removes id only while it still maps to the given mailbox
func (x *actorMap) Delete(id string, mailbox *Mailbox) {
	shard := x.shard(id)
	shard.mtx.Lock()
	defer shard.mtx.Unlock()
	if shard.actors[id] == mailbox {
		delete(shard.actors, id)
	}
}

// List returns a snapshot of every live mailbox
func (x *actorMap) List() []*Mailbox {
	var out []*Mailbox
	for _, shard := range x.shards {
		shard.mtx.Lock()
		for _, mailbox := range shard.actors {
			out = append(out, mailbox)
		}
		shard.mtx.Unlock()
	}
	return out
}

// Len returns the number of live actors
func (x *actorMap) Len() int {
	count := 0
	for _, shard := range x.shards {
		shard.mtx.Lock()
		count += len(shard.actors)
		shard.mtx.Unlock()
	}
	return count
}

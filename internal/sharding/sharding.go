package sharding

import "github.com/cespare/xxhash/v2"

// ShardRouter spreads companies over database shards. All data of one
// company lives on the same shard.
type ShardRouter struct {
	ShardCount int // Number of shards
}

func NewShardRouter(shardCount int) *ShardRouter {
	if shardCount < 1 {
		shardCount = 1
	}
	return &ShardRouter{ShardCount: shardCount}
}

func (r *ShardRouter) GetShard(companyID string) int {
	return int(xxhash.Sum64String(companyID) % uint64(r.ShardCount))
}

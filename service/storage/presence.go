package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// presence key: im:presence:<user>
// value 是节点ID，TTL 控制在线有效期
func presenceKey(user string) string { return "im:presence:" + user }

// Presence 在线状态镜像。注册表是权威，redis 只用于
// 跨节点的在线查询；写失败不影响握手。
type Presence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresence(rdb *redis.Client, ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Presence{rdb: rdb, ttl: ttl}
}

// Online 标记用户在线并续期
func (p *Presence) Online(user, nodeID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.rdb.Set(ctx, presenceKey(user), nodeID, p.ttl).Err()
}

// Offline 主动下线（删除key）
func (p *Presence) Offline(user string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.rdb.Del(ctx, presenceKey(user)).Err()
}

// Lookup 查询用户是否在线及所在节点
func (p *Presence) Lookup(user string) (nodeID string, online bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	val, err := p.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

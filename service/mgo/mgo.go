package mgo

import (
	"context"
	"time"

	"SupportChat/tools/errs"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI         string
	Database    string
	MaxPoolSize uint64
}

// Connect 建连并 ping 校验，返回业务库句柄。
func Connect(ctx context.Context, cfg Config) (*mongo.Database, error) {
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 20
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, errs.WrapMsg(err, "connect mongo", "uri", cfg.URI)
	}
	if err := cli.Ping(cctx, readpref.Primary()); err != nil {
		return nil, errs.WrapMsg(err, "ping mongo", "uri", cfg.URI)
	}
	return cli.Database(cfg.Database), nil
}

package global

import (
	"time"

	"SupportChat/tools/errs"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig 全部来自环境变量，带默认值。
type AppConfig struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	NodeID   string `envconfig:"NODE_ID" default:"support_gw-1"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o="`
	JWTAlg    string        `envconfig:"JWT_ALG" default:"HS256"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"2h"`

	MongoURI     string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB      string `envconfig:"MONGO_DB" default:"supportChat"`
	MongoMaxPool uint64 `envconfig:"MONGO_MAX_POOL" default:"20"`

	// 为空则不启用 presence 镜像
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	PresenceTTL   time.Duration `envconfig:"PRESENCE_TTL" default:"2m"`

	// 为空则不启用跨节点事件中继
	NATSURL     string `envconfig:"NATS_URL" default:""`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"im.message.events"`

	SnowflakeNode int64 `envconfig:"SNOWFLAKE_NODE" default:"1"`
}

var Global AppConfig

func Load() (*AppConfig, error) {
	if err := envconfig.Process("", &Global); err != nil {
		return nil, errs.WrapMsg(err, "load config")
	}
	return &Global, nil
}

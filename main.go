package main

import (
	"context"

	"SupportChat/global"
	"SupportChat/logger"
	mid "SupportChat/middleware"
	midsec "SupportChat/middleware/security"
	message "SupportChat/module/message"
	msgmodel "SupportChat/module/message/model"
	msgservice "SupportChat/module/message/service"
	"SupportChat/service/chat"
	"SupportChat/service/chat/handlers"
	"SupportChat/service/eventbus"
	"SupportChat/service/mgo"
	"SupportChat/service/relay"
	"SupportChat/service/storage"
	"SupportChat/tools/ids"
	"SupportChat/tools/security"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := global.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		return
	}
	ids.SetNodeID(cfg.SnowflakeNode)

	jwtOpts := security.Options{Secret: []byte(cfg.JWTSecret), Alg: cfg.JWTAlg, TTL: cfg.JWTTTL}

	// 1) 存储
	db, err := mgo.Connect(context.Background(), mgo.Config{
		URI:         cfg.MongoURI,
		Database:    cfg.MongoDB,
		MaxPoolSize: cfg.MongoMaxPool,
	})
	if err != nil {
		logger.Errorf("mongo: %v", err)
		return
	}
	repo := msgmodel.NewRepo(db)

	var presence *storage.Presence
	if cfg.RedisAddr != "" {
		rdb, err := storage.NewRedis(storage.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Errorf("redis: %v", err)
			return
		}
		presence = storage.NewPresence(rdb, cfg.PresenceTTL)
	}

	// 2) 总线 + 生命周期服务 + 事件桥
	bus := eventbus.New()
	msgSvc := msgservice.NewMessageService(repo, bus)

	registry := chat.NewRegistry()
	rooms := chat.NewRooms()
	bridge := chat.NewBridge(rooms)
	bridge.Register(bus)

	// 3) 跨节点事件中继（可选）
	if cfg.NATSURL != "" {
		rl, err := relay.Connect(cfg.NATSURL, cfg.NATSSubject, cfg.NodeID)
		if err != nil {
			logger.Errorf("nats: %v", err)
			return
		}
		defer rl.Close()
		rl.BindBus(bus)
		if err := rl.Subscribe(bridge.Deliver); err != nil {
			logger.Errorf("nats subscribe: %v", err)
			return
		}
	}

	// 4) 网关与信令
	disp := chat.NewDispatcher()
	handlers.RegisterAll(disp)
	gw := chat.NewGateway(cfg.NodeID, jwtOpts, registry, rooms, disp, msgSvc, presence)

	// 5) HTTP + WebSocket
	mid.ConfigAuth(midsec.DefaultOptions(jwtOpts))
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", gw.HandleWS) // e.g. ws://localhost:8080/ws?token=xxx

	msgHandler := message.NewHandler(msgSvc)
	mid.POST(r, "/api/messages", msgHandler.HandlerCreate, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/api/messages/:id/close", msgHandler.HandlerClose, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/api/messages/:id/read", msgHandler.HandlerMarkRead, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/messages", msgHandler.HandlerList, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/stats", msgHandler.HandlerStats, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/messages/:id", msgHandler.HandlerGet, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/api/customers", msgHandler.HandlerCustomers, mid.RouteOpt{IsAuth: true})

	logger.Infof("[HTTP] Listening on %s node=%s", cfg.HTTPAddr, cfg.NodeID)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Errorf("HTTP server failed: %v", err)
	}
}

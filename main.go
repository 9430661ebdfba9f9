package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"arena-service/config"
	"arena-service/database"
	"arena-service/services"
	"arena-service/web"
)

func main() {
	log.Println("Starting Arena Scoring Service...")

	// 加载配置
	cfg := config.Load()

	// 连接数据库
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 运行数据库迁移
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database connected and migrated")

	// 创建存储层
	matchStore := services.NewPostgresMatchStore(db)
	teamStore := services.NewPostgresTeamStore(db)

	// 创建事件总线
	broker := services.NewInMemoryBroker(cfg.ClientSendBuffer)
	defer broker.Close()

	// 创建WebSocket Hub并接入事件总线
	wsHub := web.NewHub(cfg.ClientSendBuffer)
	go wsHub.Run()

	hubEvents, err := broker.Consume()
	if err != nil {
		log.Fatalf("Failed to subscribe hub to broker: %v", err)
	}
	go func() {
		for ev := range hubEvents {
			wsHub.Broadcast(ev)
		}
	}()

	// 可选: 事件外发到 AMQP
	if cfg.AMQPURL != "" {
		amqpEvents, err := broker.Consume()
		if err != nil {
			log.Fatalf("Failed to subscribe AMQP publisher to broker: %v", err)
		}
		publisher := services.NewAMQPPublisher(cfg)
		if err := publisher.Start(); err != nil {
			log.Fatalf("AMQP publisher error: %v", err)
		}
		defer publisher.Stop()
		go publisher.Run(amqpEvents)
		log.Println("AMQP publisher started")
	}

	// 创建运维通知器
	notifier := services.NewWebhookNotifier(cfg.WebhookURL)
	notifier.NotifyServiceStart(cfg.Port, cfg.Environment)

	// 创建计分服务
	scoring := services.NewScoringService(matchStore, teamStore, broker)
	scoring.SetNotifier(notifier)

	// 启动Web服务器
	server := web.NewServer(cfg, teamStore, matchStore, scoring, wsHub)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			notifier.NotifyError("Web Server", err.Error())
			log.Fatalf("Web server error: %v", err)
		}
	}()

	log.Printf("Web server started on port %s", cfg.Port)

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Service stopped")
}

package repo

import (
	"GoGallery/config"
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis initializes the Redis client.
func InitRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		log.Fatal("init redis fail ", err)
	}
	log.Println("init redis success")
	Redis = client
}

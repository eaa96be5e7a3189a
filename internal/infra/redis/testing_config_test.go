package redis

import "physical-ai-textbook/internal/config"

func RedisTestConfig() config.RedisConfig {
	return config.RedisConfig{
		URL: "localhost:6379",
		DB:  1,
	}
}

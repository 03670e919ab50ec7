package config

import (
	"github.com/redis/go-redis/v9"
	"github.com/zachmann/go-utils/duration"
)

type cachingConf struct {
	RedisAddr   string                  `yaml:"redis_addr"`
	Username    string                  `yaml:"username"`
	Password    string                  `yaml:"password"`
	RedisDB     int                     `yaml:"redis_db"`
	DialTimeout duration.DurationOption `yaml:"dial_timeout"`
}

// RedisOptions returns the redis.Options for the configured server; nil if
// no redis is configured
func (c cachingConf) RedisOptions() *redis.Options {
	if c.RedisAddr == "" {
		return nil
	}
	return &redis.Options{
		Addr:        c.RedisAddr,
		Username:    c.Username,
		Password:    c.Password,
		DB:          c.RedisDB,
		DialTimeout: c.DialTimeout.Duration(),
	}
}

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MISSIONBOARD"

type AppConfig struct {
	v *viper.Viper
}

func NewAppConfig() *AppConfig {
	c := &AppConfig{v: viper.New()}

	setDefaults(c.v)

	return c
}

// Load reads the first config file that can be parsed. Missing files are
// not an error.
func (c *AppConfig) Load(filename ...string) bool {
	for _, name := range filename {
		c.v.SetConfigFile(name)

		if err := c.v.ReadInConfig(); err != nil {
			slog.Info(fmt.Sprintf("error loading config: %s", err.Error()))
			continue
		}

		return true
	}

	return false
}

// LoadEnv maps MISSIONBOARD_JWT_SECRET to jwt.secret and so on.
func (c *AppConfig) LoadEnv() {
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()
}

func (c *AppConfig) Bool(key string) bool {
	return c.v.GetBool(key)
}

func (c *AppConfig) String(key string) string {
	return c.v.GetString(key)
}

func (c *AppConfig) Int(key string) int {
	return c.v.GetInt(key)
}

func (c *AppConfig) Duration(key string) time.Duration {
	return c.v.GetDuration(key)
}

func (c *AppConfig) Set(key string, v any) {
	c.v.Set(key, v)
}

func (c *AppConfig) APIAddr() string {
	return c.v.GetString("api_addr")
}

func (c *AppConfig) DB() string {
	return c.v.GetString("db")
}

func (c *AppConfig) Debug() bool {
	return c.v.GetBool("debug")
}

func (c *AppConfig) UsersFile() string {
	return c.v.GetString("users_file")
}

func (c *AppConfig) JWTSecret() string {
	return c.v.GetString("jwt.secret")
}

func (c *AppConfig) JWTTTL() time.Duration {
	return c.v.GetDuration("jwt.ttl")
}

func (c *AppConfig) BodyLimit() int {
	return c.v.GetInt("http.body_limit")
}

func (c *AppConfig) HTTPTimeout() time.Duration {
	return c.v.GetDuration("http.timeout")
}

func (c *AppConfig) Metrics() bool {
	return c.v.GetBool("metrics")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_addr", ":8080")
	v.SetDefault("db", "missionboard.sqlite")
	v.SetDefault("debug", false)
	v.SetDefault("users_file", "brawlers.yml")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", time.Hour*24*7)

	v.SetDefault("http.body_limit", 10*1024*1024)
	v.SetDefault("http.timeout", time.Second*30)

	v.SetDefault("metrics", true)
}

// server/config/config.go
package config

import (
	"github.com/spf13/viper"
)

// --- Sub-structs mirroring the YAML layout ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// AuthConfig selects the identity backend once at startup.
// Mode is "direct" (email/password against the users collection) or
// "session" (delegated to an upstream session endpoint).
type AuthConfig struct {
	Mode            string `mapstructure:"mode"`
	SessionEndpoint string `mapstructure:"sessionEndpoint"`
	AdminUsername   string `mapstructure:"adminUsername"`
	AdminPassword   string `mapstructure:"adminPassword"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// MapConfig is handed to the dashboard client as-is: tile source plus the
// initial viewport.
type MapConfig struct {
	TileURL     string  `mapstructure:"tileURL"`
	Attribution string  `mapstructure:"attribution"`
	CenterLat   float64 `mapstructure:"centerLat"`
	CenterLon   float64 `mapstructure:"centerLon"`
	Zoom        int     `mapstructure:"zoom"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// --- Main Config struct ---

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Redis  RedisConfig  `mapstructure:"redis"`
	S3     S3Config     `mapstructure:"s3"`
	Map    MapConfig    `mapstructure:"map"`
	Log    LogConfig    `mapstructure:"log"`
}

// LoadConfig reads the YAML config file and overrides values from the
// environment.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("auth.mode", "AUTH_MODE")
	viper.BindEnv("auth.sessionEndpoint", "AUTH_SESSION_ENDPOINT")
	viper.BindEnv("auth.adminUsername", "AUTH_ADMIN_USERNAME")
	viper.BindEnv("auth.adminPassword", "AUTH_ADMIN_PASSWORD")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	viper.BindEnv("log.file", "LOG_FILE")
	viper.BindEnv("log.level", "LOG_LEVEL")

	// Defaults keep a bare environment workable: direct auth on a local
	// Mongo, OSM tiles centered on the Valdemoro yard.
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.dbName", "dispatch")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("auth.mode", "direct")
	viper.SetDefault("map.tileURL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	viper.SetDefault("map.attribution", "© OpenStreetMap contributors")
	viper.SetDefault("map.centerLat", 40.1919)
	viper.SetDefault("map.centerLon", -3.6806)
	viper.SetDefault("map.zoom", 15)
	viper.SetDefault("log.file", "./logs/app.log")
	viper.SetDefault("log.level", "info")

	// If the file is missing, Viper just uses environment variables.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}

package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8990"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"safetrip"`

	// Redis 配置（历史记录、联系人、节奏设置、worker 幂等标记）
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"strip"`

	// RabbitMQ 配置（通知投递队列）
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// 短信服务配置
	// 注意：AccessKey 和 SecretKey 通过阿里云 SDK 的环境变量自动获取
	// 需要设置环境变量：ALIBABA_CLOUD_ACCESS_KEY_ID 和 ALIBABA_CLOUD_ACCESS_KEY_SECRET
	SMSProvider     string `env:"SMS_PROVIDER" envDefault:"mock"` // aliyun, mock
	SMSSignName     string `env:"SMS_SIGN_NAME"`
	SMSTemplateCode string `env:"SMS_TEMPLATE_CODE"` // 通用文本模板，参数为 {"content": "..."}

	// 行程监护配置
	JourneyCheckInIntervalMinutes int `env:"JOURNEY_CHECKIN_INTERVAL_MINUTES" envDefault:"10"`
	JourneyGraceMinutes           int `env:"JOURNEY_GRACE_MINUTES" envDefault:"5"`
	JourneyHistoryMaxEntries      int `env:"JOURNEY_HISTORY_MAX_ENTRIES" envDefault:"20"`
	ContactMaxEntries             int `env:"CONTACT_MAX_ENTRIES" envDefault:"10"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"localhost:4317"`
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JourneyGraceMinutes <= 0 {
		log.Fatal("JOURNEY_GRACE_MINUTES must be positive")
	}

	if Cfg.JourneyCheckInIntervalMinutes <= 0 {
		log.Fatal("JOURNEY_CHECKIN_INTERVAL_MINUTES must be positive")
	}

	if Cfg.JourneyHistoryMaxEntries <= 0 {
		log.Fatal("JOURNEY_HISTORY_MAX_ENTRIES must be positive")
	}

	if Cfg.SMSProvider == "aliyun" {
		if Cfg.SMSSignName == "" {
			log.Printf("WARN: SMS_SIGN_NAME is not set, SMS service may not work properly")
		}
		if Cfg.SMSTemplateCode == "" {
			log.Printf("WARN: SMS_TEMPLATE_CODE is not set, SMS service may not work properly")
		}
	}
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

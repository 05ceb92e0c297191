package config

// Config 配置主体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	GCS      GCSConfig      `mapstructure:"gcs"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logstash LogstashConfig `mapstructure:"logstash"`
	Gallery  GalleryConfig  `mapstructure:"gallery"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	PublicBaseURL  string   `mapstructure:"public_base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig 数据库配置 (主持人账号)
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	ExternalUseSSL   bool   `mapstructure:"external_use_ssl"`
}

// FirebaseConfig Firebase 项目配置
type FirebaseConfig struct {
	ProjectID        string `mapstructure:"project_id"`
	CredentialsFile  string `mapstructure:"credentials_file"`
	APIKey           string `mapstructure:"api_key"`
	APIKeySecretName string `mapstructure:"api_key_secret_name"`
	IdentityEndpoint string `mapstructure:"identity_endpoint"`
}

// GCSConfig 对象存储配置
type GCSConfig struct {
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type KafkaConfig struct {
	Enable             bool                `mapstructure:"enable"`
	Brokers            []string            `mapstructure:"brokers"`
	Sasl               SaslConfig          `mapstructure:"sasl"`
	Consumer           ConsumerConfig      `mapstructure:"consumer"`
	MediaEventConsumer KafkaConsumerTarget `mapstructure:"media_event_consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaConsumerTarget struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// LogstashConfig 远程日志
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
	Level   string `mapstructure:"level"`
}

// GalleryConfig 相册视图配置
type GalleryConfig struct {
	PageSize        int    `mapstructure:"page_size"`
	DefaultUploader string `mapstructure:"default_uploader"`
	DocumentBackend string `mapstructure:"document_backend"`
	BlobBackend     string `mapstructure:"blob_backend"`
	ViewIdleMinutes int    `mapstructure:"view_idle_minutes"`
}

// UploadConfig 访客上传限制
type UploadConfig struct {
	MaxFiles          int      `mapstructure:"max_files"`
	MaxPhotoBytes     int64    `mapstructure:"max_photo_bytes"`
	MaxVideoBytes     int64    `mapstructure:"max_video_bytes"`
	PhotoTypes        []string `mapstructure:"photo_types"`
	VideoTypes        []string `mapstructure:"video_types"`
	ThumbnailWidth    int      `mapstructure:"thumbnail_width"`
	Concurrency       int64    `mapstructure:"concurrency"`
	MaxUploaderLength int      `mapstructure:"max_uploader_length"`
}

// AuthConfig 主持人鉴权
type AuthConfig struct {
	Provider          string `mapstructure:"provider"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	JWTSecretName     string `mapstructure:"jwt_secret_name"`
	TokenTTLHours     int    `mapstructure:"token_ttl_hours"`
	BootstrapEmail    string `mapstructure:"bootstrap_email"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

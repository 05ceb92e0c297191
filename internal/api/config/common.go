package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

const (
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
	BackendMemory    = "memory"
	BackendGCS       = "gcs"
	BackendMinIO     = "minio"
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	cfg, err := load(v)
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// LoadFile 从指定路径加载配置，不修改 Cfg
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("GALLERY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logstash.level", "info")

	v.SetDefault("gallery.page_size", 10)
	v.SetDefault("gallery.default_uploader", "Unknown")
	v.SetDefault("gallery.document_backend", BackendFirestore)
	v.SetDefault("gallery.blob_backend", BackendGCS)
	v.SetDefault("gallery.view_idle_minutes", 30)

	v.SetDefault("upload.max_files", 50)
	v.SetDefault("upload.max_photo_bytes", 10<<20)
	v.SetDefault("upload.max_video_bytes", 200<<20)
	v.SetDefault("upload.photo_types", []string{"image/jpeg", "image/png", "image/webp"})
	v.SetDefault("upload.video_types", []string{"video/mp4", "video/quicktime", "video/webm"})
	v.SetDefault("upload.thumbnail_width", 320)
	v.SetDefault("upload.concurrency", 4)
	v.SetDefault("upload.max_uploader_length", 64)

	v.SetDefault("auth.provider", ProviderLocal)
	v.SetDefault("auth.token_ttl_hours", 24)

	v.SetDefault("gcs.public_base_url", "https://storage.googleapis.com")
	v.SetDefault("firebase.identity_endpoint", "https://identitytoolkit.googleapis.com")

	v.SetDefault("kafka.consumer.session_timeout", 10)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 5)
	v.SetDefault("kafka.media_event_consumer.topic", "gallery.media.events")
	v.SetDefault("kafka.media_event_consumer.group_id", "gallery-uploader-stats")

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}

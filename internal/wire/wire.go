package wire

import (
	"EventGallery/internal/api"
	"EventGallery/internal/api/config"
	"EventGallery/internal/api/handler"
	"EventGallery/internal/gallery"
	"EventGallery/internal/job"
	"EventGallery/internal/pkg/auth"
	"EventGallery/internal/pkg/blob"
	"EventGallery/internal/pkg/cron"
	"EventGallery/internal/pkg/firebase"
	"EventGallery/internal/pkg/gcs"
	"EventGallery/internal/pkg/kafka"
	"EventGallery/internal/pkg/minio"
	"EventGallery/internal/pkg/redis"
	"EventGallery/internal/repository"
	"EventGallery/internal/service"
	"fmt"
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// 上传请求体在文件上限之外留给表单字段的余量
const multipartOverhead = 1 << 20

// Infra main 中按配置建立的外部连接，未启用的为空
type Infra struct {
	DB    *gorm.DB
	Mongo *mongo.Database
}

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
	Publisher    kafka.MediaEventPublisher
	Registry     *gallery.Registry
}

func BuildApplication(infra *Infra, cfg *config.Config) (*ApplicationContainer, error) {
	store, err := newMediaStore(infra, cfg)
	if err != nil {
		return nil, err
	}
	blobs, err := newBlobStore(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := newAuthProvider(infra, cfg)
	if err != nil {
		return nil, err
	}

	var statsRepo repository.UploaderStatsRepo
	if rdb := redis.GetRdbClient(); rdb != nil {
		statsRepo = repository.NewUploaderStatsRepo(rdb)
	}

	var publisher kafka.MediaEventPublisher = kafka.NoopPublisher{}
	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		publisher, err = kafka.NewMediaEventPublisher(cfg)
		if err != nil {
			return nil, err
		}
		if statsRepo != nil {
			kafkaMgr, err = kafka.NewConsumerManager(cfg, statsRepo)
			if err != nil {
				_ = publisher.Close()
				return nil, err
			}
		}
	}

	idleTTL := time.Duration(cfg.Gallery.ViewIdleMinutes) * time.Minute
	registry := gallery.NewRegistry(store, cfg.Gallery.PageSize, idleTTL)

	gallerySvc := service.NewGalleryService(registry, store, statsRepo, publisher, cfg.Gallery.PageSize)
	uploadSvc := service.NewUploadService(cfg.Upload, blobs, store, publisher)
	authSvc := service.NewAuthService(provider)

	maxBody := int64(cfg.Upload.MaxFiles)*max(cfg.Upload.MaxPhotoBytes, cfg.Upload.MaxVideoBytes) + multipartOverhead
	handlers := &api.HandlersGroup{
		AuthService:    authSvc,
		AuthHandler:    handler.NewAuthHandler(authSvc),
		GalleryHandler: handler.NewGalleryHandler(gallerySvc),
		LiveHandler:    handler.NewLiveHandler(authSvc, gallerySvc),
		UploadHandler:  handler.NewUploadHandler(uploadSvc, maxBody),
		QRCodeHandler:  handler.NewQRCodeHandler(),
	}
	if mem, ok := blobs.(*blob.MemoryStore); ok {
		handlers.BlobHandler = handler.NewBlobHandler(mem)
	}
	router := api.SetupRouter(handlers)

	var rebuildJob *job.UploaderRebuildJob
	if statsRepo != nil {
		rebuildJob = job.NewUploaderRebuildJob(gallerySvc, job.NewRedisLocker())
	}
	cronMgr := cron.NewCronManager(job.NewViewSweepJob(gallerySvc), rebuildJob)

	return &ApplicationContainer{
		Router:       router,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
		Publisher:    publisher,
		Registry:     registry,
	}, nil
}

func newMediaStore(infra *Infra, cfg *config.Config) (repository.MediaStore, error) {
	switch cfg.Gallery.DocumentBackend {
	case config.BackendFirestore:
		if firebase.Firestore == nil {
			return nil, fmt.Errorf("document backend %q: firestore client is not initialized", cfg.Gallery.DocumentBackend)
		}
		return repository.NewFirestoreMediaStore(firebase.Firestore), nil
	case config.BackendMongo:
		if infra.Mongo == nil {
			return nil, fmt.Errorf("document backend %q: mongo is not initialized", cfg.Gallery.DocumentBackend)
		}
		return repository.NewMongoMediaStore(infra.Mongo), nil
	case config.BackendMemory:
		log.Warn("Using in-memory document store, data is lost on restart")
		return repository.NewMemoryMediaStore(), nil
	default:
		return nil, fmt.Errorf("unknown document backend %q", cfg.Gallery.DocumentBackend)
	}
}

func newBlobStore(cfg *config.Config) (blob.Store, error) {
	switch cfg.Gallery.BlobBackend {
	case config.BackendGCS:
		if firebase.Storage == nil {
			return nil, fmt.Errorf("blob backend %q: storage client is not initialized", cfg.Gallery.BlobBackend)
		}
		return gcs.NewStore(firebase.Storage, cfg.GCS.Bucket, cfg.GCS.PublicBaseURL), nil
	case config.BackendMinIO:
		if minio.Client == nil {
			return nil, fmt.Errorf("blob backend %q: minio client is not initialized", cfg.Gallery.BlobBackend)
		}
		return minio.NewStore(nil, ""), nil
	case config.BackendMemory:
		log.Warn("Using in-memory blob store, uploads are lost on restart")
		return blob.NewMemoryStore(cfg.Server.PublicBaseURL + "/blobs"), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Gallery.BlobBackend)
	}
}

func newAuthProvider(infra *Infra, cfg *config.Config) (auth.Provider, error) {
	switch cfg.Auth.Provider {
	case config.ProviderLocal:
		if infra.DB == nil {
			return nil, fmt.Errorf("auth provider %q: database is not initialized", cfg.Auth.Provider)
		}
		var blacklist auth.Blacklist
		if redis.GetRdbClient() != nil {
			blacklist = auth.NewRedisBlacklist()
		} else {
			log.Warn("Redis is not configured, logout blacklist is kept in memory")
			blacklist = auth.NewMemoryBlacklist()
		}
		return auth.NewLocalProvider(repository.NewHostRepo(infra.DB), blacklist), nil
	case config.ProviderFirebase:
		if firebase.Auth == nil {
			return nil, fmt.Errorf("auth provider %q: firebase auth is not initialized", cfg.Auth.Provider)
		}
		return auth.NewFirebaseProvider(cfg.Firebase.IdentityEndpoint, cfg.Firebase.APIKey, firebase.Auth), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}

package repository

import (
	"EventGallery/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type HostRepo interface {
	GetHostByEmail(ctx context.Context, email string) (*model.Host, error)
	GetHostById(ctx context.Context, id uint64) (*model.Host, error)
	CreateHost(ctx context.Context, host *model.Host) error
	Migrate(ctx context.Context) error
}

type HostRepoImpl struct {
	db *gorm.DB
}

func NewHostRepo(db *gorm.DB) HostRepo {
	return &HostRepoImpl{db: db}
}

func (s *HostRepoImpl) GetHostByEmail(ctx context.Context, email string) (*model.Host, error) {
	host := &model.Host{}
	result := s.db.WithContext(ctx).Where("email = ?", email).First(host)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return host, nil
}

func (s *HostRepoImpl) GetHostById(ctx context.Context, id uint64) (*model.Host, error) {
	host := &model.Host{}
	result := s.db.WithContext(ctx).First(host, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return host, nil
}

func (s *HostRepoImpl) CreateHost(ctx context.Context, host *model.Host) error {
	return s.db.WithContext(ctx).Create(host).Error
}

// Migrate 同步 hosts 表结构
func (s *HostRepoImpl) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&model.Host{})
}

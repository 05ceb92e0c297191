package cron

import (
	"EventGallery/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const (
	ViewSweepSpec       = "@every 1m"
	UploaderRebuildSpec = "0 30 3 * * *"
)

type Manager struct {
	engine             *cron.Cron
	viewSweepJob       *job.ViewSweepJob
	uploaderRebuildJob *job.UploaderRebuildJob
}

// NewCronManager uploaderRebuildJob 为空时不注册重建任务
func NewCronManager(viewSweepJob *job.ViewSweepJob, uploaderRebuildJob *job.UploaderRebuildJob) *Manager {
	return &Manager{
		engine:             cron.New(cron.WithSeconds()),
		viewSweepJob:       viewSweepJob,
		uploaderRebuildJob: uploaderRebuildJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(ViewSweepSpec, s.viewSweepJob); err != nil {
		return err
	}
	if s.uploaderRebuildJob != nil {
		if _, err := s.engine.AddJob(UploaderRebuildSpec, s.uploaderRebuildJob); err != nil {
			return err
		}
	}
	return nil
}

// Entries 已注册的任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

// Start 注册并启动，注册失败时不启动引擎
func (s *Manager) Start() error {
	if err := s.RegisterJobs(); err != nil {
		return err
	}
	log.Info("Cron 定时任务引擎启动", "entries", s.Entries())
	s.engine.Start()
	return nil
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

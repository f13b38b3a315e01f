package model

import "gorm.io/datatypes"

// JobLog 后台任务执行记录
type JobLog struct {
	BaseModel

	JobID string         `gorm:"size:36;index;not null;comment:任务ID(uuid)"`
	Name  string         `gorm:"size:64;index;not null;comment:任务名"`
	Args  datatypes.JSON `gorm:"comment:任务参数"`

	Attempts   int    `gorm:"default:0;comment:执行次数"`
	DurationMs int64  `gorm:"comment:耗时(毫秒)"`
	Status     string `gorm:"size:32;index;default:success;comment:状态(success/failed/dropped)"`
	ErrorMsg   string `gorm:"size:1024;comment:错误信息"`
}

func (JobLog) TableName() string {
	return "job_logs"
}

// ==================== 状态常量 ====================

const (
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
	JobStatusDropped = "dropped"
)

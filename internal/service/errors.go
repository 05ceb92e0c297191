package service

import (
	"EventGallery/internal/gallery"
	"EventGallery/internal/pkg/auth"
	"EventGallery/internal/pkg/util"
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	TooLarge            = 413
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrCursorInvalid     = errors.New("翻页参数无效")
	ErrPasswordIncorrect = errors.New("邮箱或密码错误")
	ErrHostDisabled      = errors.New("账号已停用")
	ErrSessionInvalid    = errors.New("登录已失效，请重新登录")
	ErrViewNotFound      = errors.New("相册视图不存在或已过期")
	ErrViewForbidden     = errors.New("无权访问该相册视图")
	ErrMediaNotLoaded    = errors.New("该媒体不在当前列表中")
	ErrDeleteInProgress  = errors.New("该媒体正在删除中")
	ErrAlreadyDeleted    = errors.New("该媒体已删除")
	ErrDeleteNotFound    = errors.New("删除操作不存在")
	ErrDeleteSettled     = errors.New("删除操作已结束")
	ErrDeleteRejected    = errors.New("删除失败，请稍后重试")
	ErrUploaderRequired  = errors.New("请填写上传者名字")
	ErrUploaderTooLong   = errors.New("上传者名字过长")
	ErrNoFiles           = errors.New("请选择要上传的文件")
	ErrTooManyFiles      = errors.New("单次上传文件数量超过限制")
	ErrFileNotSupported  = errors.New("不支持的文件类型")
	ErrFileTooLarge      = errors.New("文件过大")
	ErrRebuildInProgress = errors.New("上传者统计正在重建")
	UnauthorizedError    = errors.New("请先登录")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrCursorInvalid:     BadRequest,
	ErrPasswordIncorrect: Unauthorized,
	ErrHostDisabled:      Forbidden,
	ErrSessionInvalid:    Unauthorized,
	ErrViewNotFound:      NotFound,
	ErrViewForbidden:     Forbidden,
	ErrMediaNotLoaded:    NotFound,
	ErrDeleteInProgress:  Conflict,
	ErrAlreadyDeleted:    Conflict,
	ErrDeleteNotFound:    NotFound,
	ErrDeleteSettled:     Conflict,
	ErrDeleteRejected:    InternalServerError,
	ErrUploaderRequired:  BadRequest,
	ErrUploaderTooLong:   BadRequest,
	ErrNoFiles:           BadRequest,
	ErrTooManyFiles:      BadRequest,
	ErrFileNotSupported:  BadRequest,
	ErrFileTooLarge:      TooLarge,
	ErrRebuildInProgress: Conflict,
	UnauthorizedError:    Unauthorized,
	UnExpectedError:      InternalServerError,
}

// 下层错误到业务错误的映射
var translations = []struct {
	from error
	to   error
}{
	{gallery.ErrViewNotFound, ErrViewNotFound},
	{gallery.ErrViewForbidden, ErrViewForbidden},
	{gallery.ErrMediaNotLoaded, ErrMediaNotLoaded},
	{gallery.ErrDeleteInProgress, ErrDeleteInProgress},
	{gallery.ErrAlreadyDeleted, ErrAlreadyDeleted},
	{gallery.ErrDeleteNotFound, ErrDeleteNotFound},
	{gallery.ErrDeleteSettled, ErrDeleteSettled},
	{gallery.ErrDeleteRejected, ErrDeleteRejected},
	{auth.ErrInvalidCredentials, ErrPasswordIncorrect},
	{auth.ErrInvalidToken, ErrSessionInvalid},
	{auth.ErrHostDisabled, ErrHostDisabled},
	{util.ErrInvalidCursor, ErrCursorInvalid},
	{util.ErrUnsupportedMedia, ErrFileNotSupported},
}

// translate 把下层哨兵错误换成业务错误，其余原样返回
func translate(err error) error {
	if err == nil {
		return nil
	}
	for _, t := range translations {
		if errors.Is(err, t.from) {
			return t.to
		}
	}
	return err
}

package util

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrNotPDF             = errors.New("上传的文件不是有效的PDF")
	ErrFileTooLarge       = errors.New("文件超出大小限制")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrClassificationBad  = errors.New("invalid classification")
	ErrInvalidVoteValue   = errors.New("vote value must be 1 or -1")
	ErrOriginalUnreadable = errors.New("original pdf bytes unreadable")
)

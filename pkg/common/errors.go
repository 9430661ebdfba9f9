package common

import "errors"

var (
	// ErrNotFound 比赛或队伍不存在
	ErrNotFound = errors.New("not found")

	// ErrInvalidTeam 队伍不属于该比赛
	ErrInvalidTeam = errors.New("invalid team")

	// ErrWrongSport 请求的运动类型与比赛不符
	ErrWrongSport = errors.New("wrong sport")

	// ErrNotLive 比赛不在进行中
	ErrNotLive = errors.New("match is not live")

	// ErrInvalidState 当前状态不允许该操作
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput 无效输入
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable 存储暂时不可用,整个变更可安全重试
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AppError 应用错误
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 创建应用错误
func NewAppError(code string, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

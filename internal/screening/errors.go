package screening

import (
	"errors"
	"fmt"
)

// 批量级别的输入错误，直接返回给调用方
var (
	ErrMissingJobDescription = errors.New("missing job description")
	ErrNoDocuments           = errors.New("no resumes uploaded")
	ErrTooManyDocuments      = errors.New("too many resumes in one run")
)

// 面向用户的提示文案
const (
	MsgMissingJobDescription = "Please provide a job description."
	MsgNoDocuments           = "Please upload at least one resume."
)

// 单份简历的处理失败，只记录为警告，不会中断整批处理
var (
	ErrParseFailed     = errors.New("could not parse resume")
	ErrRecognizeFailed = errors.New("entity recognition failed")
	ErrCacheFailed     = errors.New("parsed-text cache unavailable")
)

// Stage 出错的处理阶段
type Stage string

const (
	StageParse     Stage = "parse"
	StageRecognize Stage = "recognize"
	StageCache     Stage = "cache"
)

// ScreenError 包含文件名与阶段的单文档错误
type ScreenError struct {
	Filename string
	Stage    Stage
	Err      error
}

func (e *ScreenError) Error() string {
	return fmt.Sprintf("%s (阶段:%s, 文件:%s)", e.Err, e.Stage, e.Filename)
}

func (e *ScreenError) Unwrap() error {
	return e.Err
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ScreenError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewParseError 文件无法解析出文本
func NewParseError(filename string) error {
	return &ScreenError{Filename: filename, Stage: StageParse, Err: ErrParseFailed}
}

// NewRecognizeError 实体识别失败，cause 为底层错误
func NewRecognizeError(filename string, cause error) error {
	return &ScreenError{Filename: filename, Stage: StageRecognize, Err: errors.Join(ErrRecognizeFailed, cause)}
}

// NewCacheError 缓存读写失败，cause 为底层错误
func NewCacheError(filename string, cause error) error {
	return &ScreenError{Filename: filename, Stage: StageCache, Err: errors.Join(ErrCacheFailed, cause)}
}

// UserMessage 把批量级别的输入错误转换为提示文案，其他错误返回 err.Error()
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingJobDescription):
		return MsgMissingJobDescription
	case errors.Is(err, ErrNoDocuments):
		return MsgNoDocuments
	default:
		return err.Error()
	}
}

// UnparseableMessage 面向用户的无法解析提示
func UnparseableMessage(filename string) string {
	return fmt.Sprintf("Could not parse %s. Try saving/exporting as a text-based PDF or DOCX.", filename)
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/ner"
	"resume-screener/internal/report"
	"resume-screener/internal/screening"
	"resume-screener/internal/tracing"
	"resume-screener/internal/types"
)

// 表单字段名
const (
	FieldJobDescription = "job_description"
	FieldFiles          = "files"
	FieldModel          = "model"
	FieldShowDetails    = "show_details"
)

// WarningResponse 请求无法执行时的响应
type WarningResponse struct {
	Warning string `json:"warning"`
}

// ModelsResponse 可选的实体识别模型
type ModelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}

// Screener 处理器依赖的筛选能力
type Screener interface {
	Screen(ctx context.Context, jd string, docs []types.RawDocument, opts ...screening.RunOption) (*types.Report, error)
	Models() (names []string, defaultName string)
}

// ScreeningHandler 负责筛选相关的 HTTP 请求
type ScreeningHandler struct {
	screener Screener
	logger   zerolog.Logger
}

// NewScreeningHandler 创建一个新的 ScreeningHandler 实例
func NewScreeningHandler(s Screener) *ScreeningHandler {
	return &ScreeningHandler{
		screener: s,
		logger:   appLogger.For("api"),
	}
}

// HandleScreen 上传一批简历和职位描述，返回排名结果
// POST /api/v1/screenings (multipart/form-data)
func (h *ScreeningHandler) HandleScreen(ctx context.Context, c *app.RequestContext) {
	form, err := c.MultipartForm()
	if err != nil {
		h.fail(ctx, c, consts.StatusBadRequest, err, "Expected a multipart/form-data request.")
		return
	}

	jd := firstValue(form, FieldJobDescription)
	model := strings.TrimSpace(firstValue(form, FieldModel))
	showDetails := parseBool(firstValue(form, FieldShowDetails))

	docs, err := readDocuments(form.File[FieldFiles])
	if err != nil {
		h.logger.Error().Err(err).Msg("读取上传文件失败")
		h.fail(ctx, c, consts.StatusBadRequest, err, "Could not read the uploaded files.")
		return
	}

	rep, err := h.screener.Screen(ctx, jd, docs, screening.WithModel(model))
	if err != nil {
		status := statusFor(err)
		if status >= consts.StatusInternalServerError {
			h.logger.Error().Err(err).Int("documents", len(docs)).Msg("筛选失败")
		}
		h.fail(ctx, c, status, err, screening.UserMessage(err))
		return
	}

	c.JSON(consts.StatusOK, report.NewOutput(rep, showDetails))
}

// HandleModels 返回模型选择项
// GET /api/v1/models
func (h *ScreeningHandler) HandleModels(_ context.Context, c *app.RequestContext) {
	names, def := h.screener.Models()
	c.JSON(consts.StatusOK, ModelsResponse{Models: names, Default: def})
}

// fail 把错误记录到当前请求的 span 上并返回 {warning}
func (h *ScreeningHandler) fail(ctx context.Context, c *app.RequestContext, status int, err error, msg string) {
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
	c.JSON(status, WarningResponse{Warning: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, screening.ErrMissingJobDescription),
		errors.Is(err, screening.ErrNoDocuments),
		errors.Is(err, screening.ErrTooManyDocuments),
		errors.Is(err, ner.ErrUnknownModel):
		return consts.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}

func firstValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// readDocuments 按上传顺序读取文件内容
func readDocuments(headers []*multipart.FileHeader) ([]types.RawDocument, error) {
	docs := make([]types.RawDocument, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("打开文件 %s 失败: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("读取文件 %s 失败: %w", fh.Filename, err)
		}
		docs = append(docs, types.RawDocument{Filename: fh.Filename, Content: data})
	}
	return docs, nil
}

// Package screening 串联解析、清洗、抽取、匹配与打分，输出按总分排序的候选人列表
package screening

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"resume-screener/internal/cache"
	"resume-screener/internal/contact"
	"resume-screener/internal/extractor"
	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/matcher"
	"resume-screener/internal/ner"
	"resume-screener/internal/scoring"
	"resume-screener/internal/textutil"
	"resume-screener/internal/tracing"
	"resume-screener/internal/types"
)

var tracer = otel.Tracer("resume-screener/screening")

// Screener 批量筛选简历
type Screener struct {
	Components Components
	Settings   Settings
}

// NewScreener 创建筛选器。必须提供解析器和模型注册表。
func NewScreener(compOpts []ComponentOpt, setOpts []SettingOpt) (*Screener, error) {
	s := &Screener{
		Components: Components{Cache: cache.NopCache{}},
		Settings: Settings{
			Workers:      1,
			PreviewChars: 300,
			Logger:       appLogger.For("screening"),
		},
	}
	for _, opt := range compOpts {
		opt(&s.Components)
	}
	for _, opt := range setOpts {
		opt(&s.Settings)
	}

	if s.Components.Parser == nil {
		return nil, errors.New("screening: document parser is required")
	}
	if s.Components.Registry == nil {
		return nil, errors.New("screening: recognizer registry is required")
	}
	return s, nil
}

// docOutcome 单份简历的处理结果，每个 goroutine 只写自己的槽位
type docOutcome struct {
	result   types.CandidateResult
	warnings []types.Warning
}

// Screen 对一批简历打分并按 FinalScore 降序返回。
// 单份简历的任何失败都只产生警告；只有输入校验失败、模型不存在或 ctx 被取消时返回错误。
func (s *Screener) Screen(ctx context.Context, jd string, docs []types.RawDocument, opts ...RunOption) (*types.Report, error) {
	ro := ApplyRunOptions(opts...)

	if err := s.validate(jd, docs); err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeValidation)
		return nil, err
	}
	recognizer, modelName, err := s.Components.Registry.Get(ro.Model)
	if err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeValidation)
		return nil, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成运行 ID 失败: %w", err)
	}

	ctx, span := tracer.Start(ctx, "screening.Screen", trace.WithAttributes(
		attribute.String("screening.run_id", runID.String()),
		attribute.String("screening.model", modelName),
		attribute.Int("screening.documents", len(docs)),
		attribute.Int("screening.workers", s.Settings.Workers),
	))
	defer span.End()

	log := s.Settings.Logger.With().Str("run_id", runID.String()).Str("model", modelName).Logger()
	startedAt := time.Now()
	log.Info().Int("documents", len(docs)).Int("workers", s.Settings.Workers).Msg("开始筛选")

	fieldExtractor := extractor.New(recognizer, extractor.WithLogger(log))
	outcomes := make([]docOutcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Settings.Workers, 1))
	for i := range docs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.screenDocument(gctx, fieldExtractor, jd, docs[i], log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
		return nil, err
	}

	report := &types.Report{
		RunID:          runID.String(),
		Model:          modelName,
		JobDescription: jd,
		Results:        make([]types.CandidateResult, 0, len(docs)),
		Warnings:       []types.Warning{},
		StartedAt:      startedAt,
	}
	for _, o := range outcomes {
		report.Results = append(report.Results, o.result)
		report.Warnings = append(report.Warnings, o.warnings...)
	}
	RankResults(report.Results)
	report.Elapsed = time.Since(startedAt)

	span.SetAttributes(attribute.Int("screening.warnings", len(report.Warnings)))
	log.Info().
		Int("results", len(report.Results)).
		Int("warnings", len(report.Warnings)).
		Dur("elapsed", report.Elapsed).
		Msg("筛选完成")
	return report, nil
}

func (s *Screener) validate(jd string, docs []types.RawDocument) error {
	if strings.TrimSpace(jd) == "" {
		return ErrMissingJobDescription
	}
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	if s.Settings.MaxFiles > 0 && len(docs) > s.Settings.MaxFiles {
		return fmt.Errorf("%w: %d > %d", ErrTooManyDocuments, len(docs), s.Settings.MaxFiles)
	}
	return nil
}

// RankResults 按 FinalScore 降序做稳定排序，分数相同的保持上传顺序
func RankResults(results []types.CandidateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}

// screenDocument 处理单份简历：解析 → 清洗 → 抽取 → 匹配 → 加分 → 聚合
func (s *Screener) screenDocument(ctx context.Context, fe *extractor.FieldExtractor, jd string, doc types.RawDocument, log zerolog.Logger) docOutcome {
	ctx, span := tracer.Start(ctx, "screening.Document")
	defer span.End()

	log = log.With().Str("filename", doc.Filename).Logger()
	out := docOutcome{}

	text := s.parseText(ctx, doc, log)
	cleaned := textutil.CleanText(text)
	if cleaned == "" {
		err := NewParseError(doc.Filename)
		tracing.RecordError(span, err, tracing.ErrorTypeParse)
		log.Warn().Err(err).Msg("简历无法解析出文本")
		out.warnings = append(out.warnings, types.Warning{
			Filename: doc.Filename,
			Message:  UnparseableMessage(doc.Filename),
		})
	}

	fields, err := fe.Extract(ctx, cleaned)
	if err != nil {
		screenErr := NewRecognizeError(doc.Filename, err)
		tracing.RecordError(span, screenErr, tracing.ErrorTypeNER)
		out.warnings = append(out.warnings, types.Warning{
			Filename: doc.Filename,
			Message:  fmt.Sprintf("Entity recognition failed for %s; names, organizations and dates were skipped.", doc.Filename),
		})
	}

	scores := matcher.MatchResume(fields, jd)
	bonus := scoring.FeatureBonus(fields, jd)
	final := scoring.AggregateScore(scores.Final, bonus)

	c := contact.Extract(cleaned)
	if c.Name == nil && len(fields.Persons) > 0 {
		name := fields.Persons[0]
		c.Name = &name
	}

	out.result = types.CandidateResult{
		Filename:   doc.Filename,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Scores:     scores,
		Bonus:      bonus,
		FinalScore: final,
		Fields:     fields,
		Preview:    textutil.Preview(cleaned, s.Settings.PreviewChars),
		Parsed:     cleaned != "",
	}

	span.SetAttributes(
		attribute.Bool("document.parsed", out.result.Parsed),
		attribute.Float64("document.final_score", final),
	)
	log.Debug().
		Float64("tfidf", scores.TFIDF).
		Float64("fuzzy", scores.Fuzzy).
		Float64("keyword", scores.Keyword).
		Float64("bonus", bonus).
		Float64("final", final).
		Msg("简历打分完成")
	return out
}

// parseText 先查缓存，未命中再解析；缓存故障不影响解析
func (s *Screener) parseText(ctx context.Context, doc types.RawDocument, log zerolog.Logger) string {
	if doc.FileType() == types.FileTypeUnknown {
		return s.Components.Parser.Parse(ctx, doc)
	}

	text, err := s.Components.Cache.Get(ctx, doc)
	if err == nil {
		log.Debug().Msg("解析缓存命中")
		return text
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(NewCacheError(doc.Filename, err)).Msg("读取解析缓存失败")
	}

	text = s.Components.Parser.Parse(ctx, doc)
	if text == "" {
		// 失败结果不缓存，下次上传时重新解析
		return text
	}
	if err := s.Components.Cache.Set(ctx, doc, text); err != nil {
		log.Warn().Err(NewCacheError(doc.Filename, err)).Msg("写入解析缓存失败")
	}
	return text
}

// Models 可选的实体识别模型以及默认值
func (s *Screener) Models() (names []string, defaultName string) {
	return s.Components.Registry.Names(), s.Components.Registry.Default()
}

// Recognizer 按名称取识别器，供调用方在运行前校验模型
func (s *Screener) Recognizer(name string) (ner.Recognizer, string, error) {
	return s.Components.Registry.Get(name)
}

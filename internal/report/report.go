// Package report 把筛选结果渲染为排名表格、详情视图和 JSON
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"resume-screener/internal/types"
)

// NA 缺失值的显示文本
const NA = "N/A"

// Row 排名表中的一行，分数已四舍五入到 3 位小数
type Row struct {
	Filename string  `json:"filename"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	TFIDF    float64 `json:"tfidf"`
	Fuzzy    float64 `json:"fuzzy"`
	Bonus    float64 `json:"bonus"`
	Final    float64 `json:"final_score"`
}

// Entities 详情视图中的原始实体列表
type Entities struct {
	Persons []string `json:"persons"`
	Orgs    []string `json:"orgs"`
	Dates   []string `json:"dates"`
}

// Detail 单个候选人的抽取详情
type Detail struct {
	Filename   string   `json:"filename"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	Skills     string   `json:"skills"`
	Entities   Entities `json:"entities"`
	Preview    string   `json:"preview,omitempty"`
}

// Output JSON 输出（HTTP 响应与 CLI --format json 共用）
type Output struct {
	RunID    string          `json:"run_id"`
	Model    string          `json:"model"`
	Rows     []Row           `json:"rows"`
	Details  []Detail        `json:"details,omitempty"`
	Warnings []types.Warning `json:"warnings"`
}

// Round3 四舍五入到 3 位小数
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// FormatScore 分数的显示格式
func FormatScore(x float64) string {
	return fmt.Sprintf("%.3f", Round3(x))
}

// OrNA 缺失或空白时返回 N/A
func OrNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NA
	}
	return *s
}

// BuildRows 按报告中已排好的顺序生成表格行
func BuildRows(r *types.Report) []Row {
	rows := make([]Row, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, Row{
			Filename: res.Filename,
			Name:     OrNA(res.Name),
			Email:    OrNA(res.Email),
			Phone:    OrNA(res.Phone),
			TFIDF:    Round3(res.Scores.TFIDF),
			Fuzzy:    Round3(res.Scores.Fuzzy),
			Bonus:    Round3(res.Bonus),
			Final:    Round3(res.FinalScore),
		})
	}
	return rows
}

// BuildDetails 生成每个候选人的详情
func BuildDetails(r *types.Report) []Detail {
	details := make([]Detail, 0, len(r.Results))
	for _, res := range r.Results {
		details = append(details, Detail{
			Filename:   res.Filename,
			Name:       OrNA(res.Name),
			Email:      OrNA(res.Email),
			Phone:      OrNA(res.Phone),
			Education:  OrNA(res.Fields.Education),
			Experience: OrNA(res.Fields.Experience),
			Skills:     OrNA(res.Fields.Skills),
			Entities: Entities{
				Persons: nonNil(res.Fields.Persons),
				Orgs:    nonNil(res.Fields.Orgs),
				Dates:   nonNil(res.Fields.Dates),
			},
			Preview: res.Preview,
		})
	}
	return details
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// NewOutput 组装 JSON 输出，withDetails 为 false 时省略详情
func NewOutput(r *types.Report, withDetails bool) Output {
	out := Output{
		RunID:    r.RunID,
		Model:    r.Model,
		Rows:     BuildRows(r),
		Warnings: r.Warnings,
	}
	if out.Warnings == nil {
		out.Warnings = []types.Warning{}
	}
	if withDetails {
		out.Details = BuildDetails(r)
	}
	return out
}

var tableHeader = []string{"Filename", "Name", "Email", "Phone", "TF-IDF", "Fuzzy", "Bonus", "Final score"}

// RenderTable 输出排名表
func RenderTable(w io.Writer, r *types.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(tableHeader, "\t")); err != nil {
		return err
	}
	for _, row := range BuildRows(r) {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\n",
			row.Filename, row.Name, row.Email, row.Phone,
			row.TFIDF, row.Fuzzy, row.Bonus, row.Final); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderDetails 输出每个候选人的抽取详情
func RenderDetails(w io.Writer, r *types.Report) error {
	for _, d := range BuildDetails(r) {
		ents, err := json.Marshal(d.Entities)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "\nDetails: %s\n  Name: %s\n  Email: %s\n  Phone: %s\n  Education: %s\n  Experience: %s\n  Skills: %s\n  Entities (ORG/PERSON/DATE): %s\n",
			d.Filename, d.Name, d.Email, d.Phone, d.Education, d.Experience, d.Skills, ents)
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderWarnings 输出警告列表
func RenderWarnings(w io.Writer, warnings []types.Warning) error {
	for _, warn := range warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warn.Message); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON 输出带缩进的 JSON
func RenderJSON(w io.Writer, r *types.Report, withDetails bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewOutput(r, withDetails))
}

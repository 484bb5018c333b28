package types

import (
	"path/filepath"
	"strings"
	"time"
)

// SectionType 表示简历章节类型
type SectionType string

const (
	// SectionEducation 教育经历章节
	SectionEducation SectionType = "EDUCATION"
	// SectionExperience 工作/项目经历章节
	SectionExperience SectionType = "EXPERIENCE"
	// SectionSkills 技能章节
	SectionSkills SectionType = "SKILLS"
)

// AllSections 按字段声明顺序返回全部章节类型
func AllSections() []SectionType {
	return []SectionType{SectionEducation, SectionExperience, SectionSkills}
}

// FileType 上传文件的类型，由扩展名决定
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeDOCX    FileType = "docx"
	FileTypeTXT     FileType = "txt"
	FileTypeUnknown FileType = "unknown"
)

// DetectFileType 根据文件名扩展名判断类型（大小写不敏感）
func DetectFileType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileTypePDF
	case ".docx":
		return FileTypeDOCX
	case ".txt":
		return FileTypeTXT
	default:
		return FileTypeUnknown
	}
}

// RawDocument 一次筛选运行中的上传文件，仅在运行期间存在
type RawDocument struct {
	Filename string
	Content  []byte
}

// FileType 返回文档的文件类型
func (d RawDocument) FileType() FileType {
	return DetectFileType(d.Filename)
}

// 实体标签
const (
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
	LabelFac    = "FAC"
	LabelDate   = "DATE"
)

// Entity 命名实体识别返回的实体片段
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`
}

// ResumeFields 从简历文本中抽取的结构化字段
// Education/Experience/Skills 为 nil 表示未找到对应章节，永远不会是空字符串
type ResumeFields struct {
	Persons    []string `json:"persons"`
	Orgs       []string `json:"orgs"`
	Dates      []string `json:"dates"`
	Education  *string  `json:"education"`
	Experience *string  `json:"experience"`
	Skills     *string  `json:"skills"`
}

// Section 返回指定章节的内容
func (f ResumeFields) Section(section SectionType) (string, bool) {
	var p *string
	switch section {
	case SectionEducation:
		p = f.Education
	case SectionExperience:
		p = f.Experience
	case SectionSkills:
		p = f.Skills
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// SetSection 设置章节内容；trim 后为空时视为缺失
func (f *ResumeFields) SetSection(section SectionType, text string) {
	var p *string
	if t := strings.TrimSpace(text); t != "" {
		p = &t
	}
	switch section {
	case SectionEducation:
		f.Education = p
	case SectionExperience:
		f.Experience = p
	case SectionSkills:
		f.Skills = p
	}
}

// String 按字段声明顺序把记录拍平成一个字符串，供匹配器使用。
// 列表字段按元素以空格拼接，缺失的章节不贡献任何内容。
// 输出里没有列表括号、引号或 None 之类的占位词，模糊匹配只比较真实内容，
// 因此与逐字段 repr 拼接的做法相比，分数会有差异。
func (f ResumeFields) String() string {
	parts := make([]string, 0, 6)
	for _, list := range [][]string{f.Persons, f.Orgs, f.Dates} {
		if len(list) > 0 {
			parts = append(parts, strings.Join(list, " "))
		}
	}
	for _, s := range AllSections() {
		if v, ok := f.Section(s); ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// ScoreBreakdown 匹配器输出的三个相似度信号及其加权和（不含加分）
type ScoreBreakdown struct {
	TFIDF   float64 `json:"tfidf_score"`
	Fuzzy   float64 `json:"fuzzy_similarity"`
	Keyword float64 `json:"keyword_score"`
	Final   float64 `json:"final_score"`
}

// CandidateResult 单份简历的筛选结果
type CandidateResult struct {
	Filename   string         `json:"filename"`
	Name       *string        `json:"name"`
	Email      *string        `json:"email"`
	Phone      *string        `json:"phone"`
	Scores     ScoreBreakdown `json:"scores"`
	Bonus      float64        `json:"bonus"`
	FinalScore float64        `json:"final_score"`
	Fields     ResumeFields   `json:"fields"`
	Preview    string         `json:"preview,omitempty"`
	Parsed     bool           `json:"parsed"`
}

// Warning 面向用户的非致命警告
type Warning struct {
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message"`
}

// Report 一次筛选运行的完整输出，Results 已按 FinalScore 降序排列
type Report struct {
	RunID          string            `json:"run_id"`
	Model          string            `json:"model"`
	JobDescription string            `json:"-"`
	Results        []CandidateResult `json:"results"`
	Warnings       []Warning         `json:"warnings"`
	StartedAt      time.Time         `json:"started_at"`
	Elapsed        time.Duration     `json:"elapsed"`
}

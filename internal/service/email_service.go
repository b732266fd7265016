package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/MHR-RONY/Gramer--Bazar/config"
	"github.com/MHR-RONY/Gramer--Bazar/internal/common"
	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// EmailSenderInterface 邮件投递接口
type EmailSenderInterface interface {
	SendOTPEmail(to, name, otp string) error
	SendPasswordResetEmail(to, name, resetToken string) error
	SendOrderConfirmation(to, name string, order *model.Order) error
}

// EmailService 通过 SMTP 发送交易邮件
type EmailService struct {
	smtpHost    string
	smtpPort    int
	username    string
	password    string
	senderName  string
	senderEmail string
	frontendURL string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		smtpHost:    cfg.SMTPHost,
		smtpPort:    cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		frontendURL: cfg.FrontendURL,
	}
}

// SendOTPEmail 发送邮箱验证码，验证码10分钟内有效
func (s *EmailService) SendOTPEmail(to, name, otp string) error {
	subject := "Verify Your Email - Gramer Bazar"
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2e7d32;">Gramer Bazar</h2>
			<p>Hello %s,</p>
			<p>Thank you for registering with Gramer Bazar. Please use the following code to verify your email address:</p>
			<div style="background-color: #f5f5f5; padding: 20px; text-align: center; margin: 20px 0;">
				<h1 style="letter-spacing: 8px; color: #2e7d32; margin: 0;">%s</h1>
			</div>
			<p>This code will expire in 10 minutes.</p>
			<p>If you did not create an account, please ignore this email.</p>
			<p>Best regards,<br/>The Gramer Bazar Team</p>
		</div>`, name, otp)

	return s.sendEmail(to, subject, body)
}

// SendPasswordResetEmail 发送密码重置链接，链接30分钟内有效
func (s *EmailService) SendPasswordResetEmail(to, name, resetToken string) error {
	resetLink := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, resetToken)

	subject := "Password Reset Request - Gramer Bazar"
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2e7d32;">Gramer Bazar</h2>
			<p>Hello %s,</p>
			<p>You requested a password reset. Click the button below to set a new password:</p>
			<div style="text-align: center; margin: 20px 0;">
				<a href="%s" style="background-color: #2e7d32; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Reset Password</a>
			</div>
			<p>Or copy this link into your browser:</p>
			<p><a href="%s">%s</a></p>
			<p>This link will expire in 30 minutes. If you did not request a password reset, please ignore this email.</p>
			<p>Best regards,<br/>The Gramer Bazar Team</p>
		</div>`, name, resetLink, resetLink, resetLink)

	return s.sendEmail(to, subject, body)
}

// SendOrderConfirmation 发送订单确认邮件
func (s *EmailService) SendOrderConfirmation(to, name string, order *model.Order) error {
	var itemRows string
	for _, item := range order.Items {
		itemRows += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border-bottom: 1px solid #eeeeee;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eeeeee; text-align: center;">%d</td>
				<td style="padding: 8px; border-bottom: 1px solid #eeeeee; text-align: right;">%.2f</td>
			</tr>`, item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}

	subject := fmt.Sprintf("Order Confirmation #%d - Gramer Bazar", order.ID)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2e7d32;">Gramer Bazar</h2>
			<p>Hello %s,</p>
			<p>Thank you for your order! We have received it and will process it shortly.</p>
			<h3>Order #%d</h3>
			<table style="width: 100%%; border-collapse: collapse;">
				<tr>
					<th style="padding: 8px; text-align: left; border-bottom: 2px solid #2e7d32;">Item</th>
					<th style="padding: 8px; text-align: center; border-bottom: 2px solid #2e7d32;">Qty</th>
					<th style="padding: 8px; text-align: right; border-bottom: 2px solid #2e7d32;">Price</th>
				</tr>
				%s
			</table>
			<p style="text-align: right; font-size: 18px;"><strong>Total: %.2f</strong></p>
			<p>Shipping to: %s, %s, %s %s, %s</p>
			<p>Best regards,<br/>The Gramer Bazar Team</p>
		</div>`,
		name, order.ID, itemRows, order.TotalPrice,
		order.ShippingAddress.Street, order.ShippingAddress.City, order.ShippingAddress.State,
		order.ShippingAddress.ZipCode, order.ShippingAddress.Country)

	return s.sendEmail(to, subject, body)
}

// sendEmail 同步发送，临时性错误最多重试3次
// 仍然失败时返回 ErrEmailDelivery，由调用方决定如何向用户呈现
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = s.smtpPort == 465
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	err := common.WithRetry(func() error {
		return d.DialAndSend(m)
	}, 3)
	if err != nil {
		util.Logger.Error("发送邮件失败",
			zap.Error(err),
			zap.String("to", to),
			zap.String("subject", subject))
		return apperrors.Wrap(apperrors.ErrEmailDelivery, "Failed to send email", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to), zap.String("subject", subject))
	return nil
}

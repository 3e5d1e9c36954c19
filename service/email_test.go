package service

import (
	"testing"

	"couplefin/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestGenerateInviteEmailBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateInviteEmailBody("张三", "https://example.com/accept?token=abc")
	assert.Contains(t, body, "张三")
	assert.Contains(t, body, "https://example.com/accept?token=abc")
	assert.Contains(t, body, "接受邀请")
	assert.Contains(t, body, "72 小时")
}

func TestSendCoupleInviteEmail_Disabled(t *testing.T) {
	s := newTestEmailService()
	err := s.SendCoupleInviteEmail("a@example.com", "张三", "https://example.com/accept")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "邮件服务未启用")
}

package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"couplefin/config"
)

// BillingService 支付服务商集成。
// 出站调用：创建客户、创建客户门户会话；入站 webhook 由网关层处理，不在此实现
type BillingService struct {
	cfg    *config.BillingConfig
	client *http.Client
}

// NewBillingService 创建支付服务
func NewBillingService(cfg *config.BillingConfig) *BillingService {
	return &BillingService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// CustomerResponse 创建客户响应
type CustomerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// PortalSessionResponse 客户门户会话响应
type PortalSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type billingError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// CreateCustomer 在支付服务商侧创建客户，返回外部客户ID
func (s *BillingService) CreateCustomer(email, name string) (string, error) {
	if !s.cfg.Enabled {
		return "", fmt.Errorf("支付服务未启用")
	}
	payload := map[string]string{"email": email, "name": name}
	var resp CustomerResponse
	if err := s.post("/v1/customers", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("支付服务商返回了空的客户ID")
	}
	return resp.ID, nil
}

// CreatePortalSession 用已存储的外部客户ID创建客户门户会话，返回门户 URL
func (s *BillingService) CreatePortalSession(customerID string) (string, error) {
	if !s.cfg.Enabled {
		return "", fmt.Errorf("支付服务未启用")
	}
	if customerID == "" {
		return "", fmt.Errorf("缺少外部客户ID，请先完成订阅")
	}
	payload := map[string]string{
		"customer":   customerID,
		"return_url": s.cfg.ReturnURL,
	}
	var resp PortalSessionResponse
	if err := s.post("/v1/billing_portal/sessions", payload, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("支付服务商返回了空的门户地址")
	}
	return resp.URL, nil
}

// post 发送 JSON 请求并解析响应
func (s *BillingService) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequest("POST", s.cfg.APIBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("请求支付服务商失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var be billingError
		if json.Unmarshal(data, &be) == nil && be.Message != "" {
			return fmt.Errorf("支付服务商返回错误 (%d): %s", resp.StatusCode, be.Message)
		}
		return fmt.Errorf("支付服务商返回错误 (%d)", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

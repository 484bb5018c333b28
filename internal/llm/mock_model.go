package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockResponse MockChatModel 的单次预设响应
type MockResponse struct {
	Content string
	Error   error
}

// MockChatModel 用于测试的 model.ChatModel 实现，按顺序返回预设响应，用完后重复最后一个
type MockChatModel struct {
	mu        sync.Mutex
	responses []MockResponse
	index     int
	received  [][]*schema.Message
}

// NewMockChatModel 创建返回固定内容的模拟模型
func NewMockChatModel(content string, err error) *MockChatModel {
	return NewMockChatModelSequential([]MockResponse{{Content: content, Error: err}})
}

// NewMockChatModelSequential 创建按顺序返回的模拟模型
func NewMockChatModelSequential(responses []MockResponse) *MockChatModel {
	if len(responses) == 0 {
		responses = []MockResponse{{Error: errors.New("mock model has no responses configured")}}
	}
	return &MockChatModel{responses: responses}
}

// Generate 返回下一条预设响应
func (m *MockChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]*schema.Message, len(input))
	copy(copied, input)
	m.received = append(m.received, copied)

	resp := m.responses[m.index]
	if m.index < len(m.responses)-1 {
		m.index++
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return schema.AssistantMessage(resp.Content, nil), nil
}

// Stream 模拟模型不支持流式输出
func (m *MockChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not implemented in MockChatModel")
}

// BindTools 不做任何事
func (m *MockChatModel) BindTools([]*schema.ToolInfo) error {
	return nil
}

// Calls 返回 Generate 被调用的次数
func (m *MockChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

// LastMessages 返回最近一次调用收到的消息
func (m *MockChatModel) LastMessages() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.received) == 0 {
		return nil
	}
	return m.received[len(m.received)-1]
}

var _ model.ChatModel = (*MockChatModel)(nil)

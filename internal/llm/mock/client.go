package mock

import (
	"context"
	"time"

	"github.com/kitbuilder587/docsmith/internal/llm"
)

const Name = "mock"

// Client - провайдер-заглушка. Используется в тестах и как дефолт,
// когда не настроен ни один реальный ключ.
type Client struct {
	Response  string
	Responses []string // если задан, ответы выдаются по порядку вызовов
	Error     error
	ErrorAt   int // номер вызова (с 1), на котором вернуть Error; 0 = на каждом
	Delay     time.Duration

	CallCount  int
	LastPrompt string
	LastParams llm.Params
	AllCalls   []Call
}

type Call struct {
	Prompt string
	Params llm.Params
}

func New() *Client {
	return &Client{
		Response: "This is a generated draft of the requested document.",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithResponses(responses ...string) *Client {
	c.Responses = responses
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

// WithErrorAt роняет только n-й вызов, остальные отвечают нормально
func (c *Client) WithErrorAt(n int, err error) *Client {
	c.Error = err
	c.ErrorAt = n
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Generate(ctx context.Context, prompt string, p llm.Params) (string, error) {
	c.CallCount++
	c.LastPrompt = prompt
	c.LastParams = p
	c.AllCalls = append(c.AllCalls, Call{Prompt: prompt, Params: p})

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil && (c.ErrorAt == 0 || c.ErrorAt == c.CallCount) {
		return "", llm.WrapError(Name, c.Error)
	}

	if len(c.Responses) > 0 {
		idx := c.CallCount - 1
		if idx >= len(c.Responses) {
			idx = len(c.Responses) - 1
		}
		return c.Responses[idx], nil
	}

	return c.Response, nil
}

func (c *Client) Describe() llm.Info {
	return llm.Info{Provider: Name, Model: "mock-1"}
}

func (c *Client) Reset() {
	c.CallCount = 0
	c.LastPrompt = ""
	c.LastParams = llm.Params{}
	c.AllCalls = nil
}

var _ llm.Provider = (*Client)(nil)

package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientOptions 外部请求客户端选项
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	Proxy     string
	Debug     bool
}

// NewHTTPClient 创建统一配置的 Resty 客户端
// 供应商价目表拉取与图片下载共用
func NewHTTPClient(opts ClientOptions) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Retail-Service/1.0"
	}

	client := resty.New().
		SetDebug(opts.Debug).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	return client
}

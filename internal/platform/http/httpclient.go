// Package http provides the tuned HTTP client for outbound service calls.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はメール配信などの外向きサービス呼び出し用クライアントを作成します。
// http.DefaultClientにはタイムアウトがないため、外部サービスへは必ずこちらを使うこと。
//
//   - Dialer.Timeout: TCP接続は5秒で諦める（配信先が落ちていてもタスクを塞がない）
//   - MaxIdleConns / IdleConnTimeout: ワーカーの連続送信でコネクションを再利用する
//   - Client.Timeout: リクエスト全体の上限（呼び出し元から渡される）
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

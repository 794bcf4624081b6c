package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// ProxyRewriter 把受限域名的媒体 URL 改写为同源代理路径
// 这些域名直接引用会被远端防盗链拦截，必须走 /media/proxy 中转
type ProxyRewriter struct {
	proxyPath string
	hosts     []string
}

// NewProxyRewriter proxyPath 形如 /media/proxy；hosts 为受限域名后缀白名单
func NewProxyRewriter(proxyPath string, hosts []string) *ProxyRewriter {
	return &ProxyRewriter{proxyPath: proxyPath, hosts: hosts}
}

// Rewrite 命中白名单则改写为 <proxyPath>?src=<转义原始URL>
// 幂等：已经是代理路径的输入原样返回；不命中的 URL 不动
func (p *ProxyRewriter) Rewrite(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if strings.HasPrefix(raw, p.proxyPath+"?") {
		return raw, nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid media url %q: %w", raw, err)
	}
	if parsed.Host == "" {
		// 相对路径（含本站代理路径）原样通过
		return raw, nil
	}
	if !p.restricted(parsed.Hostname()) {
		return raw, nil
	}
	return p.proxyPath + "?src=" + url.QueryEscape(raw), nil
}

func (p *ProxyRewriter) restricted(host string) bool {
	host = strings.ToLower(host)
	for _, h := range p.hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

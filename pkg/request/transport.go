package request

import (
	"crypto/tls"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// newTransport 在默认 Transport 的副本上应用连接池配置
func newTransport(pool PoolConfig, tracing bool) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if pool.MaxConnsPerHost > 0 {
		t.MaxConnsPerHost = pool.MaxConnsPerHost
		t.MaxIdleConnsPerHost = pool.MaxConnsPerHost
	}
	if pool.IdleConnTimeout > 0 {
		t.IdleConnTimeout = pool.IdleConnTimeout
	}
	if pool.InsecureSkipVerify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	if !tracing {
		return t
	}
	return propagating{next: t}
}

// propagating 将当前 trace 上下文写入请求头
type propagating struct {
	next http.RoundTripper
}

func (p propagating) RoundTrip(req *http.Request) (*http.Response, error) {
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	return p.next.RoundTrip(req)
}
